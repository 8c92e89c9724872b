package playlist

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	werrors "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/errors"
)

func TestValidate_AssignsIDOnCreate(t *testing.T) {
	item := staticItem("hi")
	require.NoError(t, validate(&item, true))
	assert.NotEqual(t, uuid.Nil, item.ID)
}

func TestValidate_RequiresIDOnUpdate(t *testing.T) {
	item := staticItem("hi")
	err := validate(&item, false)
	assert.True(t, werrors.IsInvalidInput(err))
}

func TestValidate_RejectsEmptyText(t *testing.T) {
	item := staticItem("")
	err := validate(&item, true)
	assert.True(t, werrors.IsInvalidInput(err))
}

func TestValidate_RejectsBothDurationAndRepeat(t *testing.T) {
	item := staticItem("hi")
	repeat := uint32(3)
	item.RepeatCount = &repeat // duration already set by staticItem
	err := validate(&item, true)
	assert.True(t, werrors.IsInvalidInput(err))
}

func TestValidate_ScrollRequiresRepeatCount(t *testing.T) {
	item := staticItem("hi")
	item.Duration = nil
	item.Content.Data.Scroll = true
	err := validate(&item, true)
	assert.True(t, werrors.IsInvalidInput(err))
}

func TestValidate_StaticRequiresDuration(t *testing.T) {
	item := staticItem("hi")
	item.Duration = nil
	repeat := uint32(1)
	item.RepeatCount = &repeat
	err := validate(&item, true)
	assert.True(t, werrors.IsInvalidInput(err))
}

func TestNormalizeSegments_DropsOutOfRange(t *testing.T) {
	segs := []v1alpha1.TextSegment{
		{Start: -1, End: 2},
		{Start: 0, End: 100},
		{Start: 3, End: 2},
	}
	out := normalizeSegments("hello", segs)
	assert.Empty(t, out)
}

func TestNormalizeSegments_ClipsOverlap(t *testing.T) {
	segs := []v1alpha1.TextSegment{
		{Start: 0, End: 5, Color: v1alpha1.Color{R: 1}},
		{Start: 3, End: 8, Color: v1alpha1.Color{G: 1}},
	}
	out := normalizeSegments("hello world", segs)
	require.Len(t, out, 2)
	assert.Equal(t, 0, out[0].Start)
	assert.Equal(t, 3, out[0].End)
	assert.Equal(t, 3, out[1].Start)
	assert.Equal(t, 8, out[1].End)
}

func TestNormalizeSegments_DropsFullyCoveredSegment(t *testing.T) {
	segs := []v1alpha1.TextSegment{
		{Start: 2, End: 4},
		{Start: 0, End: 6},
	}
	out := normalizeSegments("hello!", segs)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].Start)
	assert.Equal(t, 6, out[0].End)
}

func TestNormalizeSegments_SplitsSegmentPiercedByALaterOne(t *testing.T) {
	segs := []v1alpha1.TextSegment{
		{Start: 0, End: 10, Color: v1alpha1.Color{R: 1}},
		{Start: 5, End: 7, Color: v1alpha1.Color{G: 1}},
	}
	out := normalizeSegments("hello world!", segs)
	require.Len(t, out, 3, "the pierced segment must keep both its leading and trailing remainder")

	assert.Equal(t, 0, out[0].Start)
	assert.Equal(t, 5, out[0].End)
	assert.Equal(t, 5, out[1].Start)
	assert.Equal(t, 7, out[1].End)
	assert.Equal(t, v1alpha1.Color{G: 1}, out[1].Color)
	assert.Equal(t, 7, out[2].Start)
	assert.Equal(t, 10, out[2].End)
}
