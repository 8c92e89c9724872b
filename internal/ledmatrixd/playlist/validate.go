package playlist

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	werrors "github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/errors"
)

// validate checks a DisplayItem against the creation/update invariants and
// normalizes it in place (assigning a fresh ID when absent and clipping its
// text segments). It never mutates the playlist itself.
func validate(item *v1alpha1.DisplayItem, assignID bool) error {
	const op = "playlist.validate"

	if item.ID == uuid.Nil {
		if !assignID {
			return werrors.NewError("INVALID_INPUT", "id is required", op, werrors.ErrInvalidInput)
		}
		item.ID = uuid.New()
	}

	if item.Content.ContentType != v1alpha1.ContentTypeText {
		return werrors.NewError("INVALID_INPUT",
			fmt.Sprintf("unsupported content_type %q", item.Content.ContentType), op, werrors.ErrInvalidInput)
	}

	text := item.Content.Data
	if text.Text == "" {
		return werrors.NewError("INVALID_INPUT", "text must not be empty", op, werrors.ErrInvalidInput)
	}
	if text.Speed < 0 {
		return werrors.NewError("INVALID_INPUT", "speed must be >= 0", op, werrors.ErrInvalidInput)
	}

	durationSet := item.Duration != nil
	repeatSet := item.RepeatCount != nil
	if durationSet == repeatSet {
		return werrors.NewError("INVALID_INPUT",
			"exactly one of duration or repeat_count must be set", op, werrors.ErrInvalidInput)
	}
	if text.Scroll && !repeatSet {
		return werrors.NewError("INVALID_INPUT",
			"scrolling text must populate repeat_count, not duration", op, werrors.ErrInvalidInput)
	}
	if !text.Scroll && !durationSet {
		return werrors.NewError("INVALID_INPUT",
			"static text must populate duration, not repeat_count", op, werrors.ErrInvalidInput)
	}

	if item.BorderEffect != nil {
		for _, c := range item.BorderEffect.Colors {
			_ = c // uint8 channels are range-checked by the type itself
		}
	}

	item.Content.Data.Segments = normalizeSegments(text.Text, text.Segments)

	return nil
}

// normalizeSegments drops out-of-range segments and clips overlaps so the
// remaining set is pairwise non-overlapping, with later segments in input
// order winning entirely over earlier ones wherever they overlap. A segment
// pierced through its middle is split into a leading and trailing remainder
// rather than losing the far side, and a segment fully covered by a later
// one is dropped. The result is sorted by Start.
func normalizeSegments(text string, segments []v1alpha1.TextSegment) []v1alpha1.TextSegment {
	if len(segments) == 0 {
		return nil
	}

	length := len([]rune(text))
	var kept []v1alpha1.TextSegment
	for _, s := range segments {
		if s.Start >= s.End || s.End > length || s.Start < 0 {
			continue
		}
		kept = append(clipAgainst(kept, s), s)
	}

	if len(kept) == 0 {
		return nil
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

// clipAgainst removes the portion of every segment in kept that overlaps s,
// splitting a segment pierced through its middle into a leading and
// trailing remainder and dropping one fully covered by s. s itself is not
// included in the returned slice.
func clipAgainst(kept []v1alpha1.TextSegment, s v1alpha1.TextSegment) []v1alpha1.TextSegment {
	out := make([]v1alpha1.TextSegment, 0, len(kept)+1)
	for _, k := range kept {
		if k.End <= s.Start || k.Start >= s.End {
			out = append(out, k)
			continue
		}
		if k.Start < s.Start {
			lead := k
			lead.End = s.Start
			out = append(out, lead)
		}
		if k.End > s.End {
			trail := k
			trail.Start = s.End
			out = append(out, trail)
		}
	}
	return out
}
