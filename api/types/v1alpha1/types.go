// Package v1alpha1 contains the wire types for the LED matrix controller API.
package v1alpha1

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Color is an RGB triplet, each channel 0-255.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// TextSegment colors a half-open range [Start, End) of a text's Unicode
// scalar sequence, overriding the item's base color for that range.
type TextSegment struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Color Color `json:"color"`
}

// BorderEffectKind tags which variant a BorderEffect holds.
type BorderEffectKind string

const (
	BorderEffectNone     BorderEffectKind = "None"
	BorderEffectRainbow  BorderEffectKind = "Rainbow"
	BorderEffectPulse    BorderEffectKind = "Pulse"
	BorderEffectSparkle  BorderEffectKind = "Sparkle"
	BorderEffectGradient BorderEffectKind = "Gradient"
)

// BorderEffect is a tagged variant describing the animated border overlay.
// Colors is only meaningful for Pulse, Sparkle and Gradient; an empty slice
// there means "use the item's base text color".
type BorderEffect struct {
	Kind   BorderEffectKind
	Colors []Color
}

// borderEffectColors is the payload shape for variants that carry colors.
type borderEffectColors struct {
	Colors []Color `json:"colors"`
}

// MarshalJSON encodes BorderEffect as the tagged single-key object the wire
// format expects, e.g. {"Rainbow":null} or {"Pulse":{"colors":[...]}}.
func (b BorderEffect) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case "", BorderEffectNone:
		return json.Marshal(map[string]any{"None": nil})
	case BorderEffectRainbow:
		return json.Marshal(map[string]any{"Rainbow": nil})
	case BorderEffectPulse, BorderEffectSparkle, BorderEffectGradient:
		colors := b.Colors
		if colors == nil {
			colors = []Color{}
		}
		return json.Marshal(map[string]any{
			string(b.Kind): borderEffectColors{Colors: colors},
		})
	default:
		return nil, fmt.Errorf("border effect: unknown kind %q", b.Kind)
	}
}

// UnmarshalJSON decodes a tagged single-key border effect object.
func (b *BorderEffect) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("border effect: %w", err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("border effect: expected exactly one variant key, got %d", len(raw))
	}

	for key, val := range raw {
		kind := BorderEffectKind(key)
		switch kind {
		case BorderEffectNone, BorderEffectRainbow:
			b.Kind = kind
			b.Colors = nil
			return nil
		case BorderEffectPulse, BorderEffectSparkle, BorderEffectGradient:
			var payload borderEffectColors
			if len(val) > 0 && string(val) != "null" {
				if err := json.Unmarshal(val, &payload); err != nil {
					return fmt.Errorf("border effect %s: %w", key, err)
				}
			}
			b.Kind = kind
			b.Colors = payload.Colors
			return nil
		default:
			return fmt.Errorf("border effect: unknown variant %q", key)
		}
	}
	return nil
}

// ContentType tags which variant a Content holds. Only Text is defined; the
// tag is extensible for future content kinds.
type ContentType string

const (
	ContentTypeText ContentType = "Text"
)

// TextContent is the payload for ContentTypeText.
type TextContent struct {
	Text     string        `json:"text"`
	Scroll   bool          `json:"scroll"`
	Color    Color         `json:"color"`
	Speed    float32       `json:"speed"`
	Segments []TextSegment `json:"segments,omitempty"`
}

// Content is a tagged variant keyed by ContentType. Data carries the
// type-specific payload (currently always a TextContent).
type Content struct {
	ContentType ContentType `json:"content_type"`
	Data        TextContent `json:"data"`
}

// DisplayItem is one entry in the playlist.
type DisplayItem struct {
	ID           uuid.UUID     `json:"id"`
	Duration     *uint32       `json:"duration,omitempty"`
	RepeatCount  *uint32       `json:"repeat_count,omitempty"`
	BorderEffect *BorderEffect `json:"border_effect,omitempty"`
	Content      Content       `json:"content"`
}

// ReorderRequest is the body of PUT /api/playlist/reorder.
type ReorderRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
}

// BrightnessSettings is both the request and response body for the
// brightness endpoints.
type BrightnessSettings struct {
	Brightness uint8 `json:"brightness"`
}

// PreviewSession is returned by POST/PUT /api/preview.
type PreviewSession struct {
	Item      DisplayItem `json:"item"`
	SessionID uuid.UUID   `json:"session_id"`
}

// PreviewUpdateRequest is the body of PUT /api/preview.
type PreviewUpdateRequest struct {
	Item      DisplayItem `json:"item"`
	SessionID uuid.UUID   `json:"session_id"`
}

// SessionIDRequest is the body shape shared by DELETE /api/preview,
// POST /api/preview/ping and POST /api/preview/session.
type SessionIDRequest struct {
	SessionID uuid.UUID `json:"session_id"`
}

// PreviewStatus is the response of GET /api/preview/status.
type PreviewStatus struct {
	Active bool `json:"active"`
}

// SessionOwnership is the response of POST /api/preview/session.
type SessionOwnership struct {
	IsOwner bool `json:"is_owner"`
}

// PlaylistAction tags the kind of mutation a playlist SSE event describes.
type PlaylistAction string

const (
	PlaylistActionAdd     PlaylistAction = "Add"
	PlaylistActionUpdate  PlaylistAction = "Update"
	PlaylistActionDelete  PlaylistAction = "Delete"
	PlaylistActionReorder PlaylistAction = "Reorder"
)

// PlaylistEvent is the payload streamed on GET /api/events/playlist.
type PlaylistEvent struct {
	Items  []DisplayItem  `json:"items"`
	Action PlaylistAction `json:"action"`
}

// BrightnessEvent is the payload streamed on GET /api/events/brightness.
type BrightnessEvent struct {
	Brightness uint8 `json:"brightness"`
}

// EditorLockEvent is the payload streamed on GET /api/events/editor.
type EditorLockEvent struct {
	Locked   bool       `json:"locked"`
	LockedBy *uuid.UUID `json:"locked_by,omitempty"`
}
