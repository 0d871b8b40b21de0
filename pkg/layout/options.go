package layout

import "fmt"

// Default sizes in user units (pixels on the painting surface).
const (
	DefaultHorizontalGap  = 80.0
	DefaultVerticalGap    = 40.0
	DefaultActivityWidth  = 200.0
	DefaultActivityHeight = 54.0
	DefaultEventSize      = 42.0
	DefaultEndNodeOffset  = 20.0
)

// Glyph offsets on the fixed-size activity template. A cross-level line
// leaves an activity just right of its expand affordance.
const (
	ExpandGlyphInset = 14.0
	ExpandGlyphWidth = 24.0
)

// Options configures node sizes and spacing. The zero value is not usable;
// start from [DefaultOptions].
type Options struct {
	HorizontalGap  float64 `json:"horizontal_gap" toml:"horizontal_gap"`
	VerticalGap    float64 `json:"vertical_gap" toml:"vertical_gap"`
	ActivityWidth  float64 `json:"activity_width" toml:"activity_width"`
	ActivityHeight float64 `json:"activity_height" toml:"activity_height"`
	EventSize      float64 `json:"event_size" toml:"event_size"`

	// ChildOffset shifts every expanded child level horizontally relative
	// to its parent's x.
	ChildOffset float64 `json:"child_offset" toml:"child_offset"`

	// EndNodeOffset is the extra clearance the end event keeps when a nested
	// level reaches further right than the root level.
	EndNodeOffset float64 `json:"end_node_offset" toml:"end_node_offset"`
}

// DefaultOptions returns the sizes used by the console's node templates.
func DefaultOptions() Options {
	return Options{
		HorizontalGap:  DefaultHorizontalGap,
		VerticalGap:    DefaultVerticalGap,
		ActivityWidth:  DefaultActivityWidth,
		ActivityHeight: DefaultActivityHeight,
		EventSize:      DefaultEventSize,
		EndNodeOffset:  DefaultEndNodeOffset,
	}
}

// Validate rejects sizes the router cannot work with.
func (o Options) Validate() error {
	switch {
	case o.HorizontalGap < 0 || o.VerticalGap < 0:
		return fmt.Errorf("gaps must not be negative (horizontal %v, vertical %v)", o.HorizontalGap, o.VerticalGap)
	case o.ActivityHeight <= 0 || o.EventSize <= 0:
		return fmt.Errorf("node sizes must be positive (activity height %v, event size %v)", o.ActivityHeight, o.EventSize)
	case o.ActivityWidth/2 <= ExpandGlyphInset+ExpandGlyphWidth:
		return fmt.Errorf("activity width %v leaves no room for the expand glyph (min %v)",
			o.ActivityWidth, 2*(ExpandGlyphInset+ExpandGlyphWidth))
	}
	return nil
}
