package layout

import (
	"errors"
	"fmt"

	"github.com/matzehuels/flowlayout/pkg/flow"
)

var (
	// ErrInvalidOptions is returned by [Compute] when the options fail
	// [Options.Validate].
	ErrInvalidOptions = errors.New("invalid layout options")

	// ErrGatewayPlaced is returned when a gateway reaches placement. The
	// target resolver never yields gateways, so this indicates a bug.
	ErrGatewayPlaced = errors.New("gateway cannot be placed")
)

// Compute runs one full layout pass: validation, column building, the X and
// Y passes and the end-event adjustment. The result is a fresh arena; p and
// expand are only read. A nil expand collapses everything.
func Compute(p *flow.Pipeline, expand ExpandState, opts Options) (*Layout, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if err := flow.Validate(p); err != nil {
		return nil, err
	}
	if expand == nil {
		expand = noneExpanded{}
	}

	l := newLayout()
	b := &builder{l: l, expand: expand, opts: opts}
	cols, err := b.buildColumns(p, -1, 0, true)
	if err != nil {
		return nil, err
	}
	l.Columns = cols

	placeX(l, opts)
	placeY(l, opts)
	placeEnd(l, opts)
	return l, nil
}
