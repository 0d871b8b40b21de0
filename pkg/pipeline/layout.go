package pipeline

import (
	stderrors "errors"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/view"
)

// graphErrors are the flow sentinels that mean the input itself is wrong.
var graphErrors = []error{
	flow.ErrMissingStart,
	flow.ErrMissingEnd,
	flow.ErrDuplicateID,
	flow.ErrUnknownLine,
	flow.ErrDanglingLine,
	flow.ErrWrongKind,
	flow.ErrFanOut,
	flow.ErrGatewayCycle,
	flow.ErrNestedCycle,
}

// Project computes the view of p for opts without touching any cache.
// Errors are coded: INVALID_GRAPH for malformed graphs, INVALID_OPTIONS for
// unusable sizes and LAYOUT_FAILED for everything else.
func Project(p *flow.Pipeline, opts Options) (*view.View, error) {
	v, err := view.Project(p, opts.ExpandSet(), opts.Layout)
	if err != nil {
		return nil, classify(err)
	}
	return v, nil
}

func classify(err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	if stderrors.Is(err, layout.ErrInvalidOptions) {
		return errors.Wrap(errors.ErrCodeInvalidOptions, err, "layout options")
	}
	for _, target := range graphErrors {
		if stderrors.Is(err, target) {
			return errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
		}
	}
	return errors.Wrap(errors.ErrCodeLayoutFailed, err, "layout")
}
