package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/observability"
)

// ParseFile reads and validates a graph file. YAML is chosen by the .yaml
// and .yml extensions, JSON otherwise.
func ParseFile(ctx context.Context, path string) (*flow.Pipeline, error) {
	hooks := observability.Layout()
	hooks.OnParseStart(ctx, path)
	start := time.Now()

	p, err := flow.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			err = errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s", path)
		} else {
			err = errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
		}
	} else {
		err = validate(p)
	}

	hooks.OnParseComplete(ctx, path, itemCount(p, err), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ParseBytes decodes and validates a graph. name is only used to pick the
// decoder and to label hook events; an empty name means JSON.
func ParseBytes(ctx context.Context, name string, data []byte) (*flow.Pipeline, error) {
	hooks := observability.Layout()
	hooks.OnParseStart(ctx, name)
	start := time.Now()

	var p *flow.Pipeline
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		p, err = flow.ReadYAML(bytes.NewReader(data))
	default:
		p, err = flow.ReadJSON(bytes.NewReader(data))
	}
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	} else {
		err = validate(p)
	}

	hooks.OnParseComplete(ctx, name, itemCount(p, err), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func validate(p *flow.Pipeline) error {
	if err := flow.Validate(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	return nil
}

func itemCount(p *flow.Pipeline, err error) int {
	if err != nil || p == nil {
		return 0
	}
	return p.ItemCount()
}
