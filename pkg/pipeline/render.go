package pipeline

import (
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/render/dot"
	"github.com/matzehuels/flowlayout/pkg/view"
)

// Render paints v in the given format. JSON is the view itself; the other
// formats go through the DOT adapter.
func Render(v *view.View, format string, detailed bool) ([]byte, error) {
	if err := errors.ValidateFormat(format); err != nil {
		return nil, err
	}
	if format == FormatJSON {
		data, err := view.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode view")
		}
		return data, nil
	}

	src := dot.ToDOT(v, dot.Options{Detailed: detailed})

	var data []byte
	var err error
	switch format {
	case FormatDOT:
		return []byte(src), nil
	case FormatSVG:
		data, err = dot.RenderSVG(src)
	case FormatPNG:
		data, err = dot.RenderPNG(src)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "format %s", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return data, nil
}
