package flow

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadJSON decodes a pipeline from r.
//
// Missing ids are filled from their map keys and the start and end slots are
// given their event kinds when the payload omits a type, so a hand-written
// graph does not need to repeat itself. No other validation happens here;
// call [Validate] before laying the pipeline out. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	normalize(&p)
	return &p, nil
}

// ReadYAML decodes a pipeline from r using the same field names as
// [ReadJSON].
func ReadYAML(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	normalize(&p)
	return &p, nil
}

// WriteJSON encodes p as indented JSON. The output can be read back with
// [ReadJSON].
func WriteJSON(p *Pipeline, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// ReadFile reads a pipeline from path, choosing the decoder by extension:
// .yaml and .yml are YAML, everything else is JSON.
func ReadFile(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var p *Pipeline
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p, err = ReadYAML(f)
	default:
		p, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Unmarshal decodes a JSON pipeline from data.
func Unmarshal(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pipeline: %w", err)
	}
	normalize(&p)
	return &p, nil
}

// Marshal encodes p as compact JSON. Map keys are sorted by encoding/json,
// so equal pipelines produce equal bytes.
func Marshal(p *Pipeline) ([]byte, error) {
	return json.Marshal(p)
}

func normalize(p *Pipeline) {
	if p.StartEvent.Kind == KindActivity {
		p.StartEvent.Kind = KindStartEvent
	}
	if p.EndEvent.Kind == KindActivity {
		p.EndEvent.Kind = KindEndEvent
	}
	for key, it := range p.Activities {
		if it == nil {
			continue
		}
		if it.ID == "" {
			it.ID = key
		}
		if it.Pipeline != nil {
			normalize(it.Pipeline)
		}
	}
	for key, it := range p.Gateways {
		if it != nil && it.ID == "" {
			it.ID = key
		}
	}
	for key, line := range p.Flows {
		if line.ID == "" {
			line.ID = key
			p.Flows[key] = line
		}
	}
}
