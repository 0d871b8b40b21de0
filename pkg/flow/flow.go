package flow

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingStart is returned by [Validate] when a pipeline level has no
	// start event.
	ErrMissingStart = errors.New("pipeline has no start event")

	// ErrMissingEnd is returned by [Validate] when a pipeline level has no end
	// event, or when the top-level end event is unreachable.
	ErrMissingEnd = errors.New("pipeline has no end event")

	// ErrDuplicateID is returned by [Validate] when two items of the same level
	// share an id, or when a map key disagrees with the id it stores.
	ErrDuplicateID = errors.New("duplicate item ID")

	// ErrUnknownLine is returned when an item lists an outgoing line id that
	// is not declared in the pipeline's flows.
	ErrUnknownLine = errors.New("unknown line")

	// ErrDanglingLine is returned when a line references an item that does
	// not exist at its level.
	ErrDanglingLine = errors.New("line references unknown item")

	// ErrWrongKind is returned when an item's kind does not match its slot,
	// for example an activity stored in the gateway map, or a nested pipeline
	// attached to something other than an activity.
	ErrWrongKind = errors.New("item kind does not match its position")

	// ErrFanOut is returned when an item other than a parallel gateway
	// declares more than one outgoing line.
	ErrFanOut = errors.New("only parallel gateways may fan out")

	// ErrGatewayCycle is returned by [ResolveTargets] when following gateways
	// returns to a gateway already on the current path.
	ErrGatewayCycle = errors.New("gateway cycle")

	// ErrNestedCycle is returned when a pipeline contains itself through its
	// nested sub-pipelines.
	ErrNestedCycle = errors.New("pipeline nests itself")
)

// Kind is the closed set of item kinds a pipeline may contain.
type Kind int

const (
	// KindActivity is a unit of work. It is the zero value so that items
	// decoded without a type default to an activity.
	KindActivity Kind = iota
	// KindStartEvent marks the single entry of a pipeline level.
	KindStartEvent
	// KindEndEvent marks the single exit of a pipeline level.
	KindEndEvent
	// KindParallelGateway fans one line out into parallel branches.
	KindParallelGateway
	// KindConvergeGateway joins parallel branches back into one line.
	KindConvergeGateway
)

var kindNames = [...]string{
	KindActivity:        "Activity",
	KindStartEvent:      "StartEvent",
	KindEndEvent:        "EndEvent",
	KindParallelGateway: "ParallelGateway",
	KindConvergeGateway: "ConvergeGateway",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a wire name into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown item type %q", s)
}

// IsGateway reports whether items of this kind are structural only.
func (k Kind) IsGateway() bool {
	return k == KindParallelGateway || k == KindConvergeGateway
}

// IsEvent reports whether the kind is a start or end event.
func (k Kind) IsEvent() bool {
	return k == KindStartEvent || k == KindEndEvent
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(n *yaml.Node) error {
	return k.UnmarshalText([]byte(n.Value))
}

// Status is the live execution state reported for an item. Layout never
// reads it.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outgoing lists the ids of an item's outgoing lines. On the wire it is
// either a single string or a list of strings.
type Outgoing []string

// UnmarshalJSON accepts a string, a list of strings, or null.
func (o *Outgoing) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*o = nil
		if one != "" {
			*o = Outgoing{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("outgoing must be a string or a list of strings: %w", err)
	}
	*o = many
	return nil
}

// MarshalJSON writes a single line id as a string and anything else as a list.
func (o Outgoing) MarshalJSON() ([]byte, error) {
	if len(o) == 1 {
		return json.Marshal(o[0])
	}
	return json.Marshal([]string(o))
}

// UnmarshalYAML accepts a scalar or a sequence.
func (o *Outgoing) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*o = nil
		if n.Value != "" {
			*o = Outgoing{n.Value}
		}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := n.Decode(&many); err != nil {
			return err
		}
		*o = many
		return nil
	default:
		return fmt.Errorf("line %d: outgoing must be a string or a list of strings", n.Line)
	}
}

// Item is a single node of a pipeline (the console's FlowItem).
type Item struct {
	ID       string         `json:"id" yaml:"id"`
	Kind     Kind           `json:"type" yaml:"type"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Outgoing Outgoing       `json:"outgoing,omitempty" yaml:"outgoing,omitempty"`
	Pipeline *Pipeline      `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
	Status   Status         `json:"status,omitempty" yaml:"status,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// HasPipeline reports whether the item owns a nested sub-pipeline.
func (it *Item) HasPipeline() bool { return it.Pipeline != nil }

// Label returns the display name, falling back to the id.
func (it *Item) Label() string {
	if it.Name != "" {
		return it.Name
	}
	return it.ID
}

// Line is a directed connection between two items of the same level (the
// console's FlowLine). The target may be a gateway.
type Line struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Pipeline is one level of a run (the console's FlowsData).
//
// The zero value is an empty pipeline with no start or end event; it does
// not pass [Validate].
type Pipeline struct {
	StartEvent Item             `json:"start_event" yaml:"start_event"`
	EndEvent   Item             `json:"end_event" yaml:"end_event"`
	Activities map[string]*Item `json:"activities,omitempty" yaml:"activities,omitempty"`
	Gateways   map[string]*Item `json:"gateways,omitempty" yaml:"gateways,omitempty"`
	Flows      map[string]Line  `json:"flows,omitempty" yaml:"flows,omitempty"`
}

// Lookup returns the item with the given id at this level.
func (p *Pipeline) Lookup(id string) (*Item, bool) {
	if id == "" {
		return nil, false
	}
	switch id {
	case p.StartEvent.ID:
		return &p.StartEvent, true
	case p.EndEvent.ID:
		return &p.EndEvent, true
	}
	if it, ok := p.Activities[id]; ok {
		return it, true
	}
	if it, ok := p.Gateways[id]; ok {
		return it, true
	}
	return nil, false
}

// IsEmpty reports whether the start event has nowhere to go.
func (p *Pipeline) IsEmpty() bool { return len(p.StartEvent.Outgoing) == 0 }

// ItemCount returns the number of items at this level, events included.
func (p *Pipeline) ItemCount() int {
	n := len(p.Activities) + len(p.Gateways)
	if p.StartEvent.ID != "" {
		n++
	}
	if p.EndEvent.ID != "" {
		n++
	}
	return n
}

// follow returns the item a line points at.
func (p *Pipeline) follow(lineID string) (*Item, error) {
	line, ok := p.Flows[lineID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLine, lineID)
	}
	target, ok := p.Lookup(line.Target)
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrDanglingLine, lineID, line.Target)
	}
	return target, nil
}
