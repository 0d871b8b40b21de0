package flow

import (
	"fmt"
	"maps"
	"slices"
)

// Validate checks the structural preconditions the layout engine relies on
// and reports the first violation found. Nested pipelines are validated
// recursively; their errors are prefixed with the owning activity's id.
//
// The checks are:
//   - start and end events are present and carry the right kinds
//   - item ids are unique within a level and match their map keys
//   - every outgoing id names a declared line whose source is the item
//   - every line endpoint exists at the line's level
//   - only parallel gateways fan out
//   - only activities own nested pipelines, and no pipeline contains itself
//   - the top-level end event is reachable unless the pipeline is empty
//
// Acyclicity of the line graph is not checked here; [ResolveTargets]
// reports gateway cycles when it meets them.
func Validate(p *Pipeline) error {
	if p == nil {
		return ErrMissingStart
	}
	if err := validateLevel(p, nil); err != nil {
		return err
	}
	if !p.IsEmpty() && inDegree(p, p.EndEvent.ID) == 0 {
		return fmt.Errorf("%w: %q has no incoming line", ErrMissingEnd, p.EndEvent.ID)
	}
	return nil
}

func validateLevel(p *Pipeline, stack []*Pipeline) error {
	if slices.Contains(stack, p) {
		return ErrNestedCycle
	}
	stack = append(stack, p)

	if p.StartEvent.ID == "" {
		return ErrMissingStart
	}
	if p.EndEvent.ID == "" {
		return ErrMissingEnd
	}
	if p.StartEvent.Kind != KindStartEvent {
		return fmt.Errorf("%w: start event %q is %s", ErrWrongKind, p.StartEvent.ID, p.StartEvent.Kind)
	}
	if p.EndEvent.Kind != KindEndEvent {
		return fmt.Errorf("%w: end event %q is %s", ErrWrongKind, p.EndEvent.ID, p.EndEvent.Kind)
	}
	if p.StartEvent.ID == p.EndEvent.ID {
		return fmt.Errorf("%w: %q", ErrDuplicateID, p.StartEvent.ID)
	}

	seen := map[string]bool{p.StartEvent.ID: true, p.EndEvent.ID: true}
	for _, key := range slices.Sorted(maps.Keys(p.Activities)) {
		it := p.Activities[key]
		if err := checkSlot(key, it, seen); err != nil {
			return err
		}
		if it.Kind != KindActivity {
			return fmt.Errorf("%w: %q in activities is %s", ErrWrongKind, key, it.Kind)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(p.Gateways)) {
		it := p.Gateways[key]
		if err := checkSlot(key, it, seen); err != nil {
			return err
		}
		if !it.Kind.IsGateway() {
			return fmt.Errorf("%w: %q in gateways is %s", ErrWrongKind, key, it.Kind)
		}
		if it.HasPipeline() {
			return fmt.Errorf("%w: gateway %q owns a pipeline", ErrWrongKind, key)
		}
	}
	if p.StartEvent.HasPipeline() || p.EndEvent.HasPipeline() {
		return fmt.Errorf("%w: events cannot own a pipeline", ErrWrongKind)
	}

	for _, key := range slices.Sorted(maps.Keys(p.Flows)) {
		line := p.Flows[key]
		if line.ID != key {
			return fmt.Errorf("%w: line key %q holds id %q", ErrDuplicateID, key, line.ID)
		}
		if _, ok := p.Lookup(line.Source); !ok {
			return fmt.Errorf("%w: %s source %q", ErrDanglingLine, key, line.Source)
		}
		if _, ok := p.Lookup(line.Target); !ok {
			return fmt.Errorf("%w: %s target %q", ErrDanglingLine, key, line.Target)
		}
	}

	for _, it := range levelItems(p) {
		if err := checkOutgoing(p, it); err != nil {
			return err
		}
	}

	for _, key := range slices.Sorted(maps.Keys(p.Activities)) {
		it := p.Activities[key]
		if !it.HasPipeline() {
			continue
		}
		if err := validateLevel(it.Pipeline, stack); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func checkSlot(key string, it *Item, seen map[string]bool) error {
	if it == nil {
		return fmt.Errorf("%w: %q is null", ErrDanglingLine, key)
	}
	if it.ID != key {
		return fmt.Errorf("%w: key %q holds id %q", ErrDuplicateID, key, it.ID)
	}
	if seen[key] {
		return fmt.Errorf("%w: %q", ErrDuplicateID, key)
	}
	seen[key] = true
	return nil
}

func checkOutgoing(p *Pipeline, it *Item) error {
	if len(it.Outgoing) > 1 && it.Kind != KindParallelGateway {
		return fmt.Errorf("%w: %q (%s) has %d outgoing lines", ErrFanOut, it.ID, it.Kind, len(it.Outgoing))
	}
	for _, lineID := range it.Outgoing {
		line, ok := p.Flows[lineID]
		if !ok {
			return fmt.Errorf("%w: %q lists %q", ErrUnknownLine, it.ID, lineID)
		}
		if line.Source != it.ID {
			return fmt.Errorf("%w: %q lists %q whose source is %q", ErrDanglingLine, it.ID, lineID, line.Source)
		}
	}
	return nil
}

// levelItems returns every item of a level in a stable order: start,
// activities and gateways by id, end.
func levelItems(p *Pipeline) []*Item {
	items := make([]*Item, 0, p.ItemCount())
	items = append(items, &p.StartEvent)
	for _, key := range slices.Sorted(maps.Keys(p.Activities)) {
		items = append(items, p.Activities[key])
	}
	for _, key := range slices.Sorted(maps.Keys(p.Gateways)) {
		items = append(items, p.Gateways[key])
	}
	return append(items, &p.EndEvent)
}

func inDegree(p *Pipeline, id string) int {
	n := 0
	for _, line := range p.Flows {
		if line.Target == id {
			n++
		}
	}
	return n
}
