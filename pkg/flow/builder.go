package flow

import "fmt"

// Builder assembles a pipeline in code. Line ids are generated in call order
// ("l1", "l2", ...). The first error stops the chain and is returned by
// [Builder.Build].
//
//	p, err := flow.NewBuilder("start", "end").
//	    Activity("a").
//	    Activity("b").
//	    Chain("start", "a", "b", "end").
//	    Build()
type Builder struct {
	p     *Pipeline
	lines int
	err   error
}

// NewBuilder starts a pipeline with the given start and end event ids.
func NewBuilder(startID, endID string) *Builder {
	return &Builder{p: &Pipeline{
		StartEvent: Item{ID: startID, Kind: KindStartEvent},
		EndEvent:   Item{ID: endID, Kind: KindEndEvent},
		Activities: map[string]*Item{},
		Gateways:   map[string]*Item{},
		Flows:      map[string]Line{},
	}}
}

// Activity adds a plain activity.
func (b *Builder) Activity(id string) *Builder {
	return b.add(&Item{ID: id, Kind: KindActivity})
}

// SubProcess adds an activity that owns the nested pipeline.
func (b *Builder) SubProcess(id string, nested *Pipeline) *Builder {
	return b.add(&Item{ID: id, Kind: KindActivity, Pipeline: nested})
}

// Parallel adds a fan-out gateway.
func (b *Builder) Parallel(id string) *Builder {
	return b.add(&Item{ID: id, Kind: KindParallelGateway})
}

// Converge adds a fan-in gateway.
func (b *Builder) Converge(id string) *Builder {
	return b.add(&Item{ID: id, Kind: KindConvergeGateway})
}

// Status sets the reported status of an existing item.
func (b *Builder) Status(id string, s Status) *Builder {
	if b.err != nil {
		return b
	}
	it, ok := b.p.Lookup(id)
	if !ok {
		b.err = fmt.Errorf("status: unknown item %q", id)
		return b
	}
	it.Status = s
	return b
}

// Connect adds a line from one item to another.
func (b *Builder) Connect(from, to string) *Builder {
	if b.err != nil {
		return b
	}
	src, ok := b.p.Lookup(from)
	if !ok {
		b.err = fmt.Errorf("connect: unknown source %q", from)
		return b
	}
	if _, ok := b.p.Lookup(to); !ok {
		b.err = fmt.Errorf("connect: unknown target %q", to)
		return b
	}
	b.lines++
	id := fmt.Sprintf("l%d", b.lines)
	b.p.Flows[id] = Line{ID: id, Source: from, Target: to}
	src.Outgoing = append(src.Outgoing, id)
	return b
}

// Chain connects each id to the next.
func (b *Builder) Chain(ids ...string) *Builder {
	for i := 1; i < len(ids); i++ {
		b.Connect(ids[i-1], ids[i])
	}
	return b
}

// Build validates and returns the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := Validate(b.p); err != nil {
		return nil, err
	}
	return b.p, nil
}

// MustBuild is like Build but panics on error. It is meant for tests and
// examples.
func (b *Builder) MustBuild() *Pipeline {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

func (b *Builder) add(it *Item) *Builder {
	if b.err != nil {
		return b
	}
	if _, exists := b.p.Lookup(it.ID); exists || it.ID == "" {
		b.err = fmt.Errorf("%w: %q", ErrDuplicateID, it.ID)
		return b
	}
	if it.Kind.IsGateway() {
		b.p.Gateways[it.ID] = it
	} else {
		b.p.Activities[it.ID] = it
	}
	return b
}
