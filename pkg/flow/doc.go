// Package flow provides the declarative pipeline model rendered by the
// task-flow layout engine.
//
// # Overview
//
// A [Pipeline] describes one asynchronous orchestration run: exactly one
// start event, exactly one end event, a set of activities, a set of
// gateways, and the lines connecting them. Activities that represent a
// sub-process carry a nested [Pipeline] of their own, so a run forms a tree
// of pipelines that the layout engine can expand level by level.
//
// Gateways are structural only. A [KindParallelGateway] fans one line out
// into several branches and a [KindConvergeGateway] joins them again; neither
// is ever painted. [ResolveTargets] walks through them to find the visible
// items an item actually connects to.
//
// # Basic Usage
//
//	p, err := flow.ReadFile("run.json")
//	if err != nil {
//	    return err
//	}
//	if err := flow.Validate(p); err != nil {
//	    return err
//	}
//	targets, err := flow.ResolveTargets(&p.StartEvent, p, false)
//
// # Wire Format
//
// Pipelines are read from JSON or YAML using the field names of the console
// payload:
//
//	{
//	  "start_event": {"id": "start", "type": "StartEvent", "outgoing": "l1"},
//	  "activities": {"a": {"id": "a", "type": "Activity", "outgoing": "l2"}},
//	  "end_event":   {"id": "end", "type": "EndEvent"},
//	  "flows": {
//	    "l1": {"id": "l1", "source": "start", "target": "a"},
//	    "l2": {"id": "l2", "source": "a", "target": "end"}
//	  }
//	}
//
// The outgoing field accepts either a single line id or a list of ids; lists
// of more than one id are only legal on parallel gateways.
//
// # Status
//
// Items carry a [Status] and free-form metadata that travel alongside the
// structure. Layout never reads them; they are passed through untouched to
// whatever paints the result.
//
// # Concurrency
//
// A Pipeline is treated as an immutable snapshot. Every function in this
// package only reads it, so one snapshot can be shared by concurrent layout
// passes.
package flow
