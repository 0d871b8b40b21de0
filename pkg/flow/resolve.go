package flow

import "fmt"

// ResolveTargets returns the ids of the visible items that it connects to,
// walking through any gateways on the way. Gateways never appear in the
// result.
//
// When directHop is true and it is not a gateway, the item itself is the
// answer; this is the identity case used while expanding fan-out branches.
// Otherwise an item with no outgoing lines resolves to nothing, a fan-out
// resolves each branch as a direct hop and concatenates the results in
// declared order, and a single outgoing line is followed to its target,
// continuing through it if the target is a gateway.
//
// Branches that rejoin at the same converge gateway produce repeated ids;
// callers deduplicate. The pipeline is assumed acyclic: a gateway met twice
// on the same path yields [ErrGatewayCycle], and a missing line or target
// yields [ErrUnknownLine] or [ErrDanglingLine].
func ResolveTargets(it *Item, p *Pipeline, directHop bool) ([]string, error) {
	return resolve(it, p, directHop, map[string]bool{})
}

func resolve(it *Item, p *Pipeline, directHop bool, path map[string]bool) ([]string, error) {
	if directHop && !it.Kind.IsGateway() {
		return []string{it.ID}, nil
	}
	if it.Kind.IsGateway() {
		if path[it.ID] {
			return nil, fmt.Errorf("%w: %s", ErrGatewayCycle, it.ID)
		}
		path[it.ID] = true
		defer delete(path, it.ID)
	}

	switch len(it.Outgoing) {
	case 0:
		return nil, nil
	case 1:
		target, err := p.follow(it.Outgoing[0])
		if err != nil {
			return nil, err
		}
		if target.Kind.IsGateway() {
			return resolve(target, p, false, path)
		}
		return []string{target.ID}, nil
	default:
		var out []string
		for _, lineID := range it.Outgoing {
			target, err := p.follow(lineID)
			if err != nil {
				return nil, err
			}
			ids, err := resolve(target, p, true, path)
			if err != nil {
				return nil, err
			}
			out = append(out, ids...)
		}
		return out, nil
	}
}
