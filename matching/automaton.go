package matching

import (
	"github.com/dlyongemallo/tket2/graph"
	"github.com/dlyongemallo/tket2/ops"
)

// StateIndex addresses a state in the automaton arena.
type StateIndex int32

// Transition is one outgoing check of an automaton state. The first
// transition out of the start state checks the root operation; every
// other transition is an edge constraint.
type Transition struct {
	IsRoot bool
	RootOp ops.MatchOp
	Edge   Constraint
	Next   StateIndex
}

func (t Transition) key() string {
	if t.IsRoot {
		return "root:" + t.RootOp.Name + "/" + string(t.RootOp.Encoded)
	}
	return t.Edge.key()
}

// State is a partial match: the sequence of checks that led here, plus
// the patterns fully matched at this point.
type State struct {
	Transitions []Transition
	Matches     []PatternID
}

// Automaton is the deterministic multi-pattern matching automaton. All
// patterns' line forms are merged into one state arena, deduplicating
// shared prefixes so that matching many similar patterns costs less
// than matching each independently.
type Automaton struct {
	States []State
	// MaxVars is the largest variable count across all patterns.
	MaxVars int
}

func newAutomaton() *Automaton {
	return &Automaton{States: []State{{}}}
}

// insert threads one pattern's line form through the trie of states,
// reusing existing transitions where the check sequence coincides.
func (a *Automaton) insert(p *Pattern, id PatternID) {
	cur := StateIndex(0)
	cur = a.step(cur, Transition{IsRoot: true, RootOp: p.Root})
	for _, con := range p.Line {
		cur = a.step(cur, Transition{Edge: con})
	}
	a.States[cur].Matches = append(a.States[cur].Matches, id)
	if p.NVars > a.MaxVars {
		a.MaxVars = p.NVars
	}
}

func (a *Automaton) step(cur StateIndex, t Transition) StateIndex {
	key := t.key()
	for _, existing := range a.States[cur].Transitions {
		if existing.key() == key {
			return existing.Next
		}
	}
	next := StateIndex(len(a.States))
	a.States = append(a.States, State{})
	t.Next = next
	a.States[cur].Transitions = append(a.States[cur].Transitions, t)
	return next
}

// RootedMatch is a successful automaton run: a pattern ID plus the
// witnessed variable binding.
type RootedMatch struct {
	Pattern PatternID
	Binding []graph.NodeIndex
}

// NodeSatisfies decides whether a graph node satisfies an operation
// descriptor.
type NodeSatisfies func(graph.NodeIndex, ops.MatchOp) bool

// FollowEdge resolves an edge constraint from a bound node, returning
// the node at the far end. It fails closed: absent or ambiguous links
// are not matchable.
type FollowEdge func(graph.NodeIndex, Constraint) (graph.NodeIndex, bool)

// Run executes the automaton rooted at the given node, using the
// supplied decision predicates, and returns every pattern that matched
// together with its binding.
func (a *Automaton) Run(root graph.NodeIndex, nodeSat NodeSatisfies, follow FollowEdge) []RootedMatch {
	binding := make([]graph.NodeIndex, a.MaxVars)
	for i := range binding {
		binding[i] = graph.InvalidNode
	}
	var out []RootedMatch
	a.run(0, root, binding, 0, nodeSat, follow, &out)
	return out
}

func (a *Automaton) run(state StateIndex, root graph.NodeIndex,
	binding []graph.NodeIndex, bound int,
	nodeSat NodeSatisfies, follow FollowEdge, out *[]RootedMatch,
) {
	s := &a.States[state]
	for _, id := range s.Matches {
		snapshot := make([]graph.NodeIndex, bound)
		copy(snapshot, binding[:bound])
		*out = append(*out, RootedMatch{Pattern: id, Binding: snapshot})
	}
	for _, t := range s.Transitions {
		if t.IsRoot {
			if nodeSat(root, t.RootOp) {
				binding[0] = root
				a.run(t.Next, root, binding, 1, nodeSat, follow, out)
				binding[0] = graph.InvalidNode
			}
			continue
		}
		con := t.Edge
		src := binding[con.SrcVar]
		next, ok := follow(src, con)
		if !ok {
			continue
		}
		if con.DstNew {
			// The mapping must stay injective.
			if containsNode(binding[:bound], next) {
				continue
			}
			if !nodeSat(next, con.DstOp) {
				continue
			}
			binding[con.DstVar] = next
			a.run(t.Next, root, binding, bound+1, nodeSat, follow, out)
			binding[con.DstVar] = graph.InvalidNode
		} else if binding[con.DstVar] == next {
			a.run(t.Next, root, binding, bound, nodeSat, follow, out)
		}
	}
}

func containsNode(binding []graph.NodeIndex, n graph.NodeIndex) bool {
	for _, b := range binding {
		if b == n {
			return true
		}
	}
	return false
}
