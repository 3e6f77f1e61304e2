package matching

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/graph"
	"github.com/dlyongemallo/tket2/ops"
	"github.com/dlyongemallo/tket2/rewrite"
)

// Match is a witness that a pattern is structurally and semantically
// satisfied in a circuit, validated for convexity and therefore usable
// as a rewrite target.
type Match struct {
	Pattern  PatternID
	Root     graph.NodeIndex
	Position *rewrite.Subgraph
}

// ToRewrite builds a rewrite replacing the matched region with the
// given circuit fragment.
func (m *Match) ToRewrite(replacement *circuit.Circuit, phaseDelta float64) (*rewrite.Rewrite, error) {
	return rewrite.New(m.Position, replacement, phaseDelta)
}

// Matcher matches a set of compiled patterns against circuits using a
// shared automaton. It is immutable after construction and safe for
// concurrent queries.
type Matcher struct {
	automaton *Automaton
	patterns  []*Pattern

	// nonConvex counts witnesses rejected by the convexity check.
	// Rejection is an expected outcome of scanning many roots, kept
	// only as a diagnostic.
	nonConvex atomic.Int64
}

// FromPatterns compiles the patterns into a matcher.
func FromPatterns(patterns []*Pattern) *Matcher {
	a := newAutomaton()
	for i, p := range patterns {
		a.insert(p, PatternID(i))
	}
	return &Matcher{automaton: a, patterns: patterns}
}

// NPatterns returns the number of patterns in the matcher.
func (m *Matcher) NPatterns() int { return len(m.patterns) }

// Pattern returns a pattern by ID.
func (m *Matcher) Pattern(id PatternID) *Pattern {
	if int(id) < 0 || int(id) >= len(m.patterns) {
		return nil
	}
	return m.patterns[id]
}

// NonConvexCount returns the number of witnesses discarded as
// non-convex since the matcher was built.
func (m *Matcher) NonConvexCount() int64 { return m.nonConvex.Load() }

// FindMatches returns all convex pattern matches in the circuit,
// running the automaton rooted at every command node.
func (m *Matcher) FindMatches(c *circuit.Circuit) []*Match {
	checker := rewrite.NewConvexChecker(c)
	var out []*Match
	for _, cmd := range c.Commands() {
		out = append(out, m.findRootedMatches(c, cmd.Node, checker)...)
	}
	return out
}

// findRootedMatches runs the automaton at one root and converts the
// successful runs into convex matches. Witnesses rejected for
// non-convexity or because a wire the pattern declares as boundary is
// internal to the matched region are expected outcomes and discarded;
// any other reconstruction failure is a logic error in the automaton
// and panics.
func (m *Matcher) findRootedMatches(c *circuit.Circuit, root graph.NodeIndex, checker *rewrite.ConvexChecker) []*Match {
	g := c.Graph()

	nodeSat := func(n graph.NodeIndex, descriptor ops.MatchOp) bool {
		if n == c.InputNode() || n == c.OutputNode() {
			return false
		}
		return descriptor.Matches(g.Op(n))
	}
	follow := func(n graph.NodeIndex, con Constraint) (graph.NodeIndex, bool) {
		ep, ok := g.SingleLinked(n, con.SrcPort)
		if !ok {
			return graph.InvalidNode, false
		}
		if con.Kind == EdgeInternal && ep.Port != con.DstPort {
			return graph.InvalidNode, false
		}
		return ep.Node, true
	}

	var out []*Match
	for _, rm := range m.automaton.Run(root, nodeSat, follow) {
		match, err := m.reconstruct(c, root, rm, checker)
		if err != nil {
			if errors.Is(err, rewrite.ErrNotConvex) {
				m.nonConvex.Add(1)
				continue
			}
			if errors.Is(err, rewrite.ErrInvalidBoundary) {
				continue
			}
			panic(fmt.Sprintf("matching: invalid match at root %d: %v", root, err))
		}
		out = append(out, match)
	}
	return out
}

// reconstruct maps the pattern's declared boundary through the binding
// and validates the region.
func (m *Matcher) reconstruct(c *circuit.Circuit, root graph.NodeIndex, rm RootedMatch, checker *rewrite.ConvexChecker) (*Match, error) {
	p := m.patterns[rm.Pattern]
	incoming := make([][]graph.Endpoint, len(p.Inputs))
	for i, group := range p.Inputs {
		for _, vp := range group {
			incoming[i] = append(incoming[i], graph.Endpoint{Node: rm.Binding[vp.Var], Port: vp.Port})
		}
	}
	outgoing := make([]graph.Endpoint, len(p.Outputs))
	for j, vp := range p.Outputs {
		outgoing[j] = graph.Endpoint{Node: rm.Binding[vp.Var], Port: vp.Port}
	}
	sub, err := rewrite.TryFromBoundary(c, checker, rm.Binding, incoming, outgoing)
	if err != nil {
		return nil, err
	}
	return &Match{Pattern: rm.Pattern, Root: root, Position: sub}, nil
}
