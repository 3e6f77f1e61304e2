package optimiser

import (
	"github.com/pkg/errors"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/graph"
	"github.com/dlyongemallo/tket2/matching"
	"github.com/dlyongemallo/tket2/rewrite"
)

// Rewriter enumerates candidate rewrites of a circuit.
type Rewriter interface {
	GetRewrites(c *circuit.Circuit) []*rewrite.Rewrite
}

// target is one replacement option for a matched pattern.
type target struct {
	replacement *circuit.Circuit
	phaseDelta  float64
}

// ECCRewriter rewrites circuits using an equivalence-class library.
// Every member of a class that compiles to a pattern can be replaced
// by any other member of the same class. The matcher and targets are
// immutable after construction and safe for concurrent use.
type ECCRewriter struct {
	matcher *matching.Matcher
	targets [][]target
}

// NewECCRewriter compiles an equivalence-class library into a
// multi-pattern rewriter. Wires empty in every member of a class are
// stripped before compilation so class members keep aligned
// boundaries. Members that cannot serve as patterns (the empty
// fragment of an identity class) still serve as replacements.
func NewECCRewriter(classes []EqClass) (*ECCRewriter, error) {
	return NewECCRewriterProgress(classes, nil)
}

// NewECCRewriterProgress is NewECCRewriter with a per-class progress
// callback, for interactive callers compiling large libraries.
func NewECCRewriterProgress(classes []EqClass, onClass func(done, total int)) (*ECCRewriter, error) {
	var patterns []*matching.Pattern
	var targets [][]target

	for ci, class := range classes {
		if err := trimSharedEmptyWires(class.Circuits); err != nil {
			return nil, errors.Wrapf(err, "trimming class %q", class.Name)
		}
		for i, src := range class.Circuits {
			p, err := matching.FromCircuit(src)
			if err != nil {
				continue
			}
			var tgts []target
			for j, repl := range class.Circuits {
				if j == i {
					continue
				}
				tgts = append(tgts, target{
					replacement: repl,
					phaseDelta:  repl.GlobalPhase() - src.GlobalPhase(),
				})
			}
			if len(tgts) == 0 {
				continue
			}
			patterns = append(patterns, p)
			targets = append(targets, tgts)
		}
		if onClass != nil {
			onClass(ci+1, len(classes))
		}
	}
	if len(patterns) == 0 {
		return nil, errors.New("ECC library produced no usable patterns")
	}
	return &ECCRewriter{matcher: matching.FromPatterns(patterns), targets: targets}, nil
}

// NPatterns returns the number of compiled source patterns.
func (r *ECCRewriter) NPatterns() int { return r.matcher.NPatterns() }

// GetRewrites returns every convex match of every class member against
// the circuit, paired with each alternative member of its class.
func (r *ECCRewriter) GetRewrites(c *circuit.Circuit) []*rewrite.Rewrite {
	var rewrites []*rewrite.Rewrite
	for _, m := range r.matcher.FindMatches(c) {
		for _, t := range r.targets[m.Pattern] {
			rw, err := m.ToRewrite(t.replacement, t.phaseDelta)
			if err != nil {
				continue
			}
			rewrites = append(rewrites, rw)
		}
	}
	return rewrites
}

// trimSharedEmptyWires removes, from every circuit of a class, the
// wire offsets that are empty in all of them.
func trimSharedEmptyWires(circuits []*circuit.Circuit) error {
	if len(circuits) == 0 {
		return nil
	}
	shared := emptyWires(circuits[0])
	for _, c := range circuits[1:] {
		here := emptyWires(c)
		for off := range shared {
			if !here[off] {
				delete(shared, off)
			}
		}
	}
	offsets := make([]int, 0, len(shared))
	for off := range shared {
		offsets = append(offsets, off)
	}
	// Descending so earlier removals do not shift later offsets.
	for i := 0; i < len(offsets); i++ {
		for j := i + 1; j < len(offsets); j++ {
			if offsets[j] > offsets[i] {
				offsets[i], offsets[j] = offsets[j], offsets[i]
			}
		}
	}
	for _, off := range offsets {
		for _, c := range circuits {
			if err := c.RemoveEmptyWire(off); err != nil {
				return err
			}
		}
	}
	return nil
}

func emptyWires(c *circuit.Circuit) map[int]bool {
	g := c.Graph()
	empty := make(map[int]bool)
	for off := 0; off < c.QubitCount(); off++ {
		ep, ok := g.SingleLinked(c.InputNode(), graph.OutgoingPort(off))
		if ok && ep.Node == c.OutputNode() {
			empty[off] = true
		}
	}
	return empty
}
