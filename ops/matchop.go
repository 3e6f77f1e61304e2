package ops

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/hashstructure"
)

// MatchOp is the matchable descriptor of an operation: its name plus,
// for parametric or opaque operations, a canonical encoded payload.
//
// Comparing encoded bytes sidesteps modelling every operation's
// parameter semantics in the matcher: two operations are considered
// equal iff they serialize identically.
type MatchOp struct {
	Name    string
	Encoded []byte
}

// NewMatchOp builds the matchable descriptor for an operation.
// Operations uniquely identified by their name carry no payload.
func NewMatchOp(op Op) MatchOp {
	m := MatchOp{Name: op.DisplayName()}
	if op.IsParametric() {
		m.Encoded = encodeOp(op)
	}
	return m
}

// Matches reports whether the given operation satisfies the descriptor.
func (m MatchOp) Matches(op Op) bool {
	if op.DisplayName() != m.Name {
		return false
	}
	if m.Encoded == nil {
		return true
	}
	return string(encodeOp(op)) == string(m.Encoded)
}

// Equal reports descriptor equality.
func (m MatchOp) Equal(other MatchOp) bool {
	return m.Name == other.Name && string(m.Encoded) == string(other.Encoded)
}

// Hash returns a structural hash of the operation, used to seed
// order-robust circuit hashing.
func Hash(op Op) uint64 {
	h, err := hashstructure.Hash(struct {
		Name    string
		Param   float64
		Payload string
	}{op.DisplayName(), op.Param, string(op.Payload)}, nil)
	if err != nil {
		// hashstructure only fails on unhashable kinds; the struct
		// above has none.
		panic(fmt.Sprintf("ops: hashing operation %s: %v", op.DisplayName(), err))
	}
	return h
}

func encodeOp(op Op) []byte {
	b, err := json.Marshal(struct {
		Name    string  `json:"name"`
		Param   float64 `json:"param"`
		Payload []byte  `json:"payload,omitempty"`
	}{op.DisplayName(), op.Param, op.Payload})
	if err != nil {
		panic(fmt.Sprintf("ops: encoding operation %s: %v", op.DisplayName(), err))
	}
	return b
}
