package ops

import "fmt"

// Pauli identifies the single-qubit Pauli operator an operation
// commutes with at one of its ports.
type Pauli int

const (
	// PauliNone marks a port with no known commutation class. It
	// blocks every commutation check.
	PauliNone Pauli = iota
	PauliI
	PauliX
	PauliY
	PauliZ
)

func (p Pauli) String() string {
	switch p {
	case PauliI:
		return "I"
	case PauliX:
		return "X"
	case PauliY:
		return "Y"
	case PauliZ:
		return "Z"
	}
	return fmt.Sprintf("Pauli(%d)", int(p))
}

// CommutesWith implements the standard Pauli commutation table:
// identical Paulis commute, I commutes with everything, and distinct
// non-identity Paulis anticommute. Unknown classes never commute.
func (p Pauli) CommutesWith(other Pauli) bool {
	if p == PauliNone || other == PauliNone {
		return false
	}
	return p == PauliI || other == PauliI || p == other
}
