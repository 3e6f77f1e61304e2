// Package ops defines the operation registry used by circuit graphs:
// gate kinds, their port signatures, and the derived facts (adjoints,
// identity phases, Pauli commutation classes) that the rewrite passes
// rely on.
package ops

import (
	"fmt"
	"math"
)

// WireKind classifies the edges of the dataflow graph.
type WireKind int

const (
	// KindQubit is a linear quantum wire. Each qubit port carries
	// exactly one link.
	KindQubit WireKind = iota
	// KindBit is a linear classical bit produced by measurement.
	KindBit
	// KindClassical is a copyable classical value.
	KindClassical
)

func (k WireKind) IsLinear() bool {
	return k == KindQubit || k == KindBit
}

func (k WireKind) String() string {
	switch k {
	case KindQubit:
		return "qubit"
	case KindBit:
		return "bit"
	case KindClassical:
		return "classical"
	}
	return fmt.Sprintf("WireKind(%d)", int(k))
}

// GateType enumerates the operations the optimizer understands natively.
type GateType int

const (
	Input GateType = iota
	Output
	Noop
	H
	X
	Y
	Z
	S
	Sdg
	T
	Tdg
	V
	Vdg
	CX
	CZ
	Rz
	Rx
	Measure
	Opaque
)

var gateNames = map[GateType]string{
	Input:   "Input",
	Output:  "Output",
	Noop:    "Noop",
	H:       "H",
	X:       "X",
	Y:       "Y",
	Z:       "Z",
	S:       "S",
	Sdg:     "Sdg",
	T:       "T",
	Tdg:     "Tdg",
	V:       "V",
	Vdg:     "Vdg",
	CX:      "CX",
	CZ:      "CZ",
	Rz:      "Rz",
	Rx:      "Rx",
	Measure: "Measure",
	Opaque:  "Opaque",
}

var gatesByName = func() map[string]GateType {
	m := make(map[string]GateType, len(gateNames))
	for g, name := range gateNames {
		m[name] = g
	}
	return m
}()

func (g GateType) String() string {
	if name, ok := gateNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GateType(%d)", int(g))
}

// GateTypeFromName resolves a gate name to its type. Unknown names map
// to Opaque.
func GateTypeFromName(name string) GateType {
	if g, ok := gatesByName[name]; ok {
		return g
	}
	return Opaque
}

// Op is an operation placed on a graph node. Parametrized rotations
// carry their angle in half-turns; opaque operations carry a name and
// an uninterpreted payload used for matching by canonical equality.
type Op struct {
	Type GateType
	// Param is the rotation angle in half-turns for Rz/Rx.
	Param float64
	// Name is set for Opaque operations only.
	Name string
	// Payload is the canonical serialized form of a foreign operation.
	Payload []byte
	// arity overrides for Input/Output boundary nodes and Opaque ops.
	arity int
}

// Gate returns an Op without parameters.
func Gate(t GateType) Op {
	return Op{Type: t}
}

// RzGate returns an Rz rotation by the given angle in half-turns.
func RzGate(halfTurns float64) Op {
	return Op{Type: Rz, Param: halfTurns}
}

// RxGate returns an Rx rotation by the given angle in half-turns.
func RxGate(halfTurns float64) Op {
	return Op{Type: Rx, Param: halfTurns}
}

// OpaqueGate wraps a foreign operation acting on nQubits qubits. The
// payload is compared by byte equality during pattern matching.
func OpaqueGate(name string, nQubits int, payload []byte) Op {
	return Op{Type: Opaque, Name: name, Payload: payload, arity: nQubits}
}

// InputNode returns the boundary input marker with the given signature width.
func InputNode(nQubits int) Op {
	return Op{Type: Input, arity: nQubits}
}

// OutputNode returns the boundary output marker with the given signature width.
func OutputNode(nQubits int) Op {
	return Op{Type: Output, arity: nQubits}
}

// DisplayName returns the printable name of the operation.
func (o Op) DisplayName() string {
	if o.Type == Opaque {
		return o.Name
	}
	return o.Type.String()
}

// IsBoundary reports whether the op is an Input or Output marker.
func (o Op) IsBoundary() bool {
	return o.Type == Input || o.Type == Output
}

// IsParametric reports whether equality of this op depends on more
// than its name.
func (o Op) IsParametric() bool {
	switch o.Type {
	case Rz, Rx:
		return true
	case Opaque:
		return len(o.Payload) > 0
	}
	return false
}

// NumQubits returns the number of qubit ports of the operation.
func (o Op) NumQubits() int {
	switch o.Type {
	case Input, Output:
		return o.arity
	case CX, CZ:
		return 2
	case Opaque:
		return o.arity
	default:
		return 1
	}
}

// Signature returns the incoming and outgoing wire kinds of the
// operation's ports, in port order.
func (o Op) Signature() (in, out []WireKind) {
	nq := o.NumQubits()
	qubits := make([]WireKind, nq)
	for i := range qubits {
		qubits[i] = KindQubit
	}
	switch o.Type {
	case Input:
		return nil, qubits
	case Output:
		return qubits, nil
	case Measure:
		return qubits, append(qubits, KindBit)
	default:
		return qubits, qubits
	}
}

// Dagger returns the adjoint operation, if it is representable.
func (o Op) Dagger() (Op, bool) {
	switch o.Type {
	case H, X, Y, Z, CX, CZ, Noop:
		return o, true
	case S:
		return Gate(Sdg), true
	case Sdg:
		return Gate(S), true
	case T:
		return Gate(Tdg), true
	case Tdg:
		return Gate(T), true
	case V:
		return Gate(Vdg), true
	case Vdg:
		return Gate(V), true
	case Rz:
		return RzGate(-o.Param), true
	case Rx:
		return RxGate(-o.Param), true
	}
	return Op{}, false
}

// IdentityPhase reports whether the operation is an identity up to a
// global phase, and returns that phase in half-turns.
func (o Op) IdentityPhase() (float64, bool) {
	switch o.Type {
	case Noop:
		return 0, true
	case Rz, Rx:
		// A rotation by a multiple of a full turn is an identity with
		// phase -theta/2.
		turns := o.Param / 2
		if turns == math.Trunc(turns) {
			return math.Mod(-o.Param/2, 2), true
		}
	}
	return 0, false
}

// QubitCommutation returns, for each qubit port of the operation, the
// Pauli operator it commutes with, or PauliNone where the operation
// does not commute with any Pauli at that port.
func (o Op) QubitCommutation() []Pauli {
	switch o.Type {
	case X, V, Vdg, Rx:
		return []Pauli{PauliX}
	case Y:
		return []Pauli{PauliY}
	case Z, S, Sdg, T, Tdg, Rz, Measure:
		return []Pauli{PauliZ}
	case CX:
		// control commutes with Z, target with X.
		return []Pauli{PauliZ, PauliX}
	case CZ:
		return []Pauli{PauliZ, PauliZ}
	case Noop:
		return []Pauli{PauliI}
	}
	return make([]Pauli, o.NumQubits()) // PauliNone everywhere
}

// Equal reports semantic equality of two operations.
func (o Op) Equal(other Op) bool {
	if o.Type != other.Type {
		return false
	}
	switch o.Type {
	case Rz, Rx:
		return o.Param == other.Param
	case Opaque:
		return o.Name == other.Name && string(o.Payload) == string(other.Payload)
	}
	return true
}
