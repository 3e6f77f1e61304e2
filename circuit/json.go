package circuit

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/dlyongemallo/tket2/ops"
)

// serialCircuit is the JSON interchange form of a circuit. It preserves
// node operations, wire topology (as an ordered command list) and the
// global phase.
type serialCircuit struct {
	Phase    float64         `json:"phase"`
	Qubits   int             `json:"qubits"`
	Commands []serialCommand `json:"commands"`
}

type serialCommand struct {
	Op   serialOp `json:"op"`
	Args []int    `json:"args"`
}

type serialOp struct {
	Type    string   `json:"type"`
	Param   *float64 `json:"param,omitempty"`
	Payload []byte   `json:"payload,omitempty"`
	NQubits int      `json:"n_qb,omitempty"`
}

// Save writes the circuit to w in the JSON interchange format.
func (c *Circuit) Save(w io.Writer) error {
	sc := serialCircuit{
		Phase:    c.phase,
		Qubits:   c.nqubits,
		Commands: make([]serialCommand, 0, c.NumGates()),
	}
	for _, cmd := range c.Commands() {
		so := serialOp{Type: cmd.Op.DisplayName()}
		if cmd.Op.Type == ops.Rz || cmd.Op.Type == ops.Rx {
			p := cmd.Op.Param
			so.Param = &p
		}
		if cmd.Op.Type == ops.Opaque {
			so.Payload = cmd.Op.Payload
			so.NQubits = cmd.Op.NumQubits()
		}
		sc.Commands = append(sc.Commands, serialCommand{Op: so, Args: cmd.Qubits()})
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(sc); err != nil {
		return errors.Wrap(err, "encoding circuit")
	}
	return nil
}

// Load reads a circuit from r in the JSON interchange format.
func Load(r io.Reader) (*Circuit, error) {
	var sc serialCircuit
	if err := json.NewDecoder(r).Decode(&sc); err != nil {
		return nil, errors.Wrap(err, "decoding circuit")
	}
	c := New(sc.Qubits)
	for _, cmd := range sc.Commands {
		op, err := opFromSerial(cmd.Op)
		if err != nil {
			return nil, err
		}
		if err := c.Append(op, cmd.Args...); err != nil {
			return nil, errors.Wrapf(err, "appending %s", cmd.Op.Type)
		}
	}
	c.phase = normPhase(sc.Phase)
	return c, nil
}

func opFromSerial(so serialOp) (ops.Op, error) {
	t := ops.GateTypeFromName(so.Type)
	switch t {
	case ops.Rz, ops.Rx:
		if so.Param == nil {
			return ops.Op{}, errors.Errorf("operation %s is missing its parameter", so.Type)
		}
		if t == ops.Rz {
			return ops.RzGate(*so.Param), nil
		}
		return ops.RxGate(*so.Param), nil
	case ops.Opaque:
		return ops.OpaqueGate(so.Type, so.NQubits, so.Payload), nil
	case ops.Input, ops.Output:
		return ops.Op{}, errors.Errorf("boundary operation %s in command list", so.Type)
	default:
		return ops.Gate(t), nil
	}
}

// SaveFile writes the circuit to a named file.
func (c *Circuit) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating circuit file")
	}
	defer f.Close()
	return c.Save(f)
}

// LoadFile reads a circuit from a named file.
func LoadFile(path string) (*Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening circuit file")
	}
	defer f.Close()
	return Load(f)
}
