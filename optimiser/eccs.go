package optimiser

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/dlyongemallo/tket2/circuit"
)

// EqClass is a set of circuit fragments proven semantically equal.
// Any member may be rewritten into any other.
type EqClass struct {
	Name     string
	Circuits []*circuit.Circuit
}

// LoadECCs reads an equivalence-class library: a JSON object mapping
// class names to arrays of circuits in the interchange format. Classes
// are returned in name order so downstream pattern numbering is stable.
func LoadECCs(r io.Reader) ([]EqClass, error) {
	var raw map[string][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding ECC library")
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	classes := make([]EqClass, 0, len(raw))
	for _, name := range names {
		class := EqClass{Name: name}
		for i, msg := range raw[name] {
			c, err := circuit.Load(bytes.NewReader(msg))
			if err != nil {
				return nil, errors.Wrapf(err, "decoding circuit %d of class %q", i, name)
			}
			class.Circuits = append(class.Circuits, c)
		}
		classes = append(classes, class)
	}
	return classes, nil
}

// LoadECCsFile reads an equivalence-class library from a file.
func LoadECCsFile(path string) ([]EqClass, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening ECC file")
	}
	defer f.Close()
	return LoadECCs(f)
}
