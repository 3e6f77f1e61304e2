package optimiser

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/dlyongemallo/tket2/circuit"
	"github.com/dlyongemallo/tket2/matching"
)

// serialRewriter is the stored form of an ECCRewriter. The matcher is
// embedded in its own binary format; replacements are stored in the
// circuit interchange format.
type serialRewriter struct {
	Matcher []byte
	Targets [][]serialTarget
}

type serialTarget struct {
	Circuit []byte
	Delta   float64
}

// SaveBinaryIO writes the compiled rewriter to w.
func (r *ECCRewriter) SaveBinaryIO(w io.Writer) error {
	var mbuf bytes.Buffer
	if err := r.matcher.SaveBinaryIO(&mbuf); err != nil {
		return err
	}
	s := serialRewriter{Matcher: mbuf.Bytes()}
	for _, tgts := range r.targets {
		row := make([]serialTarget, 0, len(tgts))
		for _, t := range tgts {
			var cbuf bytes.Buffer
			if err := t.replacement.Save(&cbuf); err != nil {
				return err
			}
			row = append(row, serialTarget{Circuit: cbuf.Bytes(), Delta: t.phaseDelta})
		}
		s.Targets = append(s.Targets, row)
	}
	if err := gob.NewEncoder(w).Encode(&s); err != nil {
		return errors.Wrap(err, "encoding rewriter")
	}
	return nil
}

// LoadBinaryIO reads a compiled rewriter from r.
func LoadBinaryIO(rd io.Reader) (*ECCRewriter, error) {
	var s serialRewriter
	if err := gob.NewDecoder(rd).Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decoding rewriter")
	}
	m, err := matching.LoadBinaryIO(bytes.NewReader(s.Matcher))
	if err != nil {
		return nil, err
	}
	targets := make([][]target, 0, len(s.Targets))
	for _, row := range s.Targets {
		tgts := make([]target, 0, len(row))
		for _, st := range row {
			c, err := circuit.Load(bytes.NewReader(st.Circuit))
			if err != nil {
				return nil, err
			}
			tgts = append(tgts, target{replacement: c, phaseDelta: st.Delta})
		}
		targets = append(targets, tgts)
	}
	return &ECCRewriter{matcher: m, targets: targets}, nil
}

// SaveBinary writes the rewriter to a file, normalizing the extension
// to the matcher binary extension. Returns the path written.
func (r *ECCRewriter) SaveBinary(name string) (string, error) {
	path := matching.NormalizeExt(name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating rewriter file")
	}
	defer f.Close()
	if err := r.SaveBinaryIO(f); err != nil {
		return "", err
	}
	return path, nil
}

// LoadBinary reads a rewriter from a file saved by SaveBinary.
func LoadBinary(name string) (*ECCRewriter, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "opening rewriter file")
	}
	defer f.Close()
	return LoadBinaryIO(f)
}
