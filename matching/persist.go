package matching

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MatcherExt is the file extension matcher binaries are saved under.
const MatcherExt = ".bin"

// serialMatcher is the persisted form of a matcher: the compiled
// automaton plus the pattern list, so that precompiled matchers can be
// reused across runs without recompilation.
type serialMatcher struct {
	Patterns  []*Pattern
	Automaton *Automaton
}

// SaveBinaryIO serializes the matcher into a byte stream.
func (m *Matcher) SaveBinaryIO(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(serialMatcher{Patterns: m.patterns, Automaton: m.automaton}); err != nil {
		return errors.Wrap(err, "encoding matcher")
	}
	return nil
}

// LoadBinaryIO deserializes a matcher from a byte stream written by
// SaveBinaryIO.
func LoadBinaryIO(r io.Reader) (*Matcher, error) {
	var sm serialMatcher
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&sm); err != nil {
		return nil, errors.Wrap(err, "decoding matcher")
	}
	return &Matcher{automaton: sm.Automaton, patterns: sm.Patterns}, nil
}

// SaveBinary writes the matcher to a file, normalizing the extension to
// MatcherExt. Returns the path of the file written.
func (m *Matcher) SaveBinary(name string) (string, error) {
	path := NormalizeExt(name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating matcher file")
	}
	defer f.Close()
	if err := m.SaveBinaryIO(f); err != nil {
		return "", err
	}
	return path, nil
}

// LoadBinary reads a matcher from a file written by SaveBinary.
func LoadBinary(name string) (*Matcher, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "opening matcher file")
	}
	defer f.Close()
	return LoadBinaryIO(f)
}

// NormalizeExt replaces any extension on name with MatcherExt.
func NormalizeExt(name string) string {
	if old := filepath.Ext(name); old != "" {
		name = strings.TrimSuffix(name, old)
	}
	return name + MatcherExt
}
