package clc

import (
	"io"

	"github.com/juju/errors"
)

// charSource yields bytes of an input file one at a time and signals
// end-of-input, per spec.md §2 component A. It is deliberately the
// thinnest layer in the pipeline — everything interesting happens in
// the scanner that drives it.
type charSource struct {
	data []byte
	pos  int
}

func newCharSource(r io.Reader) (*charSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Annotate(err, "reading source")
	}
	return newCharSourceBytes(data), nil
}

// newCharSourceBytes builds a source directly from an in-memory buffer,
// letting callers that need to scan the same input more than once (see
// Compile) avoid re-reading the original io.Reader.
func newCharSourceBytes(data []byte) *charSource {
	return &charSource{data: data}
}

// next returns the next byte and true, or (0, false) at end-of-input.
func (s *charSource) next() (byte, bool) {
	if s.pos >= len(s.data) {
		return 0, false
	}
	b := s.data[s.pos]
	s.pos++
	return b, true
}
