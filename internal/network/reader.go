package network

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
)

// ReadEdgeList parses a headerless two-column CSV edge list.
func ReadEdgeList(r io.Reader) (*Graph, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	b := newBuilder()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, errors.Wrapf(domain.ErrInputFormat, "line %d: %v", parseErr.Line, parseErr.Err)
			}
			return nil, errors.Wrap(domain.Classify(domain.ErrIO, err), "read edge list")
		}
		edge, err := edgeFromRow(record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, errors.WithMessagef(err, "line %d", line)
		}
		b.add(edge)
	}
	return b.freeze(), nil
}

// LoadFile opens path and reads it as an edge list.
func LoadFile(path string) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(domain.Classify(domain.ErrIO, err), "open %s", path)
	}
	defer file.Close()

	g, err := ReadEdgeList(file)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return g, nil
}
