package generator

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/vanshika/wormsim/internal/domain"
)

// WriteEdgeList writes one "source,target" record per edge, without a header.
func WriteEdgeList(w io.Writer, edges []domain.Edge) error {
	writer := csv.NewWriter(w)
	for _, e := range edges {
		if err := writer.Write([]string{e.Source, e.Target}); err != nil {
			return errors.Wrapf(err, "write edge %s-%s", e.Source, e.Target)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteEdgeListFile writes the edge list to path, creating parent directories.
func WriteEdgeListFile(path string, edges []domain.Edge) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(domain.Classify(domain.ErrIO, err), "create output dir")
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(domain.Classify(domain.ErrIO, err), "open %s", path)
	}
	defer file.Close()

	if err := WriteEdgeList(file, edges); err != nil {
		return errors.Wrap(domain.Classify(domain.ErrIO, err), path)
	}
	return nil
}
