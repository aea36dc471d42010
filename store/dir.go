package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvillar/rtldoc/record"
)

// Dir reads records from JSON files laid out as <root>/<kind>/<id>.json.
type Dir struct {
	Root string
}

var _ Source = Dir{}

// Path returns the file holding the record.
func (d Dir) Path(kind record.Kind, id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(d.Root, string(kind), id+".json"), nil
}

// Load returns the record stored under kind and id.
func (d Dir) Load(_ context.Context, kind record.Kind, id string) (record.Record, error) {
	path, err := d.Path(kind, id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer f.Close()
	return record.Decode(kind, f)
}
