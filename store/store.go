// Package store loads records by kind and id. The relational schema of the
// surrounding application is not modelled here: records are stored as the
// same JSON documents record.Decode reads.
package store

import (
	"context"
	"errors"

	"github.com/lvillar/rtldoc/record"
)

var (
	// ErrNotFound is returned when no record exists for the kind and id.
	ErrNotFound = errors.New("store: record not found")
	// ErrInvalidID is returned for empty ids and ids that are not a single
	// path element.
	ErrInvalidID = errors.New("store: invalid id")
)

// Source loads records.
type Source interface {
	Load(ctx context.Context, kind record.Kind, id string) (record.Record, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, kind record.Kind, id string) (record.Record, error)

func (f SourceFunc) Load(ctx context.Context, kind record.Kind, id string) (record.Record, error) {
	return f(ctx, kind, id)
}
