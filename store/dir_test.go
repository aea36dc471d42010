package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/rtldoc/record"
)

func TestDirLoad(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "contract"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "contract", "42.json"),
		[]byte(`{"id": "42", "number": "C-42", "client_name": "Acme", "amount": 1000}`), 0o644))

	d := Dir{Root: root}
	r, err := d.Load(context.Background(), record.KindContract, "42")
	require.NoError(t, err)
	c, ok := r.(*record.Contract)
	require.True(t, ok)
	assert.Equal(t, "C-42", c.DocumentNumber())
	assert.EqualValues(t, 1000, c.Amount)

	_, err = d.Load(context.Background(), record.KindContract, "43")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = d.Load(context.Background(), record.KindEstimate, "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirRejectsPaths(t *testing.T) {
	d := Dir{Root: t.TempDir()}
	for _, id := range []string{"", ".", "..", "../x", `a\b`} {
		_, err := d.Load(context.Background(), record.KindContract, id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
	}
}

func TestDirDecodeError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "estimate"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "estimate", "1.json"), []byte(`{"bogus": 1}`), 0o644))

	_, err := Dir{Root: root}.Load(context.Background(), record.KindEstimate, "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSourceFunc(t *testing.T) {
	var src Source = SourceFunc(func(_ context.Context, kind record.Kind, id string) (record.Record, error) {
		return &record.Estimate{ID: id, Number: "E-" + id}, nil
	})
	r, err := src.Load(context.Background(), record.KindEstimate, "7")
	require.NoError(t, err)
	assert.Equal(t, "E-7", r.DocumentNumber())
}
