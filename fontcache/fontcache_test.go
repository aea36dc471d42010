package fontcache_test

import (
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lvillar/rtldoc/fontcache"
)

func latinSpec(paths ...string) fontcache.Spec {
	return fontcache.Spec{Name: "body", Candidates: paths, Require: []rune{'A', 'z', '7'}}
}

func TestLookupFirstValidCandidate(t *testing.T) {
	fsys := fstest.MapFS{
		"fonts/broken.ttf":  {Data: []byte("not a font")},
		"fonts/regular.ttf": {Data: goregular.TTF},
		"fonts/bold.ttf":    {Data: gobold.TTF},
	}
	c := fontcache.New([]fontcache.Spec{
		latinSpec("fonts/missing.ttf", "fonts/broken.ttf", "fonts/regular.ttf", "fonts/bold.ttf"),
	}, fontcache.WithFS(fsys))

	f, err := c.Lookup("body")
	require.NoError(t, err)
	assert.Equal(t, "fonts/regular.ttf", f.Path)
	assert.Equal(t, "Go", f.Family)
	assert.Equal(t, goregular.TTF, f.Data)
	assert.Positive(t, f.Glyphs)

	again, err := c.Lookup("body")
	require.NoError(t, err)
	assert.Same(t, f, again)
	assert.EqualValues(t, 1, c.Probes())
}

func TestLookupRejectsMissingGlyphs(t *testing.T) {
	fsys := fstest.MapFS{"fonts/Vazirmatn-Regular.ttf": {Data: goregular.TTF}}
	c := fontcache.New(fontcache.DefaultSpecs(), fontcache.WithFS(fsys))

	_, err := c.Lookup(fontcache.Persian)
	assert.ErrorIs(t, err, fontcache.ErrFontUnavailable)
}

func TestMissesAreNotCached(t *testing.T) {
	fsys := fstest.MapFS{}
	c := fontcache.New([]fontcache.Spec{latinSpec("fonts/regular.ttf")}, fontcache.WithFS(fsys))

	_, err := c.Lookup("body")
	require.ErrorIs(t, err, fontcache.ErrFontUnavailable)

	fsys["fonts/regular.ttf"] = &fstest.MapFile{Data: goregular.TTF}
	f, err := c.Lookup("body")
	require.NoError(t, err)
	assert.Equal(t, "fonts/regular.ttf", f.Path)
	assert.EqualValues(t, 2, c.Probes())
}

func TestUnknownFont(t *testing.T) {
	_, err := fontcache.Empty().Lookup(fontcache.Persian)
	assert.ErrorIs(t, err, fontcache.ErrUnknownFont)
}

func TestConcurrentLookupsConverge(t *testing.T) {
	fsys := fstest.MapFS{
		"a.ttf": {Data: goregular.TTF},
		"b.ttf": {Data: gobold.TTF},
	}
	c := fontcache.New([]fontcache.Spec{latinSpec("a.ttf", "b.ttf")}, fontcache.WithFS(fsys))

	const n = 32
	got := make([]*fontcache.Font, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := c.Lookup("body")
			if err == nil {
				got[i] = f
			}
		}(i)
	}
	wg.Wait()

	for i := range got {
		require.NotNil(t, got[i])
		assert.Same(t, got[0], got[i])
	}
	assert.Equal(t, "a.ttf", got[0].Path)
}

func TestDefaultSpecs(t *testing.T) {
	specs := fontcache.DefaultSpecs()
	require.Len(t, specs, 2)
	assert.Equal(t, fontcache.Persian, specs[0].Name)
	assert.Contains(t, specs[0].Candidates, "fonts/Vazirmatn-Regular.ttf")
	assert.NotEmpty(t, specs[1].Require)
}
