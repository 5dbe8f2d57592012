package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ id int }

func (w *widget) Type() string { return "Widget" }

type gadget struct{}

func (g *gadget) Type() string { return "Gadget" }

func TestRegisterAndGet(t *testing.T) {
	r := New()

	w := &widget{id: 1}
	r.Register("w1", w)

	got, ok := r.Get("w1")
	require.True(t, ok)
	assert.Same(t, w, got)
}

func TestGetMissing(t *testing.T) {
	r := New()

	_, ok := r.Get("nope")
	assert.False(t, ok)
}

func TestRegisterOverwrites(t *testing.T) {
	r := New()

	first := &widget{id: 1}
	second := &widget{id: 2}
	r.Register("w", first)
	r.Register("w", second)

	got, ok := r.Get("w")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, r.Size())
}

func TestRegisterNilIgnored(t *testing.T) {
	r := New()
	r.Register("w", nil)
	assert.False(t, r.Has("w"))
}

func TestRemove(t *testing.T) {
	r := New()
	r.Register("w", &widget{})

	assert.True(t, r.Remove("w"))
	assert.False(t, r.Remove("w"), "second remove should report absence")
	assert.False(t, r.Has("w"))
}

func TestNamesSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		r.Register(name, &widget{})
	}

	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, r.Names())
}

func TestClearAndSize(t *testing.T) {
	r := New()
	for i := 0; i < 40; i++ {
		r.Register(fmt.Sprintf("obj-%d", i), &widget{id: i})
	}
	require.Equal(t, 40, r.Size())

	r.Clear()
	assert.Equal(t, 0, r.Size())
	assert.Empty(t, r.Names())
}

func TestLookupTyped(t *testing.T) {
	r := New()
	w := &widget{id: 9}
	r.Register("w", w)

	got, err := Lookup[*widget](r, "w")
	require.NoError(t, err)
	assert.Same(t, w, got)
}

func TestLookupNotFound(t *testing.T) {
	r := New()

	_, err := Lookup[*widget](r, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupWrongType(t *testing.T) {
	r := New()
	r.Register("g", &gadget{})

	_, err := Lookup[*widget](r, "g")
	require.ErrorIs(t, err, ErrWrongType)
	assert.Contains(t, err.Error(), "Gadget", "error should name the held type")
}

func TestConcurrentAccess(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		g := g
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				name := fmt.Sprintf("obj-%d-%d", g, i)
				r.Register(name, &widget{id: i})
				_, ok := r.Get(name)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, r.Size())
}

func TestDefaultWrappers(t *testing.T) {
	defer Default.Clear()

	w := &widget{id: 3}
	Register("default-w", w)

	got, ok := Get("default-w")
	require.True(t, ok)
	assert.Same(t, w, got)

	assert.True(t, Remove("default-w"))
	_, ok = Get("default-w")
	assert.False(t, ok)
}
