package jsonconf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapReader serves files from memory and counts reads per path.
func mapReader(files map[string]string, counts map[string]int) FileReader {
	return func(path string) ([]byte, error) {
		content, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", path)
		}
		if counts != nil {
			counts[path]++
		}
		return []byte(content), nil
	}
}

func TestParseScalars(t *testing.T) {
	p := NewParser()

	n, err := p.Parse([]byte(`"hello"`), "")
	require.NoError(t, err)
	assert.Equal(t, StringNode, n.Type)
	assert.Equal(t, "hello", n.Str)

	n, err = p.Parse([]byte(`42.5`), "")
	require.NoError(t, err)
	assert.Equal(t, NumberNode, n.Type)
	assert.Equal(t, 42.5, n.Num)

	n, err = p.Parse([]byte(`true`), "")
	require.NoError(t, err)
	assert.Equal(t, BoolNode, n.Type)
	assert.True(t, n.Bool)

	n, err = p.Parse([]byte(`null`), "")
	require.NoError(t, err)
	assert.Equal(t, NullNode, n.Type)
}

func TestParseStructure(t *testing.T) {
	p := NewParser()

	n, err := p.Parse([]byte(`{"server":{"port":8080,"hosts":["a","b"]},"debug":false}`), "")
	require.NoError(t, err)

	assert.Equal(t, 8080.0, n.Child("server").Child("port").NumberOr(0))
	assert.Equal(t, "b", n.Child("server").Child("hosts").Element(1).StringOr(""))
	assert.False(t, n.Child("debug").BoolOr(true))
}

func TestAccessorDefaults(t *testing.T) {
	p := NewParser()
	n, err := p.Parse([]byte(`{"num":1}`), "")
	require.NoError(t, err)

	assert.Equal(t, "fallback", n.Child("missing").StringOr("fallback"))
	assert.Equal(t, 9.0, n.Child("num").Child("deeper").NumberOr(9))
	assert.True(t, n.Child("num").BoolOr(true), "type mismatch falls back to default")
	assert.Nil(t, n.Element(0), "Element on an object returns nil")
}

func TestInvalidJSON(t *testing.T) {
	p := NewParser()
	_, err := p.Parse([]byte(`{"broken":`), "")
	assert.Error(t, err)
}

func TestSingleInclude(t *testing.T) {
	files := map[string]string{
		"etc/main.json": `{"$include": "db.json"}`,
		"etc/db.json":   `{"host": "localhost", "port": 5432}`,
	}
	p := NewParserWithReader(mapReader(files, nil))

	n, err := p.ParseFile("etc/main.json")
	require.NoError(t, err)

	assert.Equal(t, "localhost", n.Child("host").StringOr(""))
	assert.Equal(t, 5432.0, n.Child("port").NumberOr(0))
	assert.True(t, n.Included)
	assert.Equal(t, "db.json", n.IncludePath, "the path as written, not the resolved one")
}

func TestIncludeReplacesWholeObject(t *testing.T) {
	files := map[string]string{
		"main.json":  `{"kept": "no", "$include": "other.json"}`,
		"other.json": `{"only": "this"}`,
	}
	p := NewParserWithReader(mapReader(files, nil))

	n, err := p.ParseFile("main.json")
	require.NoError(t, err)

	assert.Equal(t, "this", n.Child("only").StringOr(""))
	assert.Nil(t, n.Child("kept"), "sibling keys of the directive are discarded")
}

func TestArrayIncludeMergesLaterWins(t *testing.T) {
	files := map[string]string{
		"main.json":     `{"$include": ["base.json", "override.json"]}`,
		"base.json":     `{"a": 1, "b": 1}`,
		"override.json": `{"b": 2, "c": 2}`,
	}
	p := NewParserWithReader(mapReader(files, nil))

	n, err := p.ParseFile("main.json")
	require.NoError(t, err)

	assert.Equal(t, 1.0, n.Child("a").NumberOr(0))
	assert.Equal(t, 2.0, n.Child("b").NumberOr(0), "later files overwrite earlier keys")
	assert.Equal(t, 2.0, n.Child("c").NumberOr(0))
	assert.True(t, n.Included)
}

func TestNestedIncludeResolvesRelativeToIncludingFile(t *testing.T) {
	files := map[string]string{
		"etc/main.json":     `{"$include": "sub/mid.json"}`,
		"etc/sub/mid.json":  `{"$include": "leaf.json"}`,
		"etc/sub/leaf.json": `{"deep": true}`,
	}
	p := NewParserWithReader(mapReader(files, nil))

	n, err := p.ParseFile("etc/main.json")
	require.NoError(t, err)
	assert.True(t, n.Child("deep").BoolOr(false))
}

func TestIncludeNestedInsideValue(t *testing.T) {
	files := map[string]string{
		"main.json":    `{"app": "demo", "storage": {"$include": "storage.json"}}`,
		"storage.json": `{"engine": "pool"}`,
	}
	p := NewParserWithReader(mapReader(files, nil))

	n, err := p.ParseFile("main.json")
	require.NoError(t, err)

	assert.Equal(t, "demo", n.Child("app").StringOr(""))
	storage := n.Child("storage")
	require.NotNil(t, storage)
	assert.Equal(t, "pool", storage.Child("engine").StringOr(""))
	assert.True(t, storage.Included)
}

func TestIncludeCycle(t *testing.T) {
	files := map[string]string{
		"a.json": `{"$include": "b.json"}`,
		"b.json": `{"$include": "a.json"}`,
	}
	p := NewParserWithReader(mapReader(files, nil))

	_, err := p.ParseFile("a.json")
	assert.ErrorIs(t, err, ErrIncludeCycle)
}

func TestIncludeCacheReadsOnce(t *testing.T) {
	counts := map[string]int{}
	files := map[string]string{
		"main.json":   `{"x": {"$include": "shared.json"}, "y": {"$include": "shared.json"}}`,
		"shared.json": `{"v": 1}`,
	}
	p := NewParserWithReader(mapReader(files, counts))

	_, err := p.ParseFile("main.json")
	require.NoError(t, err)
	assert.Equal(t, 1, counts["shared.json"], "second include must come from the cache")
}

func TestBadIncludeDirective(t *testing.T) {
	p := NewParserWithReader(mapReader(map[string]string{
		"main.json": `{"$include": 42}`,
	}, nil))

	_, err := p.ParseFile("main.json")
	assert.ErrorIs(t, err, ErrBadInclude)
}

func TestMissingIncludeFile(t *testing.T) {
	p := NewParserWithReader(mapReader(map[string]string{
		"main.json": `{"$include": "ghost.json"}`,
	}, nil))

	_, err := p.ParseFile("main.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost.json")
}

func TestAbsoluteAndSchemePathsPassThrough(t *testing.T) {
	var requested []string
	reader := func(path string) ([]byte, error) {
		requested = append(requested, path)
		return []byte(`{}`), nil
	}
	p := NewParserWithReader(reader)

	_, err := p.Parse([]byte(`{"a": {"$include": "/abs/deps.json"}, "b": {"$include": "mem://blob"}}`), "dir/main.json")
	require.NoError(t, err)
	assert.Contains(t, requested, "/abs/deps.json")
	assert.Contains(t, requested, "mem://blob")
}

func TestJSONRenderingSortedStable(t *testing.T) {
	p := NewParser()
	n, err := p.Parse([]byte(`{"b":2,"a":{"x":[1,2]},"c":"s"}`), "")
	require.NoError(t, err)

	want := `{
  "a": {
    "x": [
      1,
      2
    ]
  },
  "b": 2,
  "c": "s"
}`
	assert.Equal(t, want, n.JSON())
	assert.Equal(t, n.JSON(), n.JSON(), "rendering must be deterministic")
}

func TestJSONEscaping(t *testing.T) {
	n := NewObject()
	n.Add("quote", NewString(`say "hi"`+"\n"))

	assert.Contains(t, n.JSON(), `"say \"hi\"\n"`)
}

func TestDumpAnnotatesIncludes(t *testing.T) {
	files := map[string]string{
		"main.json": `{"cfg": {"$include": "inc.json"}}`,
		"inc.json":  `{"k": "v"}`,
	}
	p := NewParserWithReader(mapReader(files, nil))

	n, err := p.ParseFile("main.json")
	require.NoError(t, err)

	var buf bytes.Buffer
	n.Dump(&buf)

	out := buf.String()
	assert.Contains(t, out, `"cfg":`)
	assert.Contains(t, out, "[included from: inc.json]")
	assert.Contains(t, out, `"k":`)
}
