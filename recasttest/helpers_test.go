package recasttest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/recast"
)

func TestTestKey(t *testing.T) {
	assert.Len(t, TestKey(t), 32)
}

func TestTestEncryptor(t *testing.T) {
	enc := TestEncryptor(t)
	require.NotNil(t, enc)

	ciphertext, err := enc.Encrypt([]byte("test"))
	require.NoError(t, err)
	plaintext, err := enc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "test", string(plaintext))
}

func TestNewRecaster_RegistersCatalog(t *testing.T) {
	r := NewRecaster(t)

	for alias, template := range map[string]any{
		"circle":  Circle{},
		"square":  Square{},
		"polygon": Polygon{},
		"Pt":      Pt{},
	} {
		got, ok := r.AliasOf(template)
		assert.True(t, ok, alias)
		assert.Equal(t, alias, got)
	}
	_, ok := r.AliasOf(Point{})
	assert.False(t, ok)
}

func TestParseMap_KeepsOrder(t *testing.T) {
	m, err := ParseMap([]byte("b: 1\na: 2\nc: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
}

func TestParseMap_IdentifierFirst(t *testing.T) {
	m, err := ParseMap([]byte("x: 1\n__recast: Pt\ny: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{recast.IdentifierKey, "x", "y"}, m.Keys())
	assert.Equal(t, "Pt", m.Identifier())
}

func TestParseMap_Scalars(t *testing.T) {
	m, err := ParseMap([]byte(`
int: -42
big: 18446744073709551615
hex: 0x1F
float: 1.5
inf: .inf
bool: true
null: ~
str: hello
quoted: "12"
bin: !!binary aGVsbG8=
`))
	require.NoError(t, err)

	tests := []struct {
		key  string
		want any
	}{
		{"int", int64(-42)},
		{"big", uint64(math.MaxUint64)},
		{"hex", int64(31)},
		{"float", 1.5},
		{"inf", math.Inf(1)},
		{"bool", true},
		{"null", nil},
		{"str", "hello"},
		{"quoted", "12"},
		{"bin", []byte("hello")},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := m.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMap_Containers(t *testing.T) {
	m, err := ParseMap([]byte(`
list: [1, two, {k: v}]
nested:
  inner:
    deep: true
base: &b {x: 1}
copy: *b
`))
	require.NoError(t, err)

	list, _ := m.Get("list")
	require.IsType(t, []any{}, list)
	items := list.([]any)
	assert.Equal(t, int64(1), items[0])
	assert.Equal(t, "two", items[1])
	require.IsType(t, &recast.Map{}, items[2])

	nested, _ := m.Get("nested")
	inner, _ := nested.(*recast.Map).Get("inner")
	deep, _ := inner.(*recast.Map).Get("deep")
	assert.Equal(t, true, deep)

	base, _ := m.Get("base")
	cp, _ := m.Get("copy")
	assert.True(t, base.(*recast.Map).Equal(cp.(*recast.Map)))
	assert.NotSame(t, base, cp)
}

func TestParseMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"root sequence", "- 1\n- 2\n"},
		{"root scalar", "hello\n"},
		{"identifier not a string", "__recast: [a]\n"},
		{"complex key", "? [a, b]\n: 1\n"},
		{"self-referencing sequence", "a: &x [*x]\n"},
		{"self-referencing mapping", "a: &x {b: *x}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMap([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrUnsupportedNode)
		})
	}

	_, err := ParseMap([]byte("a: [unclosed\n"))
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	out := Dump(Point{X: 3, Y: 4})
	assert.Contains(t, out, "X: (int) 3")
	assert.Contains(t, out, "Y: (int) 4")
}

func TestPolygonArea(t *testing.T) {
	p := &Polygon{Points: []Point{{0, 0}, {4, 0}, {0, 3}}}
	assert.InDelta(t, 6.0, p.Area(), 1e-9)
}

func TestStatusText(t *testing.T) {
	text, err := StatusShipped.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "shipped", string(text))

	var s Status
	require.NoError(t, s.UnmarshalText([]byte("delivered")))
	assert.Equal(t, StatusDelivered, s)
	assert.Error(t, s.UnmarshalText([]byte("lost")))

	_, err = Status(9).MarshalText()
	assert.Error(t, err)
}
