package offsets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zenlang/zls/internal/source"
	"github.com/zenlang/zls/location"
)

func TestByteOffsetUTF16ASCII(t *testing.T) {
	reg := source.NewRegistry()
	id := location.MustNewSourceID("test://ascii.zen")
	require.NoError(t, reg.Register(id, []byte("hello\nworld\n")))

	cases := []struct {
		line, char, want int
	}{
		{0, 0, 0},
		{0, 2, 2},
		{0, 5, 5},
		{1, 0, 6},
		{1, 2, 8},
	}
	for _, c := range cases {
		got, ok := ByteOffset(reg, id, c.line, c.char, UTF16)
		require.True(t, ok)
		require.Equal(t, c.want, got)
	}
}

func TestByteOffsetUTF16BMP(t *testing.T) {
	reg := source.NewRegistry()
	id := location.MustNewSourceID("test://bmp.zen")
	// "héllo" = h(1) + é(2) + l(1) + l(1) + o(1) = 6 bytes, 5 UTF-16 units
	require.NoError(t, reg.Register(id, []byte("héllo\n")))

	cases := []struct{ char, want int }{
		{0, 0}, {1, 1}, {2, 3}, {3, 4}, {4, 5}, {5, 6},
	}
	for _, c := range cases {
		got, ok := ByteOffset(reg, id, 0, c.char, UTF16)
		require.True(t, ok)
		require.Equal(t, c.want, got)
	}
}

func TestByteOffsetUTF16Surrogate(t *testing.T) {
	reg := source.NewRegistry()
	id := location.MustNewSourceID("test://emoji.zen")
	// "a😀b" = a(1) + 😀(4 bytes, 2 UTF-16 units) + b(1)
	require.NoError(t, reg.Register(id, []byte("a😀b\n")))

	got, ok := ByteOffset(reg, id, 0, 1, UTF16)
	require.True(t, ok)
	require.Equal(t, 1, got)

	// mid-surrogate request floors to the start of the emoji rune
	got, ok = ByteOffset(reg, id, 0, 2, UTF16)
	require.True(t, ok)
	require.Equal(t, 1, got)

	got, ok = ByteOffset(reg, id, 0, 3, UTF16)
	require.True(t, ok)
	require.Equal(t, 5, got)
}

func TestByteOffsetUTF8IsByteOffset(t *testing.T) {
	reg := source.NewRegistry()
	id := location.MustNewSourceID("test://utf8.zen")
	require.NoError(t, reg.Register(id, []byte("héllo\n")))

	got, ok := ByteOffset(reg, id, 0, 3, UTF8)
	require.True(t, ok)
	require.Equal(t, 3, got)
}

func TestByteOffsetUnknownSourceOrLine(t *testing.T) {
	reg := source.NewRegistry()
	id := location.MustNewSourceID("test://missing.zen")

	_, ok := ByteOffset(reg, id, 0, 0, UTF16)
	require.False(t, ok)

	other := location.MustNewSourceID("test://present.zen")
	require.NoError(t, reg.Register(other, []byte("a\n")))
	_, ok = ByteOffset(reg, other, 5, 0, UTF16)
	require.False(t, ok)
}

func TestRangeRoundTripsThroughPositionAt(t *testing.T) {
	reg := source.NewRegistry()
	id := location.MustNewSourceID("test://range.zen")
	content := []byte("fn add(a: i32) i32 {\n    return a;\n}\n")
	require.NoError(t, reg.Register(id, content))

	startPos := reg.PositionAt(id, 3) // "add" starts at byte 3
	endPos := reg.PositionAt(id, 6)
	span := location.Span{Source: id, Start: startPos, End: endPos}

	start, end, ok := Range(reg, span, UTF16)
	require.True(t, ok)
	require.Equal(t, [2]int{0, 3}, start)
	require.Equal(t, [2]int{0, 6}, end)
}
