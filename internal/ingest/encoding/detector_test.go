package encoding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/charmap"
)

func TestDetect_Empty(t *testing.T) {
	assert.Equal(t, Default, New(nil).Detect(nil))
}

func TestDetect_UTF8(t *testing.T) {
	text := strings.Repeat("Привет, мир! Это обычный текст в кодировке UTF-8.\n", 40)
	got := New(nil).Detect([]byte(text))
	assert.Equal(t, "utf-8", got)
}

func TestDetect_NeverEmpty(t *testing.T) {
	d := New(nil)
	inputs := [][]byte{
		{0xff, 0xfe, 0x00},
		[]byte("a"),
		{0xe9, 0x74, 0xe9},
	}
	for _, in := range inputs {
		assert.NotEmpty(t, d.Detect(in))
	}
}

func TestDecode_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("café déjà vu")
	assert.NoError(t, err)

	assert.Equal(t, "café déjà vu", Decode([]byte(raw), "latin-1"))
}

func TestDecode_Windows1252(t *testing.T) {
	// 0x80 is the euro sign in cp1252.
	assert.Equal(t, "€5", Decode([]byte{0x80, '5'}, "cp1252"))
}

func TestDecode_UnknownNameReplacesInvalid(t *testing.T) {
	got := Decode([]byte{'o', 'k', 0xff}, "no-such-charset")
	assert.Equal(t, "ok�", got)
}

func TestValidUTF8Prefix_CutRune(t *testing.T) {
	b := []byte("añ")
	// drop the final byte of the two-byte ñ
	assert.True(t, validUTF8Prefix(b[:len(b)-1]))
	assert.False(t, validUTF8Prefix([]byte{'a', 0xff, 'b'}))
}
