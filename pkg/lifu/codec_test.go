package lifu

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecDefault(t *testing.T) {
	c, err := NewCodec("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCharset, c.Label())

	b, err := c.Encode("T=25°C")
	require.NoError(t, err)
	assert.Equal(t, []byte{'T', '=', '2', '5', 0xB0, 'C'}, b)

	s, err := c.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, "T=25°C", s)
}

func TestCodecWindows1251Reader(t *testing.T) {
	c, err := NewCodec("windows-1251")
	require.NoError(t, err)

	b, err := c.Encode("Привет")
	require.NoError(t, err)

	r, err := c.NewReader(strings.NewReader(string(b)))
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Привет", string(out))
}

func TestCodecUnknown(t *testing.T) {
	_, err := NewCodec("klingon-8")
	assert.Error(t, err)
}
