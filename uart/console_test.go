package uart

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// textConsole records output, marking each Newline with "|".
type textConsole struct {
	strings.Builder
	failAfter int
}

func (c *textConsole) WriteString(s string) (int, error) {
	if c.failAfter > 0 && c.Len()+len(s) > c.failAfter {
		return 0, errors.New("full")
	}
	return c.Builder.WriteString(s)
}

func (c *textConsole) Newline() error {
	c.Builder.WriteByte('|')
	return nil
}

func TestLineWriter(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"", ""},
		{"abc", "abc"},
		{"a\nb\n", "a|b|"},
		{"dos\r\nline\r\n", "dos|line|"},
		{"\n\n", "||"},
		{"keep\rme", "keep\rme"},
	} {
		c := &textConsole{}
		n, err := (&LineWriter{Console: c}).Write([]byte(tc.in))
		require.NoError(t, err)
		require.Equal(t, len(tc.in), n)
		require.Equal(t, tc.want, c.String())
	}
}

func TestLineWriterSplitCRLF(t *testing.T) {
	c := &textConsole{}
	w := &LineWriter{Console: c}

	for _, chunk := range []string{"a\r", "\nb\r", "c\r", "", "\r\n", "end\r"} {
		n, err := w.Write([]byte(chunk))
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}
	require.Equal(t, "a|b\rc\r|end", c.String())

	require.NoError(t, w.Flush())
	require.NoError(t, w.Flush())
	require.Equal(t, "a|b\rc\r|end\r", c.String())
}

func TestLineWriterError(t *testing.T) {
	c := &textConsole{failAfter: 3}
	n, err := (&LineWriter{Console: c}).Write([]byte("ab\ncdef\n"))
	require.Error(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "ab|", c.String())
}

func TestPrintf(t *testing.T) {
	c := &textConsole{}
	n, err := Printf(c, "%s at %#x", "COM1", COM1)
	require.NoError(t, err)
	require.Equal(t, "COM1 at 0x3f8", c.String())
	require.Equal(t, len("COM1 at 0x3f8"), n)
}
