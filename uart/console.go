package uart

import (
	"bytes"
	"fmt"
)

// Printf formats according to format and writes the result to c.
func Printf(c Console, format string, args ...any) (int, error) {
	return c.WriteString(fmt.Sprintf(format, args...))
}

// LineWriter is an io.Writer over a Console that turns each '\n' into a
// Newline call, so text written with Unix line endings comes out with the
// console's own convention. A '\r' directly before '\n' is dropped, also
// when the two arrive in separate writes; a trailing '\r' is held until the
// next Write or Flush.
type LineWriter struct {
	Console Console

	cr bool
}

func (w *LineWriter) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		if w.cr {
			w.cr = false
			if p[0] != '\n' {
				if _, err := w.Console.WriteString("\r"); err != nil {
					return n, err
				}
			}
		}

		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			chunk := p
			hold := chunk[len(chunk)-1] == '\r'
			if hold {
				chunk = chunk[:len(chunk)-1]
			}
			m, err := w.Console.WriteString(string(chunk))
			if err != nil {
				return n + m, err
			}
			w.cr = hold
			return n + len(p), nil
		}

		line := p[:i]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		m, err := w.Console.WriteString(string(line))
		if err != nil {
			return n + m, err
		}
		if err := w.Console.Newline(); err != nil {
			return n + len(line), err
		}

		n += i + 1
		p = p[i+1:]
	}
	return n, nil
}

// Flush writes a held '\r'.
func (w *LineWriter) Flush() error {
	if !w.cr {
		return nil
	}
	w.cr = false
	_, err := w.Console.WriteString("\r")
	return err
}
