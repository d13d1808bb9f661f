package candump

import (
	"bufio"
	"io"
	"strings"

	j1939 "github.com/truckbus/go-j1939-candump"
)

// Reader reads candump log lines from stream and tracks line numbers for
// diagnostics. Reader is not safe for concurrent use.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	text    string
}

func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next frame from the log. Blank lines are skipped. A line
// that fails to parse is returned as *MalformedLineError and does not stop
// the reader, calling Next again continues with the following line. Next
// returns io.EOF when the input is exhausted.
func (r *Reader) Next() (j1939.Frame, error) {
	for r.scanner.Scan() {
		r.line++
		r.text = r.scanner.Text()
		if strings.TrimSpace(r.text) == "" {
			continue
		}
		frame, err := ParseLine(r.text)
		if err != nil {
			return j1939.Frame{}, &MalformedLineError{Line: r.line, Text: r.text, Err: err}
		}
		return frame, nil
	}
	if err := r.scanner.Err(); err != nil {
		return j1939.Frame{}, err
	}
	return j1939.Frame{}, io.EOF
}

// Line returns 1-based number of the most recently read line.
func (r *Reader) Line() int {
	return r.line
}

// Text returns raw text of the most recently read line. Useful for
// re-emitting matched lines in their original form.
func (r *Reader) Text() string {
	return r.text
}
