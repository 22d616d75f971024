package encoding

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	apperrors "github.com/ZanzyTHEbar/quality-culture-o-meter/internal/errors"
)

// Encoder renders reports and reference tables as JSON. HTML escaping is off
// so labels such as "R&D" survive unchanged.
type Encoder struct {
	indent string
	pool   sync.Pool
}

// NewEncoder creates an encoder. pretty indents with two spaces.
func NewEncoder(pretty bool) *Encoder {
	e := &Encoder{
		pool: sync.Pool{
			New: func() interface{} { return new(bytes.Buffer) },
		},
	}
	if pretty {
		e.indent = "  "
	}
	return e
}

func (e *Encoder) encode(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", e.indent)
	if err := enc.Encode(v); err != nil {
		return apperrors.NewInternalError("failed to encode response", err)
	}
	return nil
}

// Marshal returns the encoding of v without a trailing newline.
func (e *Encoder) Marshal(v interface{}) ([]byte, error) {
	buf := e.pool.Get().(*bytes.Buffer)
	buf.Reset()
	defer e.pool.Put(buf)

	if err := e.encode(buf, v); err != nil {
		return nil, err
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return append([]byte(nil), data...), nil
}

// Encode writes the encoding of v followed by a newline.
func (e *Encoder) Encode(w io.Writer, v interface{}) error {
	buf := e.pool.Get().(*bytes.Buffer)
	buf.Reset()
	defer e.pool.Put(buf)

	if err := e.encode(buf, v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
