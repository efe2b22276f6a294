package wrap

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrEncoding is returned when file content does not match configured
// encoding.
var ErrEncoding = errors.New("content does not match encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// codec converts file content to UTF-8 text and back.
type codec struct {
	name string
	// nil for UTF-8, content is used as is
	enc encoding.Encoding
}

// newCodec resolves encoding label using WHATWG names first and IANA
// registry after that.
func newCodec(label string) (*codec, error) {
	label = strings.TrimSpace(label)
	if e, name := charset.Lookup(label); e != nil {
		if strings.EqualFold(name, "utf-8") {
			return &codec{name: name}, nil
		}
		return &codec{name: name, enc: e}, nil
	}

	e, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	if e == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	name, _ := ianaindex.IANA.Name(e)
	if strings.EqualFold(name, "utf-8") {
		return &codec{name: name}, nil
	}
	return &codec{name: name, enc: e}, nil
}

// decode returns content as UTF-8 text. UTF-8 byte order mark is reported
// separately so it does not get in the way of line matching.
func (c *codec) decode(data []byte) (text string, bom bool, err error) {
	if c.enc == nil {
		if bytes.HasPrefix(data, utf8BOM) {
			data, bom = data[len(utf8BOM):], true
		}
		if !utf8.Valid(data) {
			return "", false, fmt.Errorf("%w %s", ErrEncoding, c.name)
		}
		return string(data), bom, nil
	}

	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false, fmt.Errorf("%w %s: %w", ErrEncoding, c.name, err)
	}
	return string(out), false, nil
}

// encode converts text back to file content.
func (c *codec) encode(text string, bom bool) ([]byte, error) {
	if c.enc == nil {
		if bom {
			return append(bytes.Clone(utf8BOM), text...), nil
		}
		return []byte(text), nil
	}

	out, err := c.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("unable to encode to %s: %w", c.name, err)
	}
	return out, nil
}
