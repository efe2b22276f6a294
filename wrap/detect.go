package wrap

import (
	"errors"

	"github.com/h2non/filetype"
)

// ErrBinary is returned for files which look like known binary formats.
var ErrBinary = errors.New("not a text file")

// binaryKind returns name of the binary format data is recognized as, empty
// string for everything else.
func binaryKind(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	if kind.MIME.Value != "" {
		return kind.MIME.Value
	}
	return kind.Extension
}
