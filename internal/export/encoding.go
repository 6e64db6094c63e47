package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Encoding is the byte encoding of text exports.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF8BOM     Encoding = "utf-8-bom"
	EncodingWindows1252 Encoding = "windows-1252"
)

var ErrUnsupportedEncoding = errors.New("unsupported_encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func ParseEncoding(raw string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "utf8", "utf-8":
		return EncodingUTF8, nil
	case "utf8-bom", "utf-8-bom", "excel":
		return EncodingUTF8BOM, nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return EncodingWindows1252, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, raw)
	}
}

// NewWriter wraps w so that UTF-8 text written to the result comes out in
// enc. Close must be called to flush the transcoder; it does not close w.
func NewWriter(w io.Writer, enc Encoding) (io.WriteCloser, error) {
	switch enc {
	case EncodingUTF8, "":
		return nopCloser{w}, nil
	case EncodingUTF8BOM:
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, err
		}
		return nopCloser{w}, nil
	case EncodingWindows1252:
		return transform.NewWriter(w, transform.Chain(outsideCodePage, charmap.Windows1252.NewEncoder())), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, enc)
	}
}

// outsideCodePage turns runes Windows-1252 cannot represent into '?'.
var outsideCodePage = runes.Map(func(r rune) rune {
	if _, ok := charmap.Windows1252.EncodeRune(r); ok {
		return r
	}
	return '?'
})

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
