// Package encoding turns CSV uploads of unknown charset into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names reported by Decode.
const (
	UTF8        = "UTF-8"
	UTF16LE     = "UTF-16LE"
	UTF16BE     = "UTF-16BE"
	Windows1252 = "windows-1252"
	ISO88599    = "ISO-8859-9"
	ISO885915   = "ISO-8859-15"
)

const sniffLen = 4096

var boms = []struct {
	prefix  []byte
	charset string
	decoder xencoding.Encoding
}{
	{prefix: []byte{0xEF, 0xBB, 0xBF}, charset: UTF8},
	{prefix: []byte{0xFF, 0xFE}, charset: UTF16LE, decoder: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{prefix: []byte{0xFE, 0xFF}, charset: UTF16BE, decoder: unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// single-byte charsets chardet may report, mapped to their decoders. Latin-1 is read
// as Windows-1252, its superset.
var legacy = map[string]struct {
	charset string
	decoder xencoding.Encoding
}{
	"ISO-8859-1":   {charset: Windows1252, decoder: charmap.Windows1252},
	"windows-1252": {charset: Windows1252, decoder: charmap.Windows1252},
	"ISO-8859-9":   {charset: ISO88599, decoder: charmap.ISO8859_9},
	"ISO-8859-15":  {charset: ISO885915, decoder: charmap.ISO8859_15},
}

// Decode returns a reader yielding r's content as UTF-8, plus the charset it was
// read as. A BOM wins, then valid UTF-8, then chardet's guess; anything else is
// treated as Windows-1252, the usual spreadsheet export charset.
func Decode(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(buf, b.prefix) {
			continue
		}

		if b.decoder == nil {
			_, _ = br.Discard(len(b.prefix))
			return br, b.charset, nil
		}

		return transform.NewReader(br, b.decoder.NewDecoder()), b.charset, nil
	}

	if validUTF8Prefix(buf, len(buf) == sniffLen) {
		return br, UTF8, nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if res.Charset == UTF8 {
			return br, UTF8, nil
		}

		if l, ok := legacy[res.Charset]; ok {
			return transform.NewReader(br, l.decoder.NewDecoder()), l.charset, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

// NewUTF8Reader is Decode without the charset.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	out, _, err := Decode(r)
	return out, err
}

// validUTF8Prefix reports whether buf is valid UTF-8, allowing a rune cut off at the
// end when buf is only the start of a longer input.
func validUTF8Prefix(buf []byte, truncated bool) bool {
	if utf8.Valid(buf) {
		return true
	}

	if !truncated {
		return false
	}

	for cut := 1; cut < utf8.UTFMax && cut <= len(buf); cut++ {
		if utf8.Valid(buf[:len(buf)-cut]) {
			return true
		}
	}

	return false
}
