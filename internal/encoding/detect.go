// Package encoding normalizes uploaded statements to UTF-8. Banks export in
// whatever code page their software defaults to, so the charset is sniffed
// from the first bytes of the file.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset is the name of a detected character set.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO8859_9   Charset = "ISO-8859-9"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// sniffLen is how many leading bytes are inspected.
const sniffLen = 4096

// Detect guesses the charset of buf.
//
// Detection order:
//  1. BOM (UTF-8, UTF-16 LE/BE)
//  2. Valid UTF-8
//  3. Heuristic detection via chardet
//  4. Fallback to Windows-1252
func Detect(buf []byte) Charset {
	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		return UTF8
	case bytes.HasPrefix(buf, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(buf, bomUTF16BE):
		return UTF16BE
	case utf8.Valid(buf):
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return UTF8
		case "ISO-8859-1", "windows-1252":
			return Windows1252
		case "ISO-8859-9":
			return ISO8859_9
		}
	}

	return Windows1252
}

// NewUTF8Reader detects the encoding of the input and returns a reader that
// decodes the content to UTF-8, along with the detected charset. A UTF-8 BOM
// is discarded.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	charset := Detect(truncateRune(buf))

	if bytes.HasPrefix(buf, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		return br, charset, nil
	}

	dec := decoderFor(charset)
	if dec == nil {
		return br, charset, nil
	}

	return transform.NewReader(br, dec), charset, nil
}

// DecodeString reads all of data as UTF-8 text.
func DecodeString(data []byte) (string, Charset, error) {
	r, charset, err := NewUTF8Reader(bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return "", "", fmt.Errorf("decode %s: %w", charset, err)
	}

	return string(out), charset, nil
}

func decoderFor(c Charset) transform.Transformer {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case Windows1252:
		return charmap.Windows1252.NewDecoder()
	case ISO8859_9:
		return charmap.ISO8859_9.NewDecoder()
	}

	return nil
}

// truncateRune drops a UTF-8 sequence cut off by the sniff window so that a
// full buffer of valid UTF-8 is not mistaken for another charset.
func truncateRune(buf []byte) []byte {
	if len(buf) < sniffLen {
		return buf
	}

	for i := 0; i < utf8.UTFMax && i < len(buf); i++ {
		if utf8.Valid(buf[:len(buf)-i]) {
			return buf[:len(buf)-i]
		}
	}

	return buf
}
