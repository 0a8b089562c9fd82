package loader

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// DecodeBody converts a raw response body to a string using the encoding
// sniffed from the bytes themselves. The charset declared in Content-Type is
// deliberately not consulted; the registry labels its exports inconsistently.
//
// A body that is valid UTF-8 as a whole is taken as UTF-8. Only otherwise is
// the encoding sniffed, since the sniffer reads just the first kilobyte.
// A leading byte order mark is dropped.
func DecodeBody(body []byte) (string, error) {
	if utf8.Valid(body) {
		return string(bytes.TrimPrefix(body, utf8BOM)), nil
	}

	enc, name, _ := charset.DetermineEncoding(body, "")
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode body as %s: %w", name, err)
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}

// Normalize applies NFKD so that Nordic characters compare equal whether the
// registry sent them composed or decomposed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return norm.NFKD.String(s)
}
