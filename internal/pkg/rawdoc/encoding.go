package rawdoc

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/korean"
)

type Encoding string

const (
	UTF8  Encoding = "utf-8"
	EUCKR Encoding = "euc-kr"
)

// declarations are only looked for in the head of the document
const sniffLen = 1024

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	reMetaCharset = regexp.MustCompile(`(?i)<meta[^>]+charset\s*=\s*["']?\s*([\w.:-]+)`)
	reXMLEncoding = regexp.MustCompile(`(?i)<\?xml[^>]*encoding\s*=\s*["']\s*([\w.:-]+)`)
)

// charsetAliases maps Microsoft code page names missing from the WHATWG
// label table. CP949 is a superset of EUC-KR.
var charsetAliases = map[string]string{
	"cp949":         "euc-kr",
	"ms949":         "euc-kr",
	"x-windows-949": "euc-kr",
}

// DetectEncoding guesses whether b is UTF-8 or EUC-KR.
//
// Bytes that are valid UTF-8 are UTF-8 whatever the document claims, since
// the backend re-encodes some filings without touching their meta tags.
func DetectEncoding(b []byte) Encoding {
	if bytes.HasPrefix(b, utf8BOM) || utf8.Valid(b) {
		return UTF8
	}

	if label := DeclaredCharset(b); label != "" {
		if alias, ok := charsetAliases[label]; ok {
			label = alias
		}
		if _, name := charset.Lookup(label); name == string(EUCKR) {
			return EUCKR
		}
	}

	if decodesAsEUCKR(b) {
		return EUCKR
	}
	return UTF8
}

// DeclaredCharset returns the charset label named by a meta tag or an XML
// declaration near the start of b, or "".
func DeclaredCharset(b []byte) string {
	head := b
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	if m := reXMLEncoding.FindSubmatch(head); m != nil {
		return strings.ToLower(string(m[1]))
	}
	if m := reMetaCharset.FindSubmatch(head); m != nil {
		return strings.ToLower(string(m[1]))
	}
	return ""
}

func decodesAsEUCKR(b []byte) bool {
	out, err := korean.EUCKR.NewDecoder().Bytes(b)
	if err != nil {
		return false
	}
	return !bytes.ContainsRune(out, utf8.RuneError)
}

// Decode converts b to a UTF-8 string using the detected encoding.
// Undecodable UTF-8 sequences become U+FFFD.
func Decode(b []byte) (string, Encoding, error) {
	enc := DetectEncoding(b)

	if enc == EUCKR {
		out, err := korean.EUCKR.NewDecoder().Bytes(b)
		if err != nil {
			return "", enc, err
		}
		return string(out), enc, nil
	}

	b = bytes.TrimPrefix(b, utf8BOM)
	return strings.ToValidUTF8(string(b), "\uFFFD"), UTF8, nil
}
