package testhelpers

import (
	"golang.org/x/text/encoding/korean"
)

// EUCKR encodes s the way older DART filings are stored.
func EUCKR(s string) []byte {
	b, err := korean.EUCKR.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}
	return b
}
