package rawdoc_test

import (
	"dartview/internal/pkg/rawdoc"
	"dartview/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DetectEncoding", func() {
	It("treats valid UTF-8 as UTF-8 even when EUC-KR is declared", func() {
		doc := []byte(`<html><head><meta charset="euc-kr"></head><body>삼성전자</body></html>`)
		Expect(rawdoc.DetectEncoding(doc)).To(Equal(rawdoc.UTF8))
	})

	It("follows a declared EUC-KR charset", func() {
		doc := testhelpers.EUCKR(`<html><head><meta http-equiv="Content-Type" content="text/html; charset=EUC-KR"></head><body>분기보고서</body></html>`)
		Expect(rawdoc.DetectEncoding(doc)).To(Equal(rawdoc.EUCKR))
	})

	It("resolves the legacy ks_c_5601-1987 label", func() {
		doc := testhelpers.EUCKR(`<meta charset="ks_c_5601-1987"><p>공시</p>`)
		Expect(rawdoc.DetectEncoding(doc)).To(Equal(rawdoc.EUCKR))
	})

	DescribeTable("resolves Microsoft code page labels",
		func(label string, tail []byte) {
			doc := append(testhelpers.EUCKR(`<meta charset="`+label+`"><p>감사보고서</p>`), tail...)
			Expect(rawdoc.DetectEncoding(doc)).To(Equal(rawdoc.EUCKR))
		},
		Entry("cp949", "cp949", nil),
		Entry("ms949", "MS949", nil),
		Entry("windows-949", "windows-949", nil),
		Entry("cp949 with a stray trailing byte", "cp949", []byte{0xff}),
	)

	It("guesses EUC-KR for undeclared bytes that decode cleanly", func() {
		Expect(rawdoc.DetectEncoding(testhelpers.EUCKR("<p>공시 원문</p>"))).To(Equal(rawdoc.EUCKR))
	})

	It("falls back to UTF-8 for garbage", func() {
		Expect(rawdoc.DetectEncoding([]byte{'a', 0xff, 'b'})).To(Equal(rawdoc.UTF8))
	})
})

var _ = Describe("DeclaredCharset", func() {
	DescribeTable("finds the label",
		func(doc, expected string) {
			Expect(rawdoc.DeclaredCharset([]byte(doc))).To(Equal(expected))
		},
		Entry("meta charset", `<meta charset="UTF-8">`, "utf-8"),
		Entry("http-equiv", `<meta http-equiv="content-type" content="text/html; charset=EUC-KR">`, "euc-kr"),
		Entry("xml prolog", `<?xml version="1.0" encoding='euc-kr'?><DOCUMENT/>`, "euc-kr"),
		Entry("nothing", `<p>hello</p>`, ""),
	)
})

var _ = Describe("Decode", func() {
	It("decodes EUC-KR to UTF-8", func() {
		text, enc, err := rawdoc.Decode(testhelpers.EUCKR("<p>공시 원문</p>"))
		Expect(err).NotTo(HaveOccurred())
		Expect(enc).To(Equal(rawdoc.EUCKR))
		Expect(text).To(Equal("<p>공시 원문</p>"))
	})

	It("strips the UTF-8 BOM", func() {
		text, enc, err := rawdoc.Decode(append([]byte{0xEF, 0xBB, 0xBF}, "hello"...))
		Expect(err).NotTo(HaveOccurred())
		Expect(enc).To(Equal(rawdoc.UTF8))
		Expect(text).To(Equal("hello"))
	})

	It("replaces invalid sequences", func() {
		text, _, err := rawdoc.Decode([]byte{'a', 0xff, 'b'})
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("a\uFFFDb"))
	})
})
