package rawdoc_test

import (
	"dartview/internal/pkg/rawdoc"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = DescribeTable("Classify",
	func(text string, expected rawdoc.Kind) {
		Expect(rawdoc.Classify(text)).To(Equal(expected))
	},
	Entry("doctype", "<!DOCTYPE html><html><body>x</body></html>", rawdoc.KindHTML),
	Entry("html root", "  <HTML><BODY>x</BODY></HTML>", rawdoc.KindHTML),
	Entry("xhtml", `<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"><body/></html>`, rawdoc.KindHTML),
	Entry("xhtml after doctype", `<?xml version="1.0"?>`+"\n"+`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "x"><html><body/></html>`, rawdoc.KindHTML),
	Entry("xml with an html child", `<?xml version="1.0"?><report><html>x</html></report>`, rawdoc.KindXML),
	Entry("xml mentioning html in a comment", `<?xml version="1.0"?><!-- <html> --><report>x</report>`, rawdoc.KindXML),
	Entry("dart with prolog", `<?xml version="1.0" encoding="utf-8"?>`+"\n"+`<DOCUMENT><DOCUMENT-NAME>분기보고서</DOCUMENT-NAME></DOCUMENT>`, rawdoc.KindXML),
	Entry("dart without prolog", `<DOCUMENT xmlns:xsi="x"><TABLE><TR><TD>1</TD></TR></TABLE></DOCUMENT>`, rawdoc.KindXML),
	Entry("html fragment", "<p>hello</p><table><tr><td>1</td></tr></table>", rawdoc.KindHTML),
	Entry("anchor fragment", "<a><b>1</b></a>", rawdoc.KindXML),
	Entry("generic xml", "<result><list><corp_code>00434003</corp_code></list></result>", rawdoc.KindXML),
	Entry("plain text", "매출액은 1 < 2 입니다", rawdoc.KindText),
	Entry("unclosed tag", "<note to self", rawdoc.KindText),
	Entry("empty", "   ", rawdoc.KindText),
)
