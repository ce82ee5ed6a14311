// Package testutil provides fixtures shared by tests, most notably a minimal
// in-memory AcroForm PDF builder so tests need no binary files on disk.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// FormFieldSpec declares one field of a generated test form.
type FormFieldSpec struct {
	Name   string
	FT     string // "Tx", "Btn", "Ch"
	MaxLen int    // 0 = no /MaxLen entry
}

// FormPDF assembles a single-page PDF with one merged widget annotation per
// field. Object offsets and the xref table are computed at build time, so the
// output is a well-formed document that pdfcpu can parse.
func FormPDF(fields ...FormFieldSpec) []byte {
	var objs []string

	refs := make([]string, len(fields))
	for i := range fields {
		refs[i] = fmt.Sprintf("%d 0 R", i+4)
	}
	kids := strings.Join(refs, " ")

	objs = append(objs,
		fmt.Sprintf("<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [%s] >> >>", kids),
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [%s] >>", kids),
	)

	for i, f := range fields {
		y := 720 - i*30
		entries := fmt.Sprintf(
			"/Type /Annot /Subtype /Widget /FT /%s /T (%s) /Rect [50 %d 300 %d]",
			f.FT, f.Name, y, y+20)
		if f.MaxLen > 0 {
			entries += fmt.Sprintf(" /MaxLen %d", f.MaxLen)
		}
		if f.FT == "Btn" {
			entries += " /V /Off /AS /Off"
		}
		objs = append(objs, "<< "+entries+" >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objs)+1, xref)
	return buf.Bytes()
}
