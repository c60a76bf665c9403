package tools

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	pdfx "github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxPDFPages = 20

// RenderAttachment converts a downloaded task file into prompt text:
// PDF and HTML are reduced to plain text, UTF-8 text passes through, and
// anything else is described by its sniffed content type and size.
func RenderAttachment(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	ctype := http.DetectContentType(b)
	switch {
	case bytes.HasPrefix(b, []byte("%PDF-")):
		text, pages, err := pdfText(b)
		if err != nil {
			return fmt.Sprintf("PDF attachment (%d bytes); text extraction failed: %v", len(b), err)
		}
		if text == "" {
			return fmt.Sprintf("PDF attachment (%d bytes, %d pages) without extractable text", len(b), pages)
		}
		return text
	case strings.HasPrefix(ctype, "text/html"):
		text, err := htmlText(b)
		if err != nil {
			return strings.TrimSpace(string(b))
		}
		return text
	case strings.HasPrefix(ctype, "text/"), utf8.Valid(b) && !bytes.ContainsRune(b, 0):
		return strings.TrimSpace(string(b))
	}
	return fmt.Sprintf("binary attachment (%s, %d bytes)", ctype, len(b))
}

func pdfText(b []byte) (text string, pages int, err error) {
	defer func() {
		// the pdf reader panics on some malformed inputs
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed pdf: %v", p)
		}
	}()
	r, err := pdfx.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", 0, err
	}
	pages = r.NumPage()
	var out strings.Builder
	for i := 1; i <= pages && i <= maxPDFPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(txt); t != "" {
			out.WriteString(t)
			out.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(out.String()), pages, nil
}

// Elements whose content never shows on the page.
var hiddenElements = map[atom.Atom]bool{
	atom.Head: true, atom.Title: true, atom.Script: true, atom.Style: true,
	atom.Noscript: true, atom.Template: true,
}

// Elements that start and end their own line.
var lineElements = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true, atom.Ul: true,
	atom.Ol: true, atom.Tr: true, atom.Table: true, atom.Blockquote: true,
	atom.Pre: true, atom.Section: true, atom.Article: true, atom.Header: true,
	atom.Footer: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true,
}

// htmlText streams the document through the tokenizer and keeps the visible
// text, one line per block element with runs of whitespace squeezed.
func htmlText(b []byte) (string, error) {
	z := html.NewTokenizer(bytes.NewReader(b))
	var (
		lines  []string
		line   strings.Builder
		hidden int
	)
	endLine := func() {
		if s := strings.Join(strings.Fields(line.String()), " "); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			endLine()
			return strings.Join(lines, "\n"), nil
		case html.TextToken:
			if hidden == 0 {
				line.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case hiddenElements[a]:
				if tt == html.StartTagToken {
					hidden++
				}
			case lineElements[a]:
				endLine()
			case a == atom.Td || a == atom.Th:
				line.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case hiddenElements[a]:
				if hidden > 0 {
					hidden--
				}
			case lineElements[a]:
				endLine()
			}
		}
	}
}
