package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageSource is the part of a parsed PDF the extractor needs. Pages are 1-indexed.
type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

type ledongthucPages struct {
	reader *pdf.Reader
}

func (p ledongthucPages) NumPage() int {
	return p.reader.NumPage()
}

func (p ledongthucPages) PageText(num int) (string, error) {
	page := p.reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func openPDF(data []byte) (src pageSource, err error) {
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return ledongthucPages{reader: reader}, nil
}

func (e *Extractor) extractPDF(data []byte) (string, error) {
	if err := e.checkSize(data); err != nil {
		return "", err
	}
	src, err := openPDF(data)
	if err != nil {
		return "", extractionError(FormatPDF, err)
	}
	text, err := readPages(src, e.cfg.MaxPDFPages)
	if err != nil {
		return "", extractionError(FormatPDF, err)
	}
	if total := src.NumPage(); total > e.cfg.MaxPDFPages {
		e.logger.Info("pdf truncated to page limit", "pages", total, "limit", e.cfg.MaxPDFPages)
	}
	return text, nil
}

// readPages joins the text of the first maxPages pages with newlines. Later
// pages are ignored.
func readPages(src pageSource, maxPages int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read page: %v", r)
		}
	}()
	count := src.NumPage()
	if maxPages > 0 && count > maxPages {
		count = maxPages
	}
	var builder strings.Builder
	for num := 1; num <= count; num++ {
		pageText, err := src.PageText(num)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", num, err)
		}
		builder.WriteString(pageText)
		builder.WriteString("\n")
	}
	return strings.TrimSpace(builder.String()), nil
}
