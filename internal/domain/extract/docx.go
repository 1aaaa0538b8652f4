package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const docxBodyPart = "word/document.xml"

func (e *Extractor) extractDOCX(data []byte) (string, error) {
	if err := e.checkSize(data); err != nil {
		return "", err
	}
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", extractionError(FormatDOCX, err)
	}
	var part *zip.File
	for _, f := range archive.File {
		if f.Name == docxBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", extractionError(FormatDOCX, errors.New("missing "+docxBodyPart))
	}
	rc, err := part.Open()
	if err != nil {
		return "", extractionError(FormatDOCX, err)
	}
	defer rc.Close()

	paragraphs, err := bodyParagraphs(io.LimitReader(rc, 8*e.cfg.MaxFileBytes))
	if err != nil {
		return "", extractionError(FormatDOCX, err)
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

// bodyParagraphs returns the text of every top-level w:p under w:body in
// document order. Table cells and text boxes are not body paragraphs.
func bodyParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		depth      int // open w:p elements inside the current body paragraph
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", docxBodyPart, err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			name := el.Name.Local
			switch {
			case name == "p" && depth == 0 && len(stack) > 0 && stack[len(stack)-1] == "body":
				depth = 1
				current.Reset()
			case name == "p" && depth > 0:
				depth++
			case depth == 1 && name == "t":
				inText = true
			case depth == 1 && name == "tab":
				current.WriteString("\t")
			case depth == 1 && (name == "br" || name == "cr"):
				current.WriteString("\n")
			}
			stack = append(stack, name)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch {
			case el.Name.Local == "t":
				inText = false
			case el.Name.Local == "p" && depth > 0:
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			}
		case xml.CharData:
			if inText && depth == 1 {
				current.Write(el)
			}
		}
	}
	return paragraphs, nil
}

func (e *Extractor) extractTXT(data []byte) (string, error) {
	if err := e.checkSize(data); err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", extractionError(FormatTXT, errors.New("invalid utf-8 byte sequence"))
	}
	return string(data), nil
}
