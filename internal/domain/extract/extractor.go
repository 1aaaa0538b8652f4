// Package extract turns uploaded PDF, DOCX and TXT documents into plain text.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const (
	// DefaultMaxFileBytes caps every upload at 5 MiB.
	DefaultMaxFileBytes int64 = 5 * 1024 * 1024
	// DefaultMaxPDFPages bounds how many leading PDF pages are read.
	DefaultMaxPDFPages = 10
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type, please upload PDF, DOCX, or TXT files")
	ErrFileTooLarge      = errors.New("file too large")
	ErrExtraction        = errors.New("text extraction failed")
	ErrEmptyDocument     = errors.New("no readable text found in the uploaded file")
)

// Format identifies a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

// ContentType is the MIME type uploads of this format are stored with.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatTXT:
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// SupportedExtensions lists accepted filename suffixes in display order.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt"}
}

// Config bounds extraction work.
type Config struct {
	MaxFileBytes int64
	MaxPDFPages  int
}

// Extractor dispatches raw bytes to the format specific reader.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// NewExtractor constructs an Extractor, filling unset limits with defaults.
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = DefaultMaxFileBytes
	}
	if cfg.MaxPDFPages <= 0 {
		cfg.MaxPDFPages = DefaultMaxPDFPages
	}
	return &Extractor{cfg: cfg, logger: logger.With("component", "extract.extractor")}
}

// MaxFileBytes reports the configured upload ceiling.
func (e *Extractor) MaxFileBytes() int64 {
	return e.cfg.MaxFileBytes
}

// DetectFormat maps a filename to its format using a case-insensitive suffix match.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt":
		return FormatTXT, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Extract returns the plain text of data. The size ceiling applies to every
// format, and each reader enforces it again on its own.
func (e *Extractor) Extract(data []byte, filename string) (string, error) {
	if err := e.checkSize(data); err != nil {
		return "", err
	}
	format, err := DetectFormat(filename)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = e.extractPDF(data)
	case FormatDOCX:
		text, err = e.extractDOCX(data)
	case FormatTXT:
		text, err = e.extractTXT(data)
	}
	if err != nil {
		return "", err
	}
	e.logger.Debug("document extracted", "format", format, "bytes", len(data), "chars", len(text))
	return text, nil
}

func (e *Extractor) checkSize(data []byte) error {
	if int64(len(data)) > e.cfg.MaxFileBytes {
		return fmt.Errorf("%w: file size exceeds %dMB limit", ErrFileTooLarge, e.cfg.MaxFileBytes/(1024*1024))
	}
	return nil
}

func extractionError(format Format, err error) error {
	return fmt.Errorf("%w: error processing %s: %w", ErrExtraction, strings.ToUpper(string(format)), err)
}
