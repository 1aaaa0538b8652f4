// Package textcraft runs summarize and paraphrase requests from validation
// through extraction, generation and cleanup.
package textcraft

import (
	"context"
	"time"

	"github.com/yanqian/textcraft/internal/domain/generation"
)

// Config bounds direct text input.
type Config struct {
	MaxTextChars int
}

// SummarizeRequest is the /predict payload.
type SummarizeRequest struct {
	Text string `json:"text"`
}

// SummaryResponse carries a cleaned summary.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// ParaphraseRequest is the /paraphrase payload. A nil LengthFactor means 1.0.
type ParaphraseRequest struct {
	Text         string   `json:"text"`
	LengthFactor *float64 `json:"length_factor,omitempty"`
}

// ParaphraseResponse carries the rewritten text and the factor applied.
type ParaphraseResponse struct {
	ParaphrasedText string  `json:"paraphrased_text"`
	LengthFactor    float64 `json:"length_factor"`
}

// FileRequest is an uploaded document plus the operation to run on it.
type FileRequest struct {
	Filename     string
	Data         []byte
	Operation    string
	LengthFactor *float64
}

// FileResponse reports the outcome of an upload. LengthFactor is null for summaries.
type FileResponse struct {
	Filename     string   `json:"filename"`
	Operation    string   `json:"operation"`
	LengthFactor *float64 `json:"length_factor"`
	Result       string   `json:"result"`
}

// Health describes the service and its loaded models.
type Health struct {
	Status           string            `json:"status"`
	Features         []string          `json:"features"`
	SupportedFormats []string          `json:"supported_formats"`
	MaxFileSizeMB    int64             `json:"max_file_size_mb"`
	MaxTextLength    int               `json:"max_text_length"`
	Models           map[string]string `json:"models"`
}

// InputSource says whether a run started from text or an upload.
type InputSource string

const (
	SourceText InputSource = "text"
	SourceFile InputSource = "file"
)

// Run is one completed operation as kept in the history log.
type Run struct {
	ID           string               `json:"id"`
	Operation    generation.Operation `json:"operation"`
	Source       InputSource          `json:"source"`
	Filename     string               `json:"filename,omitempty"`
	Model        string               `json:"model"`
	ModelSource  generation.Source    `json:"model_source"`
	InputChars   int                  `json:"input_chars"`
	OutputChars  int                  `json:"output_chars"`
	LengthFactor *float64             `json:"length_factor,omitempty"`
	Cached       bool                 `json:"cached"`
	LatencyMs    int64                `json:"latency_ms"`
	CreatedAt    time.Time            `json:"created_at"`
}

// DocumentExtractor turns uploaded bytes into text.
type DocumentExtractor interface {
	Extract(data []byte, filename string) (string, error)
	MaxFileBytes() int64
}

// PromptPolicy prepares model input and decoding parameters.
type PromptPolicy interface {
	Prepare(op generation.Operation, text string, lengthFactor float64) (generation.Prompt, error)
}

// PipelineProvider hands out loaded pipelines per operation.
type PipelineProvider interface {
	Get(ctx context.Context, op generation.Operation) (*generation.Pipeline, error)
	Loaded() map[generation.Operation]generation.ModelReference
}

// ResultCache stores cleaned summaries by key.
type ResultCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// HistoryRepository records completed runs.
type HistoryRepository interface {
	Append(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// UploadArchive keeps a copy of raw uploads.
type UploadArchive interface {
	Store(ctx context.Context, key string, data []byte, contentType string) error
}
