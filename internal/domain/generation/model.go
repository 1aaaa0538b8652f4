// Package generation decides which checkpoint serves an operation, how the
// input is prepared for it, and keeps loaded pipelines for reuse.
package generation

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidOperation    = errors.New("invalid operation, must be 'summarize' or 'paraphrase'")
	ErrInvalidLengthFactor = errors.New("length_factor must be between 0.3 and 2.0")
)

const (
	MinLengthFactor     = 0.3
	MaxLengthFactor     = 2.0
	DefaultLengthFactor = 1.0
)

// Operation names a text transformation.
type Operation string

const (
	OperationSummarize  Operation = "summarize"
	OperationParaphrase Operation = "paraphrase"
)

// ParseOperation accepts only the exact lower-case operation names.
func ParseOperation(raw string) (Operation, error) {
	switch Operation(raw) {
	case OperationSummarize:
		return OperationSummarize, nil
	case OperationParaphrase:
		return OperationParaphrase, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, raw)
	}
}

// Task is the inference pipeline kind an operation runs on.
func (o Operation) Task() Task {
	if o == OperationParaphrase {
		return TaskText2Text
	}
	return TaskSummarization
}

// ValidateLengthFactor rejects factors outside [0.3, 2.0].
func ValidateLengthFactor(factor float64) error {
	if factor < MinLengthFactor || factor > MaxLengthFactor || math.IsNaN(factor) {
		return fmt.Errorf("%w: got %g", ErrInvalidLengthFactor, factor)
	}
	return nil
}

// Task identifies an inference pipeline type.
type Task string

const (
	TaskSummarization Task = "summarization"
	TaskText2Text     Task = "text2text-generation"
)

// Source tells whether a checkpoint is the locally trained one or a public base.
type Source string

const (
	SourceTrained Source = "trained"
	SourceBase    Source = "base"
)

// ModelReference points at a checkpoint. Tokenizer is empty when the
// checkpoint ships its own.
type ModelReference struct {
	Path      string `json:"path"`
	Tokenizer string `json:"tokenizer,omitempty"`
	Source    Source `json:"source"`
}

// Parameters are the decoding settings sent with every generation call.
type Parameters struct {
	MaxLength         int     `json:"max_length"`
	MinLength         int     `json:"min_length,omitempty"`
	NumBeams          int     `json:"num_beams"`
	LengthPenalty     float64 `json:"length_penalty,omitempty"`
	DoSample          bool    `json:"do_sample"`
	Temperature       float64 `json:"temperature,omitempty"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size,omitempty"`
	EarlyStopping     bool    `json:"early_stopping"`
}

// Prompt is a prepared generation request.
type Prompt struct {
	Input  string
	Params Parameters
}
