package generation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxInputChars is the longest input handed to a model unchanged.
	DefaultMaxInputChars = 10000
	truncationMarker     = "..."
	// ParaphrasePrefix is the instruction the paraphrase checkpoint expects.
	ParaphrasePrefix = "paraphrase: "

	paraphraseMinFloor    = 5
	paraphraseMaxCeiling  = 512
	paraphraseTargetFloor = 10
)

// Policy derives decoding parameters from the operation and its input.
type Policy struct {
	maxInputChars int
}

// NewPolicy builds a Policy; maxInputChars <= 0 selects the default.
func NewPolicy(maxInputChars int) *Policy {
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}
	return &Policy{maxInputChars: maxInputChars}
}

// Prepare truncates the input, applies the operation's instruction prefix and
// computes its parameters. lengthFactor is ignored for summaries.
func (p *Policy) Prepare(op Operation, text string, lengthFactor float64) (Prompt, error) {
	input := Truncate(text, p.maxInputChars)
	switch op {
	case OperationSummarize:
		return Prompt{Input: input, Params: SummaryParameters()}, nil
	case OperationParaphrase:
		return Prompt{
			Input:  ParaphrasePrefix + input,
			Params: ParaphraseParameters(len(strings.Fields(input)), lengthFactor),
		}, nil
	default:
		return Prompt{}, fmt.Errorf("%w: %q", ErrInvalidOperation, string(op))
	}
}

// SummaryParameters are fixed beam search settings.
func SummaryParameters() Parameters {
	return Parameters{
		MaxLength:         128,
		NumBeams:          8,
		LengthPenalty:     0.8,
		NoRepeatNgramSize: 3,
		DoSample:          false,
		EarlyStopping:     true,
	}
}

// ParaphraseParameters bounds the output length by the input word count.
// The requested length is clamped into [minLength, maxLength]; when the two
// bounds cross on very short inputs minLength wins.
func ParaphraseParameters(words int, lengthFactor float64) Parameters {
	minLength := max(paraphraseMinFloor, int(math.Floor(float64(words)*0.3)))
	maxLength := min(paraphraseMaxCeiling, int(math.Floor(float64(words)*2.0)))
	target := max(paraphraseTargetFloor, int(math.Round(float64(words)*lengthFactor)))

	return Parameters{
		MaxLength:     max(minLength, min(target, maxLength)),
		MinLength:     minLength,
		NumBeams:      4,
		DoSample:      true,
		Temperature:   0.7,
		EarlyStopping: true,
	}
}

// Truncate keeps the first limit characters of text and appends "..." when
// anything was cut.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	count := 0
	for idx := range text {
		if count == limit {
			return text[:idx] + truncationMarker
		}
		count++
	}
	return text
}
