package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrepareSummarize(t *testing.T) {
	policy := NewPolicy(0)

	prompt, err := policy.Prepare(OperationSummarize, "A short dialogue.", 1.7)
	require.NoError(t, err)
	require.Equal(t, "A short dialogue.", prompt.Input)
	require.Equal(t, Parameters{
		MaxLength:         128,
		NumBeams:          8,
		LengthPenalty:     0.8,
		NoRepeatNgramSize: 3,
		DoSample:          false,
		EarlyStopping:     true,
	}, prompt.Params)
}

func TestPrepareParaphrase(t *testing.T) {
	policy := NewPolicy(0)

	prompt, err := policy.Prepare(OperationParaphrase, "The quick brown fox jumps", 1.0)
	require.NoError(t, err)
	require.Equal(t, "paraphrase: The quick brown fox jumps", prompt.Input)
	require.Equal(t, 5, prompt.Params.MinLength)
	require.Equal(t, 10, prompt.Params.MaxLength)
	require.Equal(t, 4, prompt.Params.NumBeams)
	require.True(t, prompt.Params.DoSample)
	require.InDelta(t, 0.7, prompt.Params.Temperature, 1e-9)
	require.True(t, prompt.Params.EarlyStopping)
}

func TestPrepareUnknownOperation(t *testing.T) {
	_, err := NewPolicy(0).Prepare(Operation("translate"), "text", 1.0)
	require.ErrorIs(t, err, ErrInvalidOperation)
}

func TestParaphraseParameters(t *testing.T) {
	tests := []struct {
		name    string
		words   int
		factor  float64
		wantMin int
		wantMax int
	}{
		{name: "five words", words: 5, factor: 1.0, wantMin: 5, wantMax: 10},
		{name: "short input shrunk", words: 5, factor: 0.3, wantMin: 5, wantMax: 10},
		{name: "target inside bounds", words: 100, factor: 1.0, wantMin: 30, wantMax: 100},
		{name: "target rounds half up", words: 45, factor: 0.5, wantMin: 13, wantMax: 23},
		{name: "target clamped to lower bound", words: 100, factor: 0.3, wantMin: 30, wantMax: 30},
		{name: "long input upper bound", words: 400, factor: 2.0, wantMin: 120, wantMax: 512},
		{name: "ceiling beats target", words: 1000, factor: 1.0, wantMin: 300, wantMax: 512},
		{name: "min wins when bounds cross", words: 1, factor: 1.0, wantMin: 5, wantMax: 5},
		{name: "no words", words: 0, factor: 1.0, wantMin: 5, wantMax: 5},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			params := ParaphraseParameters(tt.words, tt.factor)
			require.Equal(t, tt.wantMin, params.MinLength)
			require.Equal(t, tt.wantMax, params.MaxLength)
			require.GreaterOrEqual(t, params.MaxLength, params.MinLength)
		})
	}
}

func TestPrepareTruncatesLongInput(t *testing.T) {
	policy := NewPolicy(0)
	long := strings.Repeat("abcde ", 2000) + "tail"

	for _, op := range []Operation{OperationSummarize, OperationParaphrase} {
		prompt, err := policy.Prepare(op, long, 1.0)
		require.NoError(t, err)
		input := strings.TrimPrefix(prompt.Input, ParaphrasePrefix)
		require.Equal(t, long[:DefaultMaxInputChars]+"...", input, string(op))
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "hello", Truncate("hello", 5))
	require.Equal(t, "hel...", Truncate("hello", 3))
	require.Equal(t, "héll...", Truncate("héllo wörld", 4))
	require.Equal(t, "anything", Truncate("anything", 0))

	exact := strings.Repeat("x", DefaultMaxInputChars)
	require.Equal(t, exact, Truncate(exact, DefaultMaxInputChars))
}

func TestParaphraseWordCountUsesTruncatedInput(t *testing.T) {
	policy := NewPolicy(19)
	prompt, err := policy.Prepare(OperationParaphrase, strings.Repeat("word ", 50), 1.0)
	require.NoError(t, err)
	require.Equal(t, "paraphrase: word word word word...", prompt.Input)
	require.Equal(t, ParaphraseParameters(4, 1.0), prompt.Params)
}
