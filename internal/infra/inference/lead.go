package inference

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/textcraft/internal/domain/generation"
)

// LeadEngine is an in-process stand-in for the model runtime. Summaries are
// the leading sentences of the input; paraphrases echo the input. Both stop
// at MaxLength words.
type LeadEngine struct {
	logger *slog.Logger
}

// NewLeadEngine constructs the local engine.
func NewLeadEngine(logger *slog.Logger) *LeadEngine {
	return &LeadEngine{logger: logger.With("component", "inference.lead")}
}

func (e *LeadEngine) Load(_ context.Context, ref generation.ModelReference, task generation.Task) (generation.Generator, error) {
	e.logger.Warn("no inference runtime configured, using lead engine", "model", ref.Path, "task", task)
	return leadPipeline{task: task}, nil
}

type leadPipeline struct {
	task generation.Task
}

func (p leadPipeline) Generate(ctx context.Context, input string, params generation.Parameters) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	words := strings.Fields(strings.TrimPrefix(input, generation.ParaphrasePrefix))
	limit := params.MaxLength
	if limit <= 0 || limit > len(words) {
		limit = len(words)
	}
	picked := words[:limit]
	if p.task == generation.TaskSummarization && limit < len(words) {
		picked = trimToSentence(picked, params.MinLength)
	}
	return strings.Join(picked, " "), nil
}

// trimToSentence drops a trailing partial sentence as long as at least
// minWords remain.
func trimToSentence(words []string, minWords int) []string {
	for i := len(words) - 1; i >= 0 && i+1 >= minWords; i-- {
		if strings.ContainsAny(words[i][len(words[i])-1:], ".!?") {
			return words[:i+1]
		}
	}
	return words
}

var _ generation.Loader = (*LeadEngine)(nil)
