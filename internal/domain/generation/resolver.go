package generation

import (
	"fmt"
	"log/slog"
	"os"
)

const (
	DefaultTrainedModelPath     = "artifacts/model_trainer/pegasus-diaglogsum-model"
	DefaultTrainedTokenizerPath = "artifacts/model_trainer/tokenizer"
	DefaultSummaryBaseModel     = "google/pegasus-cnn_dailymail"
	DefaultParaphraseModel      = "t5-base"
)

// ModelsConfig names the checkpoints each operation may use.
type ModelsConfig struct {
	TrainedModelPath     string
	TrainedTokenizerPath string
	SummaryBaseModel     string
	ParaphraseModel      string
}

func (c ModelsConfig) withDefaults() ModelsConfig {
	if c.TrainedModelPath == "" {
		c.TrainedModelPath = DefaultTrainedModelPath
	}
	if c.TrainedTokenizerPath == "" {
		c.TrainedTokenizerPath = DefaultTrainedTokenizerPath
	}
	if c.SummaryBaseModel == "" {
		c.SummaryBaseModel = DefaultSummaryBaseModel
	}
	if c.ParaphraseModel == "" {
		c.ParaphraseModel = DefaultParaphraseModel
	}
	return c
}

// Resolver picks the checkpoint for an operation. Only summarization has a
// trained model; paraphrasing always uses the general text-to-text checkpoint.
type Resolver struct {
	cfg    ModelsConfig
	exists func(path string) bool
	logger *slog.Logger
}

// NewResolver is a wire provider for model resolution.
func NewResolver(cfg ModelsConfig, logger *slog.Logger) *Resolver {
	return &Resolver{
		cfg:    cfg.withDefaults(),
		exists: pathExists,
		logger: logger.With("component", "generation.resolver"),
	}
}

// Resolve returns the reference to load for op. It only checks that the
// trained artifacts exist and does not validate their contents.
func (r *Resolver) Resolve(op Operation) (ModelReference, error) {
	switch op {
	case OperationSummarize:
		if r.exists(r.cfg.TrainedModelPath) && r.exists(r.cfg.TrainedTokenizerPath) {
			ref := ModelReference{Path: r.cfg.TrainedModelPath, Tokenizer: r.cfg.TrainedTokenizerPath, Source: SourceTrained}
			r.logger.Info("using trained summarization model", "operation", op, "model", ref.Path, "source", ref.Source)
			return ref, nil
		}
		ref := ModelReference{Path: r.cfg.SummaryBaseModel, Source: SourceBase}
		r.logger.Info("trained model not found, using base summarization model", "operation", op, "model", ref.Path, "source", ref.Source)
		return ref, nil
	case OperationParaphrase:
		ref := ModelReference{Path: r.cfg.ParaphraseModel, Source: SourceBase}
		r.logger.Info("using paraphrase model", "operation", op, "model", ref.Path, "source", ref.Source)
		return ref, nil
	default:
		return ModelReference{}, fmt.Errorf("%w: %q", ErrInvalidOperation, string(op))
	}
}

func pathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
