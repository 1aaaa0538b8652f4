package textcraft

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yanqian/textcraft/internal/domain/cleaner"
	"github.com/yanqian/textcraft/internal/domain/extract"
	"github.com/yanqian/textcraft/internal/domain/generation"
	apperrors "github.com/yanqian/textcraft/pkg/errors"
	"github.com/yanqian/textcraft/pkg/util"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Service exposes the text operations.
type Service interface {
	Summarize(ctx context.Context, req SummarizeRequest) (SummaryResponse, error)
	Paraphrase(ctx context.Context, req ParaphraseRequest) (ParaphraseResponse, error)
	ProcessFile(ctx context.Context, req FileRequest) (FileResponse, error)
	History(ctx context.Context, limit int) ([]Run, error)
	Health() Health
}

type service struct {
	cfg       Config
	extractor DocumentExtractor
	policy    PromptPolicy
	models    PipelineProvider
	cache     ResultCache
	history   HistoryRepository
	archive   UploadArchive
	logger    *slog.Logger
}

// NewService is a wire provider for the textcraft domain. cache and archive
// may be nil.
func NewService(
	cfg Config,
	extractor DocumentExtractor,
	policy PromptPolicy,
	models PipelineProvider,
	cache ResultCache,
	history HistoryRepository,
	archive UploadArchive,
	logger *slog.Logger,
) Service {
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = generation.DefaultMaxInputChars
	}
	return &service{
		cfg:       cfg,
		extractor: extractor,
		policy:    policy,
		models:    models,
		cache:     cache,
		history:   history,
		archive:   archive,
		logger:    logger.With("component", "textcraft.service"),
	}
}

func (s *service) Summarize(ctx context.Context, req SummarizeRequest) (SummaryResponse, error) {
	if err := s.validateText(req.Text); err != nil {
		return SummaryResponse{}, err
	}
	run := s.newRun(generation.OperationSummarize, SourceText, "")
	summary, err := s.generate(ctx, &run, req.Text, generation.DefaultLengthFactor)
	if err != nil {
		return SummaryResponse{}, err
	}
	return SummaryResponse{Summary: summary}, nil
}

func (s *service) Paraphrase(ctx context.Context, req ParaphraseRequest) (ParaphraseResponse, error) {
	if err := s.validateText(req.Text); err != nil {
		return ParaphraseResponse{}, err
	}
	factor := lengthFactorOrDefault(req.LengthFactor)
	if err := generation.ValidateLengthFactor(factor); err != nil {
		return ParaphraseResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid length factor", err)
	}
	run := s.newRun(generation.OperationParaphrase, SourceText, "")
	run.LengthFactor = &factor
	text, err := s.generate(ctx, &run, req.Text, factor)
	if err != nil {
		return ParaphraseResponse{}, err
	}
	return ParaphraseResponse{ParaphrasedText: text, LengthFactor: factor}, nil
}

func (s *service) ProcessFile(ctx context.Context, req FileRequest) (FileResponse, error) {
	op, err := generation.ParseOperation(req.Operation)
	if err != nil {
		return FileResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid request", err)
	}
	var factor *float64
	if op == generation.OperationParaphrase {
		value := lengthFactorOrDefault(req.LengthFactor)
		if err := generation.ValidateLengthFactor(value); err != nil {
			return FileResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid length factor", err)
		}
		factor = &value
	}
	if _, err := extract.DetectFormat(req.Filename); err != nil {
		return FileResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid upload", err)
	}
	if int64(len(req.Data)) > s.extractor.MaxFileBytes() {
		return FileResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid upload",
			fmt.Errorf("%w: file size exceeds %dMB limit", extract.ErrFileTooLarge, s.extractor.MaxFileBytes()/(1024*1024)))
	}

	run := s.newRun(op, SourceFile, req.Filename)
	run.LengthFactor = factor
	s.archiveUpload(ctx, run.ID, req.Filename, req.Data)

	text, err := s.extractor.Extract(req.Data, req.Filename)
	if err != nil {
		return FileResponse{}, mapExtractionError(err)
	}
	if strings.TrimSpace(text) == "" {
		return FileResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid upload", extract.ErrEmptyDocument)
	}

	applied := generation.DefaultLengthFactor
	if factor != nil {
		applied = *factor
	}
	result, err := s.generate(ctx, &run, text, applied)
	if err != nil {
		return FileResponse{}, err
	}
	return FileResponse{
		Filename:     req.Filename,
		Operation:    string(op),
		LengthFactor: factor,
		Result:       result,
	}, nil
}

func (s *service) History(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	runs, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load history", err)
	}
	return runs, nil
}

func (s *service) Health() Health {
	models := map[string]string{
		"summarization": "not_loaded",
		"paraphrase":    "not_loaded",
	}
	loaded := s.models.Loaded()
	if ref, ok := loaded[generation.OperationSummarize]; ok {
		models["summarization"] = fmt.Sprintf("%s (%s)", ref.Path, ref.Source)
	}
	if ref, ok := loaded[generation.OperationParaphrase]; ok {
		models["paraphrase"] = fmt.Sprintf("%s (%s)", ref.Path, ref.Source)
	}
	return Health{
		Status:           "healthy",
		Features:         []string{"summarization", "paraphrasing", "file_upload"},
		SupportedFormats: extract.SupportedExtensions(),
		MaxFileSizeMB:    s.extractor.MaxFileBytes() / (1024 * 1024),
		MaxTextLength:    s.cfg.MaxTextChars,
		Models:           models,
	}
}

func (s *service) validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "text cannot be empty", nil)
	}
	if utf8.RuneCountInString(text) > s.cfg.MaxTextChars {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("text too long, maximum %d characters allowed", s.cfg.MaxTextChars), nil)
	}
	return nil
}

// generate resolves the pipeline, runs it once and cleans the output. The
// run is appended to history on success.
func (s *service) generate(ctx context.Context, run *Run, text string, lengthFactor float64) (string, error) {
	start := time.Now()
	pipeline, err := s.models.Get(ctx, run.Operation)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeGeneration, "failed to load model", err)
	}
	run.Model = pipeline.Reference.Path
	run.ModelSource = pipeline.Reference.Source

	prompt, err := s.policy.Prepare(run.Operation, text, lengthFactor)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "invalid request", err)
	}

	key := ""
	if s.cacheable(run.Operation) {
		key = resultKey(pipeline.Reference, prompt.Input)
		if cached, ok := s.lookupCache(ctx, key); ok {
			run.Cached = true
			s.record(ctx, run, text, cached, start)
			return cached, nil
		}
	}

	raw, err := pipeline.Generator.Generate(ctx, prompt.Input, prompt.Params)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeGeneration, generationFailure(run.Operation), err)
	}
	result := cleaner.Clean(raw)

	if key != "" {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.logger.Warn("result cache write failed", "error", err)
		}
	}
	s.record(ctx, run, text, result, start)
	return result, nil
}

// Only summaries are cached; paraphrasing samples and varies between calls.
func (s *service) cacheable(op generation.Operation) bool {
	return s.cache != nil && op == generation.OperationSummarize
}

func (s *service) lookupCache(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("result cache read failed", "error", err)
		return "", false
	}
	return value, ok
}

func (s *service) record(ctx context.Context, run *Run, input, output string, start time.Time) {
	run.InputChars = utf8.RuneCountInString(input)
	run.OutputChars = utf8.RuneCountInString(output)
	run.LatencyMs = util.SinceMillis(start)
	if err := s.history.Append(ctx, *run); err != nil {
		s.logger.Warn("history append failed", "run_id", run.ID, "error", err)
	}
	s.logger.Info("operation completed", "run_id", run.ID, "operation", run.Operation, "source", run.Source, "model", run.Model, "cached", run.Cached, "latency_ms", run.LatencyMs)
}

func (s *service) archiveUpload(ctx context.Context, runID, filename string, data []byte) {
	if s.archive == nil {
		return
	}
	key := ArchiveKey(runID, filename)
	format, _ := extract.DetectFormat(filename)
	if err := s.archive.Store(ctx, key, data, format.ContentType()); err != nil {
		s.logger.Warn("upload archive failed", "run_id", runID, "key", key, "error", err)
	}
}

func (s *service) newRun(op generation.Operation, source InputSource, filename string) Run {
	return Run{
		ID:        uuid.NewString(),
		Operation: op,
		Source:    source,
		Filename:  filename,
		CreatedAt: util.NowUTC(),
	}
}

// ArchiveKey places an upload under its run: uploads/<run-id>/<base name>.
func ArchiveKey(runID, filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return "uploads/" + runID + "/" + name
}

func resultKey(ref generation.ModelReference, input string) string {
	sum := sha256.Sum256([]byte(ref.Path + "\x00" + input))
	return hex.EncodeToString(sum[:])
}

func mapExtractionError(err error) error {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, extract.ErrFileTooLarge),
		errors.Is(err, extract.ErrEmptyDocument):
		return apperrors.Wrap(apperrors.CodeInvalidInput, "invalid upload", err)
	default:
		return apperrors.Wrap(apperrors.CodeExtraction, "failed to extract text", err)
	}
}

func generationFailure(op generation.Operation) string {
	if op == generation.OperationParaphrase {
		return "paraphrasing failed"
	}
	return "summarization failed"
}

func lengthFactorOrDefault(factor *float64) float64 {
	if factor == nil {
		return generation.DefaultLengthFactor
	}
	return *factor
}
