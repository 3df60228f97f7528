package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/config"
	"github.com/pageza/culina-ai/backend/internal/metrics"
	"github.com/pageza/culina-ai/backend/pkg/logger"
	"go.uber.org/zap"
)

// Stage names a step of a generation run
type Stage string

const (
	StageStart               Stage = "start"
	StageQuotaChecked        Stage = "quota_checked"
	StagePreferencesResolved Stage = "preferences_resolved"
	StagePromptBuilt         Stage = "prompt_built"
	StageCompletionReceived  Stage = "completion_received"
	StagePayloadExtracted    Stage = "payload_extracted"
	StagePersisted           Stage = "persisted"
	StageUsageRecorded       Stage = "usage_recorded"
	StageDone                Stage = "done"
	StageFailed              Stage = "failed"
	StageQuotaExceeded       Stage = "quota_exceeded"
)

// maxLoggedOutput bounds the model text written to logs on extraction failures
const maxLoggedOutput = 4096

// GenerateRequest asks for one recipe for UserID described by Prompt
type GenerateRequest struct {
	UserID uuid.UUID
	Prompt string
}

// GenerateResult is the outcome of a run that did not fail
type GenerateResult struct {
	QuotaExceeded bool
	RecipeID      uuid.UUID
	Ingredients   ChildOutcome
	Steps         ChildOutcome
	Degraded      bool
}

// GenerationService runs the quota-gated generation pipeline
type GenerationService struct {
	quota      QuotaLedger
	prefs      PreferenceResolver
	completion Completer
	writer     RecipeWriter
	quotaMode  string
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewGenerationService creates a new GenerationService instance.
// quotaMode is config.QuotaModeAtomic or config.QuotaModeBaseline.
func NewGenerationService(
	quota QuotaLedger,
	prefs PreferenceResolver,
	completion Completer,
	writer RecipeWriter,
	quotaMode string,
	m *metrics.Metrics,
	log *zap.Logger,
) *GenerationService {
	return &GenerationService{
		quota:      quota,
		prefs:      prefs,
		completion: completion,
		writer:     writer,
		quotaMode:  quotaMode,
		metrics:    m,
		logger:     log.Named("generation"),
	}
}

// generationRun carries per-run logging state
type generationRun struct {
	log      *zap.Logger
	stage    Stage
	reserved bool
}

func (r *generationRun) advance(stage Stage) {
	r.stage = stage
	r.log.Debug("stage reached", zap.String("stage", string(stage)))
}

// Generate produces, validates and stores one recipe.
// An exhausted quota is reported through GenerateResult.QuotaExceeded, not as an error.
func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, &InputError{Field: "prompt", Message: "must not be empty"}
	}
	if req.UserID == uuid.Nil {
		return nil, &InputError{Field: "userId", Message: "must be set"}
	}

	run := &generationRun{
		log:   s.logger.With(zap.String("user_id", req.UserID.String()), zap.String("run_id", uuid.NewString())),
		stage: StageStart,
	}
	run.log.Info("generation started", zap.String("quota_mode", s.quotaMode))

	allowed, err := s.gate(ctx, run, req.UserID)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}
	if !allowed {
		run.advance(StageQuotaExceeded)
		s.metrics.CountGeneration(string(StageQuotaExceeded))
		run.log.Info("generation refused, monthly quota exhausted")
		return &GenerateResult{QuotaExceeded: true}, nil
	}
	run.advance(StageQuotaChecked)

	start := time.Now()
	prefs := s.prefs.Resolve(ctx, req.UserID)
	s.metrics.ObserveStage(string(StagePreferencesResolved), start)
	run.advance(StagePreferencesResolved)

	systemPrompt := DefaultSystemPrompt(prefs)
	run.advance(StagePromptBuilt)

	start = time.Now()
	raw, err := s.completion.Complete(ctx, systemPrompt, prompt)
	s.metrics.ObserveStage(string(StageCompletionReceived), start)
	if err != nil {
		s.release(ctx, run, req.UserID)
		return nil, s.fail(ctx, run, err)
	}
	run.advance(StageCompletionReceived)

	payload, err := Extract(raw)
	if err != nil {
		run.log.Warn("model output could not be used",
			zap.String("raw_output", logger.Truncate(raw, maxLoggedOutput)),
			zap.Error(err))
		s.release(ctx, run, req.UserID)
		return nil, s.fail(ctx, run, err)
	}
	run.advance(StagePayloadExtracted)

	start = time.Now()
	written, err := s.writer.Write(ctx, req.UserID, payload)
	s.metrics.ObserveStage(string(StagePersisted), start)
	if err != nil {
		s.release(ctx, run, req.UserID)
		return nil, s.fail(ctx, run, err)
	}
	run.log = run.log.With(zap.String("recipe_id", written.RecipeID.String()))
	run.advance(StagePersisted)

	if !run.reserved {
		// the recipe exists whatever happens here
		if err := s.quota.RecordUsage(context.WithoutCancel(ctx), req.UserID); err != nil {
			run.log.Error("failed to record usage", zap.Error(err))
		} else {
			run.advance(StageUsageRecorded)
		}
	} else {
		run.advance(StageUsageRecorded)
	}

	result := &GenerateResult{
		RecipeID:    written.RecipeID,
		Ingredients: written.Ingredients,
		Steps:       written.Steps,
		Degraded:    written.Degraded(),
	}

	outcome := "success"
	if result.Degraded {
		outcome = "degraded"
	}
	s.metrics.CountGeneration(outcome)
	run.advance(StageDone)
	run.log.Info("generation finished", zap.Stringer("write", written), zap.Bool("degraded", result.Degraded))

	return result, nil
}

// gate checks the allowance; in atomic mode it also reserves one generation
func (s *GenerationService) gate(ctx context.Context, run *generationRun, userID uuid.UUID) (bool, error) {
	start := time.Now()
	defer s.metrics.ObserveStage(string(StageQuotaChecked), start)

	if s.quotaMode == config.QuotaModeBaseline {
		return s.quota.CheckQuota(ctx, userID)
	}

	reserved, err := s.quota.Reserve(ctx, userID)
	if err != nil {
		return false, err
	}
	run.reserved = reserved
	return reserved, nil
}

// release returns a reservation after a failure that left nothing stored
func (s *GenerationService) release(ctx context.Context, run *generationRun, userID uuid.UUID) {
	if !run.reserved {
		return
	}
	if err := s.quota.Release(context.WithoutCancel(ctx), userID); err != nil {
		run.log.Error("failed to release quota reservation", zap.Error(err))
		return
	}
	run.reserved = false
}

func (s *GenerationService) fail(ctx context.Context, run *generationRun, err error) error {
	if ctx.Err() != nil && !errors.Is(err, ErrCanceled) {
		err = fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	code := CodeOf(err)
	run.log.Error("generation failed",
		zap.String("stage", string(run.stage)),
		zap.String("code", string(code)),
		zap.Error(err))
	run.stage = StageFailed
	s.metrics.CountGeneration(strings.ToLower(string(code)))
	return err
}
