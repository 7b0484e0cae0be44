// Package processturn runs one conversation turn: it turns an utterance into
// profile facts, decides what to ask next, evaluates eligibility once enough
// is known and has the responder phrase the reply.
package processturn

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Kathan1010/LoanAdviser/internal/common/audit"
	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"
	"github.com/Kathan1010/LoanAdviser/internal/common/logger"
	"github.com/Kathan1010/LoanAdviser/internal/common/metrics"
	"github.com/Kathan1010/LoanAdviser/internal/common/notify"
	"github.com/Kathan1010/LoanAdviser/internal/common/observability"
	"github.com/Kathan1010/LoanAdviser/internal/common/session"
	"github.com/Kathan1010/LoanAdviser/internal/models"
	generateresponse "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/generate-response"
	normalizetext "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/normalize-text"
	transcribeaudio "github.com/Kathan1010/LoanAdviser/internal/workers/conversation/transcribe-audio"
	checkeligibility "github.com/Kathan1010/LoanAdviser/internal/workers/loan/check-eligibility"
	extractfields "github.com/Kathan1010/LoanAdviser/internal/workers/loan/extract-fields"
	sequencequestions "github.com/Kathan1010/LoanAdviser/internal/workers/loan/sequence-questions"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Kathan1010/LoanAdviser/process-turn"

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, languageHint string) (*transcribeaudio.Transcription, error)
}

type Normalizer interface {
	Normalize(ctx context.Context, text, languageHint string) (*normalizetext.Normalization, error)
}

type Responder interface {
	ExplainEligibility(ctx context.Context, p generateresponse.EligibilityPrompt) (string, error)
	AskForSlot(ctx context.Context, p generateresponse.SlotPrompt) (string, error)
}

// Dependencies are the collaborators of a turn. Only Store is required;
// the rest fall back to doing nothing, except Responder whose absence fails
// the response stage.
type Dependencies struct {
	Store         session.Store
	Transcriber   Transcriber
	Normalizer    Normalizer
	Responder     Responder
	Audit         audit.Sink
	Publisher     notify.Publisher
	Observability *observability.Observability
	Tracer        trace.Tracer
}

type Orchestrator struct {
	config *Config
	deps   Dependencies
	locks  *session.KeyedMutex
	logger logger.Logger
}

func New(config *Config, deps Dependencies, log logger.Logger) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, errors.New("session store is required")
	}
	if config == nil {
		config = LoadConfig()
	}
	l := log.WithFields(map[string]interface{}{"component": "process-turn"})
	if deps.Audit == nil {
		deps.Audit = audit.NewLogSink(l)
	}
	if deps.Publisher == nil {
		deps.Publisher = notify.NoopPublisher{}
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer(tracerName)
	}
	return &Orchestrator{
		config: config,
		deps:   deps,
		locks:  session.NewKeyedMutex(),
		logger: l,
	}, nil
}

// ProcessTurn runs the pipeline for one utterance. Stage failures degrade the
// reply but never fail the turn; a non-nil error means the session could not
// be loaded or saved, or the rule table is broken, and the result then
// carries the apology.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Audio) == 0 {
		return nil, apperrors.NewInvalidRequestError("message or audio is required")
	}

	ctx, span := o.deps.Tracer.Start(ctx, "turn", trace.WithAttributes(attribute.String("session.id", req.SessionID)))
	defer span.End()

	t := &turn{
		sessionID: req.SessionID,
		started:   time.Now(),
		log:       o.logger.WithFields(map[string]interface{}{"sessionId": req.SessionID}),
		tracer:    o.deps.Tracer,
	}

	lockCtx, cancel := context.WithTimeout(ctx, o.config.LockTimeout)
	unlock, err := o.locks.Lock(lockCtx, req.SessionID)
	cancel()
	if err != nil {
		return apology(req.SessionID, nil), apperrors.NewSessionStoreError("lock", err)
	}
	defer unlock()

	sess, created, err := session.LoadOrCreate(ctx, o.deps.Store, req.SessionID)
	if err != nil {
		t.log.Error("failed to load session", map[string]interface{}{"error": err.Error()})
		return apology(req.SessionID, nil), sessionError("get", err)
	}

	result, err := o.run(ctx, t, sess, req)
	if err != nil {
		return apology(req.SessionID, t.stages), err
	}
	result.NewSession = created

	if err := o.deps.Store.Put(ctx, sess); err != nil {
		t.log.Error("failed to save session", map[string]interface{}{"error": err.Error()})
		return apology(req.SessionID, t.stages), sessionError("put", err)
	}

	o.finish(ctx, t, req, result)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, t *turn, sess *models.Session, req TurnRequest) (*TurnResult, error) {
	text, language := o.transcribe(ctx, t, req)
	if language == "" {
		language = generateresponse.ResolveLanguage(req.LanguageHint, text)
	}
	text = o.normalize(ctx, t, text, language)
	t.normalized = text

	sess.AddMessage(models.RoleUser, text, o.config.MaxHistory)

	extraction, _ := runStage(ctx, t, models.StageExtraction, models.ExtractionResult{},
		func(ctx context.Context) (models.ExtractionResult, float64, error) {
			if err := ctx.Err(); err != nil {
				return models.ExtractionResult{}, 0, err
			}
			r := extractfields.Extract(text, sess.Profile)
			if r.Fields.Empty() {
				return r, 0.5, nil
			}
			return r, 1.0, nil
		})

	_, _ = runStage(ctx, t, models.StageProfileMerge, []models.Field(nil),
		func(context.Context) ([]models.Field, float64, error) {
			return sess.Profile.Apply(extraction.Fields), 1.0, nil
		})

	next, _ := runStage(ctx, t, models.StageSequencing, models.SlotLoanAmount,
		func(context.Context) (models.Slot, float64, error) {
			return sequencequestions.Next(sess.Profile, sess.History), 1.0, nil
		})

	eligibility, err := o.evaluate(ctx, t, sess.Profile)
	if err != nil {
		return nil, err
	}
	// A verdict is only shown once nothing is left to ask.
	if next != models.SlotReady {
		eligibility = nil
	}

	reply := o.respond(ctx, t, sess, next, eligibility, extraction.Fields, language)
	sess.AddMessage(models.RoleAssistant, reply, o.config.MaxHistory)
	t.profile = sess.Profile.Clone()

	missing := extraction.Missing
	if missing == nil {
		missing = []models.Field{}
	}
	return &TurnResult{
		SessionID:    sess.ID,
		ResponseText: reply,
		Language:     language,
		Intent:       extraction.Intent,
		Extracted:    extraction.Fields,
		Eligibility:  eligibility,
		Missing:      missing,
		NextSlot:     next,
		Ready:        next == models.SlotReady,
	}, nil
}

// transcribe replaces the typed text with the transcript when audio is given.
// A failed or empty transcript keeps the typed text.
func (o *Orchestrator) transcribe(ctx context.Context, t *turn, req TurnRequest) (string, string) {
	if len(req.Audio) == 0 {
		t.skip(models.StageTranscription, "no audio")
		return req.Text, ""
	}

	tr, err := runStage(ctx, t, models.StageTranscription, (*transcribeaudio.Transcription)(nil),
		func(ctx context.Context) (*transcribeaudio.Transcription, float64, error) {
			if o.deps.Transcriber == nil {
				return nil, 0, errors.New("no transcriber configured")
			}
			tr, err := o.deps.Transcriber.Transcribe(ctx, req.Audio, req.LanguageHint)
			if err != nil {
				return nil, 0, err
			}
			if strings.TrimSpace(tr.Text) == "" {
				return nil, 0, transcribeaudio.ErrEmptyTranscript
			}
			return tr, tr.Confidence, nil
		})
	if err != nil || tr == nil {
		return req.Text, ""
	}
	if tr.Attempts > 1 {
		t.last().RetryCount = tr.Attempts - 1
	}

	language := ""
	if req.LanguageHint == "" && tr.Language != "" && tr.Language != "unknown" {
		language = generateresponse.ResolveLanguage(tr.Language, tr.Text)
	}
	return tr.Text, language
}

func (o *Orchestrator) normalize(ctx context.Context, t *turn, text, language string) string {
	trimmed := strings.TrimSpace(text)
	if o.deps.Normalizer == nil {
		t.skip(models.StageNormalization, "no normalizer configured")
		return trimmed
	}
	out, _ := runStage(ctx, t, models.StageNormalization, trimmed,
		func(ctx context.Context) (string, float64, error) {
			n, err := o.deps.Normalizer.Normalize(ctx, text, language)
			if err != nil {
				return "", 0, apperrors.NewNormalizationFailedError(err)
			}
			return n.NormalizedText, n.Confidence, nil
		})
	return out
}

// evaluate runs the engine once income, age and loan type are known.
// A broken rule table is the only error it returns.
func (o *Orchestrator) evaluate(ctx context.Context, t *turn, profile models.Profile) (*models.EligibilityResult, error) {
	if !profile.Has(models.FieldMonthlyIncome) || !profile.Has(models.FieldAge) || !profile.Has(models.FieldLoanType) {
		t.skip(models.StageEligibility, "insufficient data")
		return nil, nil
	}

	result, err := runStage(ctx, t, models.StageEligibility, (*models.EligibilityResult)(nil),
		func(context.Context) (*models.EligibilityResult, float64, error) {
			r, err := checkeligibility.Evaluate(profile)
			if err != nil {
				return nil, 0, err
			}
			return &r, 1.0, nil
		})
	if err != nil && apperrors.HasCode(err, apperrors.ErrCodeRuleTable) {
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) respond(ctx context.Context, t *turn, sess *models.Session, next models.Slot,
	eligibility *models.EligibilityResult, extracted models.ExtractedFields, language string) string {

	reply, _ := runStage(ctx, t, models.StageResponse, ApologyText,
		func(ctx context.Context) (string, float64, error) {
			if next == models.SlotReady && (eligibility == nil || !o.config.ExplainWhenReady) {
				return AcknowledgmentText, 1.0, nil
			}
			if o.deps.Responder == nil {
				return "", 0, errors.New("no responder configured")
			}

			var (
				text string
				err  error
			)
			if next == models.SlotReady {
				text, err = o.deps.Responder.ExplainEligibility(ctx, generateresponse.EligibilityPrompt{
					SessionID:   sess.ID,
					Language:    language,
					Summary:     checkeligibility.Summary(sess.Profile, *eligibility),
					Eligibility: *eligibility,
				})
			} else {
				text, err = o.deps.Responder.AskForSlot(ctx, generateresponse.SlotPrompt{
					SessionID: sess.ID,
					Language:  language,
					Slot:      next,
					Profile:   sess.Profile.Clone(),
					Extracted: extracted,
					History:   sess.Recent(o.config.PromptHistory),
				})
			}
			if err != nil {
				return "", 0, err
			}
			return text, 0.9, nil
		})
	return reply
}

// finish runs the side effects of a completed turn. None of them change the result.
func (o *Orchestrator) finish(ctx context.Context, t *turn, req TurnRequest, result *TurnResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.SideEffectTimeout)
	defer cancel()

	if result.Eligibility != nil {
		metrics.ObserveEligibility(string(result.Eligibility.LoanType), result.Eligibility.IsEligible)
		o.publish(ctx, t, result)
	}

	rec := audit.NewTurnRecord(result.SessionID)
	rec.Utterance = req.Text
	if rec.Utterance == "" {
		rec.Utterance = "[audio]"
	}
	rec.Language = result.Language
	rec.Intent = result.Intent
	rec.NextSlot = result.NextSlot
	rec.Extracted = result.Extracted
	rec.Missing = result.Missing
	rec.Eligibility = result.Eligibility
	rec.ResponseText = result.ResponseText
	rec.Stages = append([]models.StageOutcome(nil), t.stages...)
	rec.NormalizedText = t.normalized
	rec.DurationMs = durationMs(time.Since(t.started))

	_, _ = runStage(ctx, t, models.StageAudit, struct{}{},
		func(ctx context.Context) (struct{}, float64, error) {
			return struct{}{}, 1.0, o.deps.Audit.Record(ctx, rec)
		})

	result.Stages = t.stages

	elapsed := time.Since(t.started)
	metrics.TurnsTotal.WithLabelValues(string(result.NextSlot)).Inc()
	o.deps.Observability.RecordTurn(ctx, string(result.NextSlot), elapsed, t.failed())
	t.log.Info("turn processed", map[string]interface{}{
		"nextSlot":           result.NextSlot,
		"intent":             result.Intent,
		"componentsExecuted": models.Succeeded(t.stages),
		"durationMs":         durationMs(elapsed),
	})
}

func (o *Orchestrator) publish(ctx context.Context, t *turn, result *TurnResult) {
	event := notify.NewOutcomeEvent(result.SessionID, checkeligibility.Summary(t.profile, *result.Eligibility), *result.Eligibility)
	if err := o.deps.Publisher.PublishOutcome(ctx, event); err != nil {
		t.log.Warn("failed to publish eligibility outcome", map[string]interface{}{"error": err.Error()})
	}
}

func sessionError(op string, err error) error {
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}
	return apperrors.NewSessionStoreError(op, err)
}
