package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/advisor-sim/internal/corpus"
	"github.com/danielpatrickdp/advisor-sim/internal/fallback"
	"github.com/danielpatrickdp/advisor-sim/internal/intent"
	"github.com/danielpatrickdp/advisor-sim/internal/prompt"
	"github.com/danielpatrickdp/advisor-sim/internal/retrieval"
)

// #endregion

// #region orchestrator-struct

// Orchestrator composes retrieval, prompt building, candidate invocation and
// fallback into GenerateReply. It holds no per-call state and is safe for
// concurrent use.
type Orchestrator struct {
	config     Config
	candidates Candidates
	personas   PersonaLookup
	corpus     ExampleSource
	selector   *retrieval.Selector
	builder    *prompt.Builder
	invoker    Invoker
	fallback   *fallback.Generator
	intents    IntentClassifier
	recorder   Recorder
	logger     *zap.Logger
}

// Deps are the collaborators of an Orchestrator. Intents, Recorder and
// Logger are optional.
type Deps struct {
	Personas PersonaLookup
	Corpus   ExampleSource
	Selector *retrieval.Selector
	Builder  *prompt.Builder
	Invoker  Invoker
	Fallback *fallback.Generator
	Intents  IntentClassifier
	Recorder Recorder
	Logger   *zap.Logger
}

// #endregion

// #region constructor

// NewOrchestrator creates a fully wired orchestrator.
func NewOrchestrator(config Config, candidates Candidates, deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	intents := deps.Intents
	if intents == nil {
		intents = intent.Classifier{}
	}
	return &Orchestrator{
		config:     config,
		candidates: candidates,
		personas:   deps.Personas,
		corpus:     deps.Corpus,
		selector:   deps.Selector,
		builder:    deps.Builder,
		invoker:    deps.Invoker,
		fallback:   deps.Fallback,
		intents:    intents,
		recorder:   deps.Recorder,
		logger:     logger.Named("orchestrator"),
	}
}

// Candidates returns the configured default trial order.
func (o *Orchestrator) Candidates() Candidates {
	return o.candidates
}

// #endregion

// #region generate-reply

// GenerateReply produces a non-empty student reply. Backend failures end in
// a fallback reply, never an error. It returns ErrInvalidPersona for an
// unknown persona and ctx.Err() when the caller cancels.
func (o *Orchestrator) GenerateReply(ctx context.Context, req Request) (Reply, error) {
	profile, err := o.personas.Get(req.Persona)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %q", ErrInvalidPersona, req.Persona)
	}
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	current := prompt.CurrentTurn(req.Context)
	examples := o.selector.Select(retrieval.Query{
		Persona: profile.ID,
		Intent:  req.Intent,
		Text:    current,
	}, o.pool(), o.config.Examples)

	messages := prompt.Messages(o.builder.Build(prompt.Request{
		Intent:           req.Intent,
		KnowledgeContext: req.KnowledgeContext,
		Context:          req.Context,
	}, profile, examples))

	reply := Reply{
		ID:        uuid.NewString(),
		Persona:   profile.ID,
		Intent:    req.Intent,
		Examples:  len(examples),
		CreatedAt: time.Now().UTC(),
	}

	for _, cand := range o.candidates.With(req.PreferredCandidate).Names() {
		start := time.Now()
		text, cerr := o.invoker.Invoke(ctx, messages, cand, o.config.MaxTokens, o.config.Temperature)
		if cerr != nil && ctx.Err() != nil {
			o.logger.Info("[ORCH] cancelled",
				zap.String("reply_id", reply.ID), zap.String("candidate", cand), zap.Error(ctx.Err()))
			return Reply{}, ctx.Err()
		}

		outcome, cont := next(text, cerr)
		att := Attempt{Candidate: cand, Outcome: outcome, Latency: time.Since(start)}
		if cerr != nil {
			att.Error = cerr.Message
		}
		reply.Attempts = append(reply.Attempts, att)

		if outcome == OutcomeSuccess {
			reply.Text = text
			reply.Source = SourceBackend
			reply.Candidate = cand
			o.logger.Info("[ORCH] reply generated",
				zap.String("reply_id", reply.ID), zap.String("candidate", cand), zap.Int("attempts", len(reply.Attempts)))
			o.record(ctx, reply)
			return reply, nil
		}

		o.logger.Warn("[ORCH] candidate failed",
			zap.String("reply_id", reply.ID), zap.String("candidate", cand),
			zap.String("outcome", string(outcome)), zap.String("error", att.Error))
		if !cont {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	reply.Category = o.category(current, req.Intent)
	reply.Text = o.fallback.Generate(profile.ID, reply.Category)
	reply.Source = SourceFallback
	o.logger.Warn("[ORCH] using fallback reply",
		zap.String("reply_id", reply.ID), zap.String("persona", profile.ID),
		zap.String("category", string(reply.Category)), zap.Int("attempts", len(reply.Attempts)))
	o.record(ctx, reply)
	return reply, nil
}

func (o *Orchestrator) pool() []corpus.Exchange {
	if o.corpus == nil {
		return nil
	}
	c := o.corpus.Current()
	if c == nil {
		return nil
	}
	return c.All()
}

func (o *Orchestrator) record(ctx context.Context, reply Reply) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.RecordReply(ctx, reply); err != nil {
		o.logger.Warn("[ORCH] failed to record reply", zap.String("reply_id", reply.ID), zap.Error(err))
	}
}

// #endregion

// #region classify

// ClassifyIntent labels advisor text using the configured intent classifier.
func (o *Orchestrator) ClassifyIntent(text string) (string, float64) {
	return o.intents.ClassifyIntent(text)
}

// intentCategories maps intent labels to fallback categories.
var intentCategories = map[string]fallback.Category{
	intent.Feedback:      fallback.Encouragement,
	intent.Understanding: fallback.Clarification,
	intent.GoalSetting:   fallback.Planning,
	intent.Exploration:   fallback.Exploration,
}

// category picks the fallback category from the latest turn. When keywords
// say nothing, the request intent, or failing that a confident classifier
// label, is used as a hint.
func (o *Orchestrator) category(text, requestIntent string) fallback.Category {
	if c := fallback.CategoryOf(text); c != fallback.Other {
		return c
	}
	label := requestIntent
	if label == "" {
		var conf float64
		label, conf = o.intents.ClassifyIntent(text)
		if conf <= 0.5 {
			return fallback.Other
		}
	}
	for l, c := range intentCategories {
		if strings.EqualFold(strings.TrimSpace(label), l) {
			return c
		}
	}
	return fallback.Other
}

// #endregion
