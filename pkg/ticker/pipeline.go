package ticker

import (
	"context"
	"errors"
	"time"

	"stock-ticker-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ticker.pipeline")

const DefaultMaxCycles = 3

// Result is what one request gets back.
type Result struct {
	Query         string             `json:"query"`
	FinalQuery    string             `json:"finalQuery"`
	Market        Market             `json:"market"`
	Language      string             `json:"language"`
	Answer        []CatalogRecord    `json:"answer"`
	Candidates    []Candidate        `json:"candidates"`
	Cycles        int                `json:"cycles"`
	Verdict       Verdict            `json:"verdict,omitempty"`
	LowConfidence bool               `json:"lowConfidence"` // never graded a pass
	TimedOut      bool               `json:"timedOut"`
	Degraded      []CandidateFailure `json:"degraded,omitempty"`
}

// Observer sees the state each time the pipeline enters a stage.
type Observer func(PipelineState)

type Option func(*Pipeline)

func WithMaxCycles(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxCycles = n
		}
	}
}

// WithRequestTimeout bounds a whole Run. Zero leaves only the caller's deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.requestTimeout = d }
}

func WithLogger(l logger.ILogger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// Pipeline drives Extract, Resolve, Grade and Rewrite for one request at a
// time. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	extractor *Extractor
	resolver  *Resolver
	grader    *Grader
	rewriter  *Rewriter

	maxCycles      int
	requestTimeout time.Duration
	logger         logger.ILogger
	observer       Observer
}

func NewPipeline(extractor *Extractor, resolver *Resolver, grader *Grader, rewriter *Rewriter, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		resolver:  resolver,
		grader:    grader,
		rewriter:  rewriter,
		maxCycles: DefaultMaxCycles,
		logger:    logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run resolves qc. A nil error always comes with a Result, possibly with an
// empty answer. When the request deadline fires the latest answer is
// returned with TimedOut set.
func (p *Pipeline) Run(ctx context.Context, qc QueryContext) (*Result, error) {
	if err := qc.Validate(); err != nil {
		pipelineRunsTotal.WithLabelValues("error").Inc()
		return nil, &PipelineError{Stage: StageExtracting, Code: CodeInvalidInput, Err: err}
	}

	ctx, cancel := withTimeout(ctx, p.requestTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "ticker.Pipeline",
		trace.WithAttributes(
			attribute.String("ticker.market", qc.Market.String()),
			attribute.String("ticker.language", qc.Language),
			attribute.Int("ticker.max_cycles", p.maxCycles),
		),
	)
	defer span.End()

	state := &PipelineState{
		Stage:   StageExtracting,
		Cycle:   1,
		Context: qc,
		Answer:  []CatalogRecord{},
	}
	// completed is the state as of the latest finished resolve (and its
	// grade), so a timed-out result never mixes cycles.
	completed := *state

	for state.Stage != StageTerminated {
		p.observe(state)

		if err := p.step(ctx, state); err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				span.SetAttributes(attribute.Bool("ticker.timed_out", true))
				return p.timedOut(qc, state, &completed), nil
			}
			pe := p.wrap(ctx, state, err)
			span.RecordError(pe)
			span.SetStatus(codes.Error, string(pe.Code))
			pipelineRunsTotal.WithLabelValues("error").Inc()
			p.logger.Error("ticker.pipeline", "Pipeline failed", map[string]interface{}{
				"query": state.Context.Query,
				"stage": pe.Stage.String(),
				"cycle": pe.Cycle,
				"code":  string(pe.Code),
				"error": err.Error(),
			})
			return nil, pe
		}
		if state.Stage == StageGrading || state.Stage == StageRewriting {
			completed = *state
		}
	}
	p.observe(state)

	res := p.result(qc, state)
	res.LowConfidence = state.Verdict != VerdictPass
	if res.LowConfidence {
		pipelineRunsTotal.WithLabelValues("low_confidence").Inc()
		p.logger.Warn("ticker.pipeline", "Cycle bound reached", map[string]interface{}{
			"query":      qc.Query,
			"finalQuery": state.Context.Query,
			"cycles":     state.Cycle,
		})
	} else {
		pipelineRunsTotal.WithLabelValues("pass").Inc()
	}
	pipelineCycles.Observe(float64(state.Cycle))
	span.SetStatus(codes.Ok, "")
	return res, nil
}

// step runs the current stage and moves state to the next one.
func (p *Pipeline) step(ctx context.Context, state *PipelineState) error {
	ctx, span := tracer.Start(ctx, "ticker."+state.Stage.String(),
		trace.WithAttributes(attribute.Int("ticker.cycle", state.Cycle)),
	)
	defer span.End()

	details := map[string]interface{}{
		"query":  state.Context.Query,
		"market": state.Context.Market.String(),
		"cycle":  state.Cycle,
	}

	switch state.Stage {
	case StageExtracting:
		candidates, err := p.extractor.Extract(ctx, state.Context)
		if err != nil {
			return err
		}
		state.Candidates = candidates
		details["candidates"] = len(candidates)
		p.logger.Debug("ticker.pipeline", "Extracted candidates", details)
		state.Stage = StageResolving

	case StageResolving:
		res, err := p.resolver.Resolve(ctx, state.Candidates, state.Context.Market)
		if err != nil {
			return err
		}
		state.Answer = res.Answer
		state.Degraded = res.Degraded
		details["answer"] = len(res.Answer)
		details["degraded"] = len(res.Degraded)
		p.logger.Debug("ticker.pipeline", "Resolved candidates", details)
		state.Stage = StageGrading

	case StageGrading:
		verdict, err := p.grader.Grade(ctx, state.Context, state.Answer)
		if err != nil {
			return err
		}
		state.Verdict = verdict
		details["verdict"] = string(verdict)
		p.logger.Info("ticker.pipeline", "Graded answer", details)
		span.SetAttributes(attribute.String("ticker.verdict", string(verdict)))
		if verdict == VerdictPass || state.Cycle >= p.maxCycles {
			state.Stage = StageTerminated
		} else {
			state.Stage = StageRewriting
		}

	case StageRewriting:
		query, err := p.rewriter.Rewrite(ctx, state.Context, state.Answer)
		if err != nil {
			return err
		}
		details["rewritten"] = query
		p.logger.Info("ticker.pipeline", "Rewrote query", details)
		state.Context = state.Context.WithQuery(query)
		state.Cycle++
		state.Stage = StageExtracting
	}
	return nil
}

func (p *Pipeline) observe(state *PipelineState) {
	if p.observer == nil {
		return
	}
	snapshot := *state
	snapshot.Candidates = append([]Candidate(nil), state.Candidates...)
	snapshot.Answer = append([]CatalogRecord(nil), state.Answer...)
	snapshot.Degraded = append([]CandidateFailure(nil), state.Degraded...)
	p.observer(snapshot)
}

func (p *Pipeline) wrap(ctx context.Context, state *PipelineState, err error) *PipelineError {
	pe := &PipelineError{Stage: state.Stage, Cycle: state.Cycle, Err: err, Code: classify(err)}
	if errors.Is(ctx.Err(), context.Canceled) {
		pe.Code = CodeCanceled
	}
	if state.Stage == StageResolving && len(state.Candidates) == 1 {
		c := state.Candidates[0]
		pe.Candidate = &c
	}
	return pe
}

func (p *Pipeline) timedOut(qc QueryContext, state, completed *PipelineState) *Result {
	pipelineRunsTotal.WithLabelValues("timeout").Inc()
	pipelineCycles.Observe(float64(state.Cycle))
	p.logger.Warn("ticker.pipeline", "Request deadline exceeded", map[string]interface{}{
		"query":         qc.Query,
		"stage":         state.Stage.String(),
		"cycle":         state.Cycle,
		"reportedCycle": completed.Cycle,
	})
	res := p.result(qc, completed)
	res.TimedOut = true
	res.LowConfidence = true
	return res
}

func (p *Pipeline) result(qc QueryContext, state *PipelineState) *Result {
	return &Result{
		Query:      qc.Query,
		FinalQuery: state.Context.Query,
		Market:     qc.Market,
		Language:   qc.Language,
		Answer:     state.Answer,
		Candidates: state.Candidates,
		Cycles:     state.Cycle,
		Verdict:    state.Verdict,
		Degraded:   state.Degraded,
	}
}
