// Package generator drives a full simulation: it builds a learner
// population, walks every learner through the course week by week and
// turns the resulting events into xAPI statements.
package generator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/abhisek/learnsim/internal/catalog"
	"github.com/abhisek/learnsim/internal/logger"
	"github.com/abhisek/learnsim/internal/metrics"
	"github.com/abhisek/learnsim/internal/profile"
	"github.com/abhisek/learnsim/internal/progress"
	"github.com/abhisek/learnsim/internal/rng"
	"github.com/abhisek/learnsim/internal/session"
	"github.com/abhisek/learnsim/internal/xapi"
)

// ErrInvalidWeeks is returned when the course length is not positive.
var ErrInvalidWeeks = errors.New("week count must be positive")

// Generator runs simulations against one course.
type Generator struct {
	opts    Options
	course  *catalog.Course
	verbs   *catalog.VerbCatalog
	log     *logger.Logger
	metrics *metrics.Metrics
	onStep  func(percent float64)
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithProgress registers a callback invoked after every learner-week
// with the completed percentage. Values are non-decreasing and the last
// one is 100.
func WithProgress(fn func(percent float64)) Option {
	return func(g *Generator) { g.onStep = fn }
}

// New validates the run settings and the course.
func New(opts Options, course *catalog.Course, verbs *catalog.VerbCatalog, options ...Option) (*Generator, error) {
	if err := course.Validate(); err != nil {
		return nil, err
	}
	if opts.Learners <= 0 {
		return nil, fmt.Errorf("generate %d learners: %w", opts.Learners, profile.ErrInvalidCount)
	}
	if opts.Weeks <= 0 {
		return nil, fmt.Errorf("simulate %d weeks: %w", opts.Weeks, ErrInvalidWeeks)
	}
	if opts.Start.IsZero() {
		opts.Start = DefaultOptions().Start
	}
	if verbs == nil {
		verbs = catalog.DefaultVerbs()
	}
	g := &Generator{
		opts:   opts,
		course: course,
		verbs:  verbs,
		log:    logger.Nop(),
	}
	for _, o := range options {
		o(g)
	}
	return g, nil
}

// Run generates a population and simulates it.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	r := rng.New(g.opts.Seed)
	learners, err := profile.Generate(g.opts.Learners, g.opts.Profile, r)
	if err != nil {
		return nil, err
	}
	return g.simulate(ctx, learners, r)
}

// RunLearners simulates an existing population, such as learners loaded
// from the store.
func (g *Generator) RunLearners(ctx context.Context, learners []profile.LearnerProfile) (*Result, error) {
	if len(learners) == 0 {
		return nil, fmt.Errorf("simulate stored learners: %w", profile.ErrInvalidCount)
	}
	return g.simulate(ctx, learners, rng.New(g.opts.Seed))
}

func (g *Generator) simulate(ctx context.Context, learners []profile.LearnerProfile, r rng.Source) (*Result, error) {
	started := time.Now()
	activities := g.course.Activities()
	store := progress.NewStore()
	engine := progress.NewEngine(g.opts.Progress, store, r)
	scheduler := session.NewScheduler(g.opts.Session, engine, r, g.log)
	serializer := xapi.NewSerializer(g.opts.XAPI, g.verbs, r)

	res := &Result{
		Learners: learners,
		Progress: store,
		Outcomes: make(map[string]int),
	}

	g.log.Info("simulation started",
		"learners", len(learners),
		"weeks", g.opts.Weeks,
		"activities", len(activities),
		"seed", g.opts.Seed,
	)

	total := len(learners) * g.opts.Weeks
	done := 0
	for _, learner := range learners {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation interrupted: %w", err)
		}
		g.metrics.IncLearner(string(learner.Persona))
		log := g.log.With("learner_id", learner.ID, "persona", string(learner.Persona))

		for week := 0; week < g.opts.Weeks; week++ {
			weekStart := g.opts.Start.AddDate(0, 0, 7*week)
			for _, sess := range scheduler.Week(learner, weekStart, week, g.opts.Weeks, activities) {
				g.record(res, sess)
				res.Statements = append(res.Statements, serializer.Session(learner, g.course, sess)...)
			}
			done++
			if g.onStep != nil {
				g.onStep(float64(done) / float64(total) * 100)
			}
		}
		log.Debug("learner simulated", "activities", len(store.Learner(learner.ID)))
	}

	slices.SortStableFunc(res.Statements, func(a, b xapi.Statement) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	for _, st := range res.Statements {
		name, _ := g.verbs.NameOf(st.Verb.ID)
		if name == "" {
			name = st.Verb.ID
		}
		g.metrics.IncStatement(name)
	}

	if g.opts.Validate {
		v, err := xapi.NewValidator()
		if err != nil {
			return nil, err
		}
		if err := v.ValidateAll(res.Statements); err != nil {
			return nil, fmt.Errorf("validate statements: %w", err)
		}
	}

	res.Elapsed = time.Since(started)
	g.metrics.SetRunDuration(res.Elapsed)
	g.log.Info("simulation finished",
		"sessions", len(res.Sessions),
		"statements", len(res.Statements),
		"degraded", res.Degraded,
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res, nil
}

func (g *Generator) record(res *Result, sess session.LearningSession) {
	res.Sessions = append(res.Sessions, sess)
	g.metrics.ObserveSession(sess.ActiveDuration())
	for _, a := range sess.Activities {
		outcome := Outcome(a.Pass)
		res.Outcomes[outcome]++
		g.metrics.IncPass(outcome)
		if a.Degraded {
			res.Degraded++
			g.metrics.IncDegraded()
		}
	}
}

// Submit sends statements to sink in batches of the configured size.
// name labels the sink in logs and metrics.
func (g *Generator) Submit(ctx context.Context, sink xapi.Sink, name string, statements []xapi.Statement) (int, error) {
	timed := xapi.SinkFunc(func(ctx context.Context, batch []xapi.Statement) error {
		start := time.Now()
		err := sink.SaveBulkStatements(ctx, batch)
		g.metrics.ObserveBatch(name, len(batch), time.Since(start), err)
		return err
	})

	n, err := xapi.Submit(ctx, timed, statements, g.opts.BatchSize)
	if err != nil {
		g.log.Error("statement submission failed", "sink", name, "accepted", n, "error", err)
		return n, fmt.Errorf("submit to %s: %w", name, err)
	}
	g.log.Info("statements submitted", "sink", name, "statements", n)
	return n, nil
}
