// Package derep clusters redundant genomes from a comparison matrix and picks
// one representative per cluster.
package derep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yumyai/ggderep/pkg/cluster"
	"github.com/yumyai/ggderep/pkg/derr"
	"github.com/yumyai/ggderep/pkg/genome"
	"github.com/yumyai/ggderep/pkg/matrix"
	"github.com/yumyai/ggderep/pkg/metrics"
	"github.com/yumyai/ggderep/pkg/pick"
	"github.com/yumyai/ggderep/pkg/suppress"
)

// Input is what a run reads. Genomes may be nil, in which case the keys of
// the clustered matrix are the roster and only the distance method can pick.
type Input struct {
	Matrices matrix.Set
	Genomes  *genome.Table
}

type Result struct {
	RunID    string         `json:"run_id"`
	Method   string         `json:"method"`
	Report   *Report        `json:"report"`
	Summary  Summary        `json:"summary"`
	Stats    suppress.Stats `json:"-"`
	Warnings []string       `json:"warnings,omitempty"`
}

type Dereplicator struct {
	cfg      Config
	reporter Reporter
	metrics  *metrics.Metrics
}

type Option func(*Dereplicator)

func WithReporter(r Reporter) Option {
	return func(d *Dereplicator) {
		if r != nil {
			d.reporter = r
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dereplicator) { d.metrics = m }
}

func New(cfg Config, opts ...Option) (*Dereplicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Dereplicator{cfg: cfg, reporter: NopReporter{}}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Dereplicator) Config() Config { return d.cfg }

// run carries the state of a single Run call.
type run struct {
	id       string
	warnings []string
	reporter Reporter
}

func (r *run) log(level Level, msg string, fields ...Field) {
	fields = append([]Field{F("run_id", r.id)}, fields...)
	r.reporter.Log(Event{Level: level, Msg: msg, Fields: fields})
}

func (r *run) warn(msg string, fields ...Field) {
	r.warnings = append(r.warnings, msg)
	r.log(LevelWarn, msg, fields...)
}

// Run suppresses weak hits, clusters the genomes and picks representatives.
func (d *Dereplicator) Run(ctx context.Context, in Input) (res *Result, err error) {
	start := time.Now()
	r := &run{id: uuid.New().String(), reporter: d.reporter}
	obs := metrics.Run{}
	defer func() {
		obs.Duration = time.Since(start)
		obs.Err = err
		d.metrics.ObserveRun(obs)
	}()

	metric := d.cfg.MetricName()
	r.log(LevelInfo, "Dereplication started",
		F("program", d.cfg.Program.String()),
		F("metric", metric),
		F("threshold", d.cfg.DistanceThreshold),
		F("method", d.cfg.Method.String()))

	set := in.Matrices
	primary, ok := set.Get(metric)
	if !ok {
		return nil, derr.Configf("derep", "no %s matrix among the inputs (found: %v)", metric, set.Names())
	}

	var stats suppress.Stats
	if d.cfg.Suppress.Enabled() {
		if primary.Convention() == matrix.Distance {
			return nil, derr.Configf("derep", "weak hit filters zero scores and %s holds distances, zeroed pairs would always merge", metric)
		}
		set, stats, err = suppress.New(d.cfg.Suppress).WithWorkers(d.cfg.Workers).Apply(ctx, set)
		if err != nil {
			return nil, fmt.Errorf("suppress weak hits: %w", err)
		}
		primary, _ = set.Get(metric)
		d.reportSuppression(r, stats)
		obs.RemovedByFullIdentity = stats.RemovedByFullIdentity
		obs.FlaggedByAlignmentFraction = stats.FlaggedByAlignmentFraction
		obs.RescuedByLength = stats.RescuedByLength
	}

	dist := primary
	if dist.Convention() == matrix.Similarity {
		dist = primary.Invert()
		r.log(LevelDebug, "Converted similarities to distances", F("metric", metric))
	}

	roster := in.Genomes.Names()
	if len(roster) == 0 {
		roster = dist.Names()
	}
	if err := matrix.Validate(dist, roster); err != nil {
		return nil, fmt.Errorf("genome roster against %s: %w", metric, err)
	}
	r.log(LevelInfo, "Number of genomes considered", F("genomes", len(roster)))

	method := d.cfg.Method
	if method == pick.Qscore && !in.Genomes.AnyQuality() {
		method = pick.Distance
		r.warn("None of the genomes carry completion and redundancy estimates, representatives are picked by distance instead of Qscore")
	}

	engine, err := cluster.NewEngine(roster)
	if err != nil {
		return nil, err
	}
	if err := engine.Run(ctx, dist, d.cfg.DistanceThreshold, r.reporter.Tick); err != nil {
		return nil, err
	}
	clusters := engine.Finalize()
	obs.Merges = engine.Merges()

	picker, err := pick.New(method, in.Genomes, dist, d.cfg.Direction)
	if err != nil {
		return nil, err
	}
	b := NewBuilder()
	b.SetClusters(clusters)
	for _, c := range clusters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep, err := picker.Pick(c.Genomes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		b.SetRepresentative(c.Name, rep)
	}
	report, err := b.Build()
	if err != nil {
		return nil, err
	}

	summary := summarize(len(roster), report)
	obs.InputGenomes = summary.InputGenomes
	obs.Clusters = summary.Clusters
	obs.RedundantGenomes = summary.RedundantGenomes

	r.log(LevelInfo, "Number of redundant genomes", F("redundant", summary.RedundantGenomes))
	r.log(LevelInfo, "Final number of dereplicated genomes", F("clusters", summary.Clusters))

	return &Result{
		RunID:    r.id,
		Method:   method.String(),
		Report:   report,
		Summary:  summary,
		Stats:    stats,
		Warnings: r.warnings,
	}, nil
}

func (d *Dereplicator) reportSuppression(r *run, s suppress.Stats) {
	p := d.cfg.Suppress
	if s.RemovedByFullIdentity > 0 && s.FullIdentityExample != nil {
		ex := s.FullIdentityExample
		r.warn(fmt.Sprintf("%d genome pairs have a full percent identity below %.2f and their scores are set to 0, e.g. %s to %s at %.3f",
			s.RemovedByFullIdentity, p.MinFullPercentIdentity/100, ex.A, ex.B, ex.Value),
			F("removed", s.RemovedByFullIdentity))
	}
	zeroedByFraction := s.FlaggedByAlignmentFraction - s.RescuedByLength
	switch {
	case zeroedByFraction > 0 && s.AlignmentFractionExample != nil:
		ex := s.AlignmentFractionExample
		r.warn(fmt.Sprintf("%d genome pairs aligned over less than %.2f of their length and their scores are set to 0, e.g. %s to %s at %.3f",
			zeroedByFraction, p.MinAlignmentFraction, ex.A, ex.B, ex.Value),
			F("flagged", s.FlaggedByAlignmentFraction),
			F("rescued", s.RescuedByLength))
	case s.AllRescued():
		r.warn(fmt.Sprintf("%d genome pairs aligned over less than %.2f of their length but all were longer than %d nts, so the filters cancelled each other out",
			s.FlaggedByAlignmentFraction, p.MinAlignmentFraction, p.SignificantAlignmentLength),
			F("rescued", s.RescuedByLength))
	}
	r.log(LevelDebug, "Weak hits suppressed", F("zeroed_pairs", s.Zeroed))
}
