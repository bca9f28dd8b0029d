package partial

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/common"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/geo"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/stf"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/logging"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/partial/config"
	"github.com/UT-GlobalSeismology/Kibrary-sub006/spc"
)

// Station is a receiver.
type Station struct {
	ID       string
	Position geo.HorizontalPosition
}

// Loader supplies a spectral file.
type Loader interface {
	Load(ctx context.Context, opts ...spc.Option) (spc.File, error)
}

// PathLoader reads the spectral file at its path. A missing file is an
// ErrResource.
type PathLoader string

func (p PathLoader) Load(ctx context.Context, opts ...spc.Option) (spc.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := spc.ReadFile(string(p), opts...)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrResource, err)
		}
		return nil, err
	}
	return f, nil
}

// StaticLoader returns an already decoded file. Decode options are ignored.
type StaticLoader struct {
	File spc.File
}

func (s StaticLoader) Load(ctx context.Context, _ ...spc.Option) (spc.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.File == nil {
		return nil, fmt.Errorf("%w: no file", ErrResource)
	}
	return s.File, nil
}

// CatalogSource builds the backward wavefield from three catalog files
// around the perturbation point.
type CatalogSource struct {
	Files    [3]Loader
	DH       [3]float64
	Backward bool // mirrored catalog indexing
	// Azimuth at which the catalog records are reconstructed, radians.
	Azimuth float64
}

// Task is one forward/backward pair to turn into kernels.
type Task struct {
	Event   stf.Event
	Station Station
	Forward Loader
	// Backward is ignored when Catalog is set.
	Backward Loader
	Catalog  *CatalogSource
}

// Key identifies one kernel file. Its three elements are the Z, R and T
// components.
type Key struct {
	Event     string
	Station   string
	Point     geo.HorizontalPosition
	Parameter ParameterType
}

// Result is a computed kernel file.
type Result struct {
	Key  Key
	File *spc.SynthesizedFile
	// Ignored lists forward body indices dropped by the permissive check.
	Ignored []int
}

// Failure records a task that produced nothing.
type Failure struct {
	Event   string
	Station string
	Err     error
}

// Report collects the outcome of Run. Results are in completion order.
type Report struct {
	Results  []Result
	Failures []Failure
	// Skipped holds tasks whose inputs were missing.
	Skipped []Failure
	// NotStarted counts tasks never launched because ctx was done.
	NotStarted int
}

// Runner contracts many tasks concurrently.
type Runner struct {
	cfg        *config.Config
	params     []ParameterType
	catalog    *stf.Catalog
	contractor *Contractor
	logger     logging.Logger
}

// NewRunner validates cfg and binds the collaborators. catalog may be nil
// unless the configured source time function is "user"; structure may be
// nil unless Q is requested.
func NewRunner(cfg *config.Config, catalog *stf.Catalog, structure Structure, logger logging.Logger) (*Runner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	params := make([]ParameterType, 0, len(cfg.Parameters))
	for _, name := range cfg.Parameters {
		p, err := ParseParameterType(name)
		if err != nil {
			return nil, err
		}
		if p == ParamQ && structure == nil {
			return nil, fmt.Errorf("parameter Q: %w", ErrNoStructure)
		}
		params = append(params, p)
	}

	return &Runner{
		cfg:     cfg,
		params:  params,
		catalog: catalog,
		contractor: &Contractor{
			Structure: structure,
			Omega0:    2 * math.Pi * cfg.ReferenceFrequencyHz,
		},
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "partial_runner",
		}),
	}, nil
}

// NewRunnerFromConfig loads the catalog and structure named by cfg and
// applies its log level to logger.
func NewRunnerFromConfig(cfg *config.Config, logger logging.Logger) (*Runner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// the level applies to a derived logger, never to the caller's or the global one
	logger = logging.OrGlobal(logger).WithFields(logging.Fields{"component": "partial_runner"})
	level, _ := cfg.Level()
	logger.SetLevel(level)

	var catalog *stf.Catalog
	if cfg.STFCatalog != "" {
		c, err := stf.LoadCatalog(cfg.STFCatalog, logger)
		if err != nil {
			return nil, err
		}
		catalog = c
	}

	var structure Structure
	if cfg.Structure != "" {
		s, err := LoadStructure(cfg.Structure)
		if err != nil {
			return nil, err
		}
		structure = s
	}
	return NewRunner(cfg, catalog, structure, logger)
}

// Run processes tasks with at most cfg.Workers in flight. A failing task is
// logged and recorded; it never stops the others. Once ctx is done no new
// task is started and in-flight tasks finish.
func (r *Runner) Run(ctx context.Context, tasks []Task) *Report {
	logger := r.logger.WithContext(ctx).WithFields(logging.Fields{"function": "Run"})
	start := time.Now()

	var (
		g      errgroup.Group
		mu     sync.Mutex
		report = &Report{}
	)
	g.SetLimit(r.cfg.Workers)

	for i, task := range tasks {
		if ctx.Err() != nil {
			report.NotStarted = len(tasks) - i
			break
		}
		g.Go(func() error {
			results, err := r.runTask(ctx, task)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				report.Results = append(report.Results, results...)
			case errors.Is(err, ErrResource):
				report.Skipped = append(report.Skipped, Failure{Event: task.Event.ID, Station: task.Station.ID, Err: err})
			default:
				report.Failures = append(report.Failures, Failure{Event: task.Event.ID, Station: task.Station.ID, Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("Kernel computation finished", logging.Fields{
		"tasks":       len(tasks),
		"results":     len(report.Results),
		"failures":    len(report.Failures),
		"skipped":     len(report.Skipped),
		"not_started": report.NotStarted,
		"elapsed":     time.Since(start).String(),
	})
	return report
}

func (r *Runner) runTask(ctx context.Context, task Task) ([]Result, error) {
	logger := r.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "runTask",
		"event":    task.Event.ID,
		"station":  task.Station.ID,
	})

	results, err := r.contractTask(ctx, task, logger)
	switch {
	case errors.Is(err, ErrResource):
		logger.Warn("Skipping task with missing input", logging.Fields{"error": err.Error()})
	case err != nil:
		logger.Error(err, "Task failed")
	}
	return results, err
}

func (r *Runner) contractTask(ctx context.Context, task Task, logger logging.Logger) ([]Result, error) {
	if task.Forward == nil {
		return nil, fmt.Errorf("%w: no forward wavefield", spc.ErrArgument)
	}
	fwd, err := task.Forward.Load(ctx, spc.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("forward: %w", err)
	}
	bwd, err := r.loadBackward(ctx, task, fwd, logger)
	if err != nil {
		return nil, fmt.Errorf("backward: %w", err)
	}

	var ignored []int
	if r.cfg.PermissiveRadii {
		if ignored, err = IsGoodPairPermissive(fwd, bwd); err != nil {
			return nil, err
		}
		if len(ignored) > 0 {
			logger.Warn("Ignoring mismatched radii", logging.Fields{"bodies": ignored})
		}
	} else if err := IsGoodPair(fwd, bwd); err != nil {
		return nil, err
	}

	point := fwd.Observer()
	angles := ComputeAngles(fwd.Source().HorizontalPosition, task.Station.Position, point)
	fn, err := r.sourceTimeFunction(task.Event, fwd.NP(), fwd.TLen())
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(r.params))
	for _, p := range r.params {
		file, err := r.kernelFile(p, task, fwd, bwd, ignored, angles, fn, logger)
		if err != nil {
			return nil, fmt.Errorf("%v kernel: %w", p, err)
		}
		results = append(results, Result{
			Key: Key{
				Event:     task.Event.ID,
				Station:   task.Station.ID,
				Point:     point,
				Parameter: p,
			},
			File:    file,
			Ignored: ignored,
		})
	}
	return results, nil
}

func (r *Runner) loadBackward(ctx context.Context, task Task, fwd spc.File, logger logging.Logger) (spc.File, error) {
	c := task.Catalog
	if c == nil {
		if task.Backward == nil {
			return nil, fmt.Errorf("%w: no backward wavefield", spc.ErrArgument)
		}
		return task.Backward.Load(ctx, spc.WithLogger(logger))
	}

	opts := []spc.Option{
		spc.WithLogger(logger),
		spc.WithAzimuth(c.Azimuth),
		spc.WithObserver(fwd.Observer()),
	}
	var files [3]spc.File
	for k, l := range c.Files {
		if l == nil {
			return nil, fmt.Errorf("catalog file %d: %w: no loader", k, ErrResource)
		}
		f, err := l.Load(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("catalog file %d: %w", k, err)
		}
		files[k] = f
	}
	return spc.InterpolateCatalog(files, c.DH, c.Backward)
}

func (r *Runner) sourceTimeFunction(event stf.Event, np int, tlen float64) (*stf.Function, error) {
	if r.cfg.SourceTimeFunction == stf.KindUser {
		return r.catalog.Lookup(event, np, tlen, r.cfg.SamplingHz), nil
	}
	return stf.ForKind(r.cfg.SourceTimeFunction, event, np, tlen)
}

func (r *Runner) kernelFile(p ParameterType, task Task, fwd, bwd spc.File, ignored []int, angles Angles, fn *stf.Function, logger logging.Logger) (*spc.SynthesizedFile, error) {
	skip := make(map[int]bool, len(ignored))
	for _, i := range ignored {
		skip[i] = true
	}

	npts := int(math.Round(fwd.TLen() * r.cfg.SamplingHz))
	if r.cfg.TimeDomain && (npts <= 0 || npts%2 != 0) {
		return nil, fmt.Errorf("%w: tlen %v at %v Hz gives %d samples, need a positive even count",
			spc.ErrArgument, fwd.TLen(), r.cfg.SamplingHz, npts)
	}

	radii := fwd.BodyR()
	if p == ParamQ && len(radii) == 0 {
		return nil, fmt.Errorf("%w: %v input has no radii to look up the structure at", spc.ErrArgument, fwd.Kind())
	}
	var (
		bodies []*spc.Body
		kept   []float64
	)
	for i := 0; i < fwd.NBody(); i++ {
		if skip[i] {
			continue
		}
		// kinds without radii yield kernels at r = 0
		radius := 0.0
		if i < len(radii) {
			radius = radii[i]
		}

		spec, err := r.contractor.Contract(p, Pair{
			Forward:  fwd.Body(i),
			Backward: bwd.Body(i),
			Radius:   radius,
			TLen:     fwd.TLen(),
			Angles:   angles,
		})
		if err != nil {
			return nil, fmt.Errorf("body %d (r=%v): %w", i, radius, err)
		}

		body, err := spc.NewBodyFrom(
			spc.NewElementFrom(spec[0]),
			spc.NewElementFrom(spec[1]),
			spc.NewElementFrom(spec[2]),
		)
		if err != nil {
			return nil, err
		}
		if err := r.postProcess(body, fn, fwd); err != nil {
			return nil, fmt.Errorf("body %d (r=%v): %w", i, radius, err)
		}

		var s common.Summary
		if r.cfg.TimeDomain {
			s = common.Summarize(body.Element(0).TimeSeries())
		} else {
			s = common.SummarizeSpectrum(body.Element(0).Spectrum())
		}
		logger.Debug("Kernel computed", logging.Fields{
			"parameter": p.String(),
			"radius":    radius,
			"peak":      s.Peak,
			"rms":       s.RMS,
		})

		bodies = append(bodies, body)
		kept = append(kept, radius)
	}

	h := spc.Header{
		ID:       fmt.Sprintf("%s.%s.%s", task.Station.ID, task.Event.ID, p.PartialKind()),
		Kind:     p.PartialKind(),
		TLen:     fwd.TLen(),
		NP:       fwd.NP(),
		OmegaI:   fwd.OmegaI(),
		Observer: task.Station.Position,
		Source:   fwd.Source(),
		BodyR:    kept,
	}
	return spc.NewSynthesizedFile(h, bodies)
}

func (r *Runner) postProcess(body *spc.Body, fn *stf.Function, fwd spc.File) error {
	if !fn.IsIdentity() {
		if err := body.ApplySourceTimeFunction(fn.Spectrum()); err != nil {
			return err
		}
	}
	if r.cfg.Velocity {
		if err := body.Differentiate(fwd.TLen()); err != nil {
			return err
		}
	}
	if r.cfg.TimeDomain {
		npts := int(math.Round(fwd.TLen() * r.cfg.SamplingHz))
		return body.ToTimeDomain(npts, r.cfg.SamplingHz, fwd.OmegaI())
	}
	return nil
}
