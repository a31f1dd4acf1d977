package graphcalc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ErrGateClosed resolves submissions made to, or pending in, a closed gate.
var ErrGateClosed = errors.New("graphcalc: gate closed")

// Handle is the pending result of one submission.
type Handle struct {
	done  chan struct{}
	curve SampledCurve
	err   error
}

func newHandle() *Handle { return &Handle{done: make(chan struct{})} }

func (h *Handle) resolve(curve SampledCurve, err error) {
	h.curve, h.err = curve, err
	close(h.done)
}

// Done is closed once the result is available.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the result is ready or ctx ends.
func (h *Handle) Wait(ctx context.Context) (SampledCurve, error) {
	select {
	case <-h.done:
		return h.curve, h.err
	case <-ctx.Done():
		return SampledCurve{}, ctx.Err()
	}
}

// Poll returns the result without blocking; ready is false while pending.
func (h *Handle) Poll() (curve SampledCurve, err error, ready bool) {
	select {
	case <-h.done:
		return h.curve, h.err, true
	default:
		return SampledCurve{}, nil, false
	}
}

type job struct {
	rel    *Relation
	window Window
	result chan jobResult
}

type jobResult struct {
	curve SampledCurve
	err   error
}

// Gate runs compute on a single background worker fed by a channel.
// Submissions for the same relation and bounds made while one is in flight
// share its result.
type Gate struct {
	ctx     context.Context
	cancel  context.CancelFunc
	compute ComputeFunc
	timeout time.Duration
	jobs    chan *job
	quit    chan struct{}
	group   singleflight.Group
	once    sync.Once
	wg      sync.WaitGroup
}

// NewGate starts the worker. timeout bounds each job; zero means none.
func NewGate(compute ComputeFunc, timeout time.Duration) *Gate {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Gate{
		ctx:     ctx,
		cancel:  cancel,
		compute: compute,
		timeout: timeout,
		jobs:    make(chan *job, 16),
		quit:    make(chan struct{}),
	}
	g.wg.Add(1)
	go g.worker()
	Logger().Info("graphcalc: gate started", "timeout", timeout)
	return g
}

func gateKey(rel *Relation, w Window) string {
	return fmt.Sprintf("%d\x00%s\x00%s", rel.ID, rel.Text, w.Bounds())
}

// Submit queues rel for evaluation over w and returns immediately.
func (g *Gate) Submit(rel *Relation, w Window) *Handle {
	h := newHandle()
	select {
	case <-g.quit:
		h.resolve(SampledCurve{}, ErrGateClosed)
		return h
	default:
	}
	ch := g.group.DoChan(gateKey(rel, w), func() (interface{}, error) {
		j := &job{rel: rel, window: w, result: make(chan jobResult, 1)}
		select {
		case g.jobs <- j:
		case <-g.quit:
			return SampledCurve{}, ErrGateClosed
		}
		select {
		case r := <-j.result:
			return r.curve, r.err
		case <-g.quit:
			return SampledCurve{}, ErrGateClosed
		}
	})
	go func() {
		r := <-ch
		curve, _ := r.Val.(SampledCurve)
		h.resolve(curve, r.Err)
	}()
	return h
}

func (g *Gate) worker() {
	defer g.wg.Done()
	for {
		select {
		case <-g.quit:
			return
		case j := <-g.jobs:
			curve, err := g.run(j)
			if err != nil && g.ctx.Err() != nil {
				err = ErrGateClosed
			}
			j.result <- jobResult{curve: curve, err: err}
		}
	}
}

func (g *Gate) run(j *job) (SampledCurve, error) {
	ctx := g.ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	b := j.window.Bounds()
	ctx, span := otel.Tracer("graphcalc").Start(ctx, "graphcalc.evaluate",
		trace.WithAttributes(
			attribute.Int("relation.id", j.rel.ID),
			attribute.String("relation.text", j.rel.Text),
			attribute.IntSlice("window.domain", []int{b.Domain.Min, b.Domain.Max}),
			attribute.IntSlice("window.range", []int{b.Range.Min, b.Range.Max}),
		),
	)
	defer span.End()

	curve, err := g.compute(ctx, j.rel, j.window)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		if errors.Is(err, context.DeadlineExceeded) {
			Logger().Warn("graphcalc: evaluation timed out", "relation", j.rel.Text, "timeout", g.timeout)
		}
		return SampledCurve{}, err
	}
	span.SetAttributes(
		attribute.Int("curve.polylines", len(curve.Polylines)),
		attribute.Int("curve.points", len(curve.Points)),
		attribute.Bool("curve.low_resolution", curve.LowResolution),
	)
	return curve, nil
}

// Close cancels the running job and stops the worker. Pending and later
// submissions resolve with ErrGateClosed. Close is idempotent.
func (g *Gate) Close() {
	g.once.Do(func() {
		close(g.quit)
		g.cancel()
		g.wg.Wait()
		Logger().Info("graphcalc: gate stopped")
	})
}
