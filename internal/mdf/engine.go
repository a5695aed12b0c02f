package mdf

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Assignment is one (node, port, token) write a Streamer contributes to a
// freshly-launched graph instance. A streamer step is a batch of
// Assignments sharing a single instance; spec.md §3's "initial boundary
// tokens" are delivered this way.
type Assignment struct {
	Node  NodeId
	Param string
	Token Token
}

// Streamer produces the sequence of graph-instance launches that drive an
// Engine. Next returns io.EOF-like termination by returning a nil/empty
// batch with a nil error; any non-nil error is treated as fatal and stops
// the engine. See internal/streamers for concrete implementations (Static,
// Cron, RateLimited, Redis, Nats).
type Streamer interface {
	Next(ctx context.Context) ([]Assignment, error)
}

// Drainer consumes the tokens produced at terminal nodes. The engine
// serializes every Accept call behind a single mutex, so no two calls are
// ever in flight at once and implementations need not be internally
// thread-safe. Calls from different instances arrive in no particular
// order. See internal/drainers.
type Drainer interface {
	Accept(ctx context.Context, nodeID NodeId, tok Token) error
}

// task is one unit of scheduler work: a node that has become fireable
// within a particular graph instance.
type task struct {
	gh *graphHandle
	id NodeId
}

// Engine runs one static Graph against a stream of instances using a
// work-stealing scheduler: a bounded global queue feeds idle workers, and
// each worker otherwise drains its own unbounded local queue first and
// steals from a sibling, round-robin, when both are empty. Mirrors
// mdf::Mdf<D>.
type Engine struct {
	model   *Graph
	workers int
	drainer Drainer
	logger  *slog.Logger
	metrics MetricsSink
	tracer  trace.Tracer

	tasks *Queue[task]
	local []*Queue[task]

	outstanding atomic.Int64
	endOfStream atomic.Bool
	instanceSeq atomic.Uint64

	drainerMu sync.Mutex

	fatalErr atomic.Pointer[error]

	wg sync.WaitGroup
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics wires a MetricsSink; see internal/monitoring for the
// Prometheus-backed implementation.
func WithMetrics(m MetricsSink) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTracer overrides the default otel.Tracer("mdf") tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithQueueCapacity overrides the global queue's default soft capacity of
// 100 (spec.md §4.5).
func WithQueueCapacity(capacity int) Option {
	return func(e *Engine) { e.tasks = NewQueue[task](capacity) }
}

// New constructs an Engine for graph with the given worker count (clamped
// to at least 1) and drainer. graph is Frozen automatically if it has not
// been already, using its default options.
func New(graph *Graph, workers int, drainer Drainer, opts ...Option) (*Engine, error) {
	if !graph.frozen {
		if err := graph.Freeze(); err != nil {
			return nil, fmt.Errorf("mdf: freezing graph: %w", err)
		}
	}
	if workers < 1 {
		workers = 1
	}
	e := &Engine{
		model:   graph,
		workers: workers,
		drainer: drainer,
		logger:  slog.Default(),
		metrics: noopMetrics{},
		tracer:  otel.Tracer("mdf"),
		tasks:   NewQueue[task](100),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.local = make([]*Queue[task], e.workers)
	for i := range e.local {
		e.local[i] = NewQueue[task](0)
	}
	return e, nil
}

// Start launches the worker pool, then pulls batches from streamer until it
// signals end-of-stream (an empty batch and nil error), ctx is canceled, or
// a fatal error is raised by a streamer, a drainer, or an instruction body.
// It blocks until every in-flight instance has drained (after a fatal
// error, until the workers have emptied their queues and stopped), then
// returns streamer itself (so callers can inspect a stateful streamer after
// the run) alongside the first fatal error encountered, if any.
func (e *Engine) Start(ctx context.Context, streamer Streamer) (Streamer, error) {
	e.wg.Add(e.workers)
	for i := 0; i < e.workers; i++ {
		go e.worker(i)
	}

	Stdout.Println("Starting threads...")
	e.logger.Info("engine started", "workers", e.workers)

streamLoop:
	for {
		if err := ctx.Err(); err != nil {
			e.setFatal(err)
			break streamLoop
		}
		if e.fatalErr.Load() != nil {
			break streamLoop
		}

		batch, err := streamer.Next(ctx)
		if err != nil {
			e.setFatal(fmt.Errorf("mdf: streamer: %w", err))
			break streamLoop
		}
		if len(batch) == 0 {
			break streamLoop
		}

		e.launch(batch)
	}

	e.endOfStream.Store(true)

	Stdout.Println("Joining threads...")
	e.wg.Wait()
	Stdout.Println("Finished.")
	e.logger.Info("engine finished")

	if errp := e.fatalErr.Load(); errp != nil {
		return streamer, *errp
	}
	return streamer, nil
}

// launch clones the model graph into a fresh instance, bumps the
// outstanding-instance counter by the instance's terminal-node count (see
// SPEC_FULL.md §9 item 1 — charged once at launch rather than discovered
// lazily, since a frozen graph's terminal set is already known), applies
// the batch's initial tokens, and enqueues any node that becomes fireable
// as a result.
func (e *Engine) launch(batch []Assignment) {
	gh := newGraphHandle(e.instanceSeq.Add(1), e.model.Clone())
	e.outstanding.Add(int64(gh.graph.TerminalCount()))
	e.metrics.InstanceStarted()

	for _, a := range batch {
		var overwritten bool
		gh.setToken(a.Node, a.Param, a.Token, &overwritten)
		if overwritten {
			e.metrics.PortOverwrite(a.Node, a.Param)
		}
		if gh.tryFire(a.Node) {
			e.tasks.Put(task{gh, a.Node})
			e.metrics.QueueDepth(e.tasks.Len())
		}
	}
}

// worker is the scheduler's main loop: local queue, then global queue, then
// steal from a sibling, round-robin starting just past its own index.
// Mirrors mdf::Mdf<D>::Worker.
func (e *Engine) worker(index int) {
	defer e.wg.Done()
	local := e.local[index]

	for {
		if t, ok := local.Get(); ok {
			e.execute(t, local)
			continue
		}
		if t, ok := e.tasks.Get(); ok {
			e.metrics.QueueDepth(e.tasks.Len())
			e.execute(t, local)
			continue
		}
		if t, ok := e.steal(index); ok {
			e.metrics.StealAttempt(true)
			e.execute(t, local)
			continue
		}
		e.metrics.StealAttempt(false)

		if e.endOfStream.Load() && (e.outstanding.Load() <= 0 || e.fatalErr.Load() != nil) {
			return
		}
		runtime.Gosched()
		time.Sleep(time.Microsecond)
	}
}

// steal scans sibling local queues round-robin, starting just past index.
func (e *Engine) steal(index int) (task, bool) {
	for i := 1; i < e.workers; i++ {
		victim := (index + i) % e.workers
		if t, ok := e.local[victim].Get(); ok {
			return t, true
		}
	}
	return task{}, false
}

// execute runs one fireable node's instruction body, then propagates its
// result: dependency edges first (spec.md §4.4 ordering — a dependent's
// resolvedDependencies must never observe a stale count relative to its own
// data ports), then data edges, enqueuing every downstream node that
// becomes fireable onto the worker's own local queue. Terminal nodes are
// routed to the Drainer instead, and decrement the outstanding-instance
// counter.
func (e *Engine) execute(t task, local *Queue[task]) {
	node := t.gh.graph.Node(t.id)
	inputs := t.gh.snapshotTokens(t.id)

	ctx, span := e.tracer.Start(context.Background(), "mdf.node.execute",
		trace.WithAttributes(
			attribute.Int("mdf.node_id", int(t.id)),
			attribute.Int64("mdf.instance_id", int64(t.gh.instanceID)),
		))
	defer span.End()

	e.metrics.NodeFired(t.id)
	start := time.Now()
	result, err := node.instruction.Execute(t.id, inputs)
	e.metrics.NodeDuration(t.id, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		e.logger.Error("instruction failed",
			"node", t.id, "instance", t.gh.instanceID, "error", err)
		e.setFatal(fmt.Errorf("mdf: node %d: %w", t.id, err))
		if node.Terminal() {
			e.finishInstance()
		}
		return
	}

	if node.Terminal() {
		e.drainerMu.Lock()
		derr := e.drainer.Accept(ctx, t.id, result)
		e.drainerMu.Unlock()
		if derr != nil {
			span.RecordError(derr)
			e.logger.Error("drainer failed",
				"node", t.id, "instance", t.gh.instanceID, "error", derr)
			e.setFatal(fmt.Errorf("mdf: drainer for node %d: %w", t.id, derr))
		}
		e.finishInstance()
		return
	}

	for dep := range node.dependents {
		t.gh.bumpDependency(dep)
		if t.gh.tryFire(dep) {
			local.Put(task{t.gh, dep})
		}
	}
	for edge := range node.outEdges {
		var overwritten bool
		t.gh.setToken(edge.dst, edge.param, result, &overwritten)
		if overwritten {
			e.metrics.PortOverwrite(edge.dst, edge.param)
		}
		if t.gh.tryFire(edge.dst) {
			local.Put(task{t.gh, edge.dst})
		}
	}
}

func (e *Engine) finishInstance() {
	n := e.outstanding.Add(-1)
	if n < 0 {
		panic("mdf: outstanding instance counter went negative")
	}
	e.metrics.InstanceCompleted()
}

func (e *Engine) setFatal(err error) {
	if err == nil {
		return
	}
	e.fatalErr.CompareAndSwap(nil, &err)
}
