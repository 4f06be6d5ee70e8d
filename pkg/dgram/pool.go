package dgram

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Range describes the worker slots [Lo, Hi]. Slot 1 is the intake goroutine
// itself; slots above 1 are pooled workers; slots at or below 0 are extra
// inline turns per cycle, biasing work toward the low-latency inline path.
type Range struct {
	Lo int
	Hi int
}

// ParseRange parses a worker-range value. A single integer means no pooling;
// "lo:hi" enables the distribution scheduler over those slots.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{Lo: 1, Hi: 1}, nil
	}

	lo, hi, found := strings.Cut(s, ":")
	if !found {
		if _, err := strconv.Atoi(lo); err != nil {
			return Range{}, fmt.Errorf("invalid worker range %q: %w", s, err)
		}
		return Range{Lo: 1, Hi: 1}, nil
	}

	loN, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Range{}, fmt.Errorf("invalid worker range %q: %w", s, err)
	}
	hiN, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return Range{}, fmt.Errorf("invalid worker range %q: %w", s, err)
	}

	r := Range{Lo: loN, Hi: hiN}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// Validate checks the range invariants: lo must not exceed hi, and the range
// must include slot 1 or higher so the cycle always reaches the intake slot.
func (r Range) Validate() error {
	if r.Lo > r.Hi {
		return fmt.Errorf("invalid worker range %d:%d: lo exceeds hi", r.Lo, r.Hi)
	}
	if r.Hi < 1 {
		return fmt.Errorf("invalid worker range %d:%d: hi must be at least 1", r.Lo, r.Hi)
	}
	return nil
}

// Pooled reports whether the range contains any worker slot.
func (r Range) Pooled() bool {
	return r.Hi > 1
}

// Workers returns the pool size: the number of slots above 1.
func (r Range) Workers() int {
	lo := r.Lo
	if lo < 2 {
		lo = 2
	}
	if r.Hi < lo {
		return 0
	}
	return r.Hi - lo + 1
}

// job carries one packet to a worker. done receives the pipeline/handler
// result exactly once.
type job struct {
	payload []byte
	from    net.Addr
	done    chan error
}

// worker owns one slot: a cloned extension/handler set seeded at spawn and an
// output buffer that stages reply bytes until the intake goroutine collects
// them. The buffer is written by this worker only and read by the intake
// goroutine only after the job completed, so no lock is needed.
type worker struct {
	slot     int
	registry *Registry
	store    Store
	jobs     chan *job
	out      bytes.Buffer
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range w.jobs {
		ctx := newContext(j.payload, j.from, w.store, w.registry.handlers, bufferSink{&w.out})
		j.done <- route(ctx, w.registry)
	}
}

// take drains the staged output, leaving the buffer empty for the next job.
func (w *worker) take() []byte {
	if w.out.Len() == 0 {
		return nil
	}
	out := make([]byte, w.out.Len())
	copy(out, w.out.Bytes())
	w.out.Reset()
	return out
}

// bufferSink stages reply bytes into a worker's output buffer.
type bufferSink struct {
	out *bytes.Buffer
}

func (s bufferSink) reply(p []byte, _ net.Addr) error {
	_, err := s.out.Write(p)
	return err
}

// pool is the worker distribution scheduler: a cyclic selector over the
// configured range decides, packet by packet, whether work runs inline on the
// intake goroutine or on the worker owning the selected slot. A delegated job
// is always awaited before the next receive, so replies are never reordered.
type pool struct {
	rng       Range
	cursor    int
	workers   map[int]*worker
	registry  *Registry
	store     Store
	transport Transport
	log       *zap.Logger
	wg        sync.WaitGroup
}

func newPool(r Range) *pool {
	return &pool{
		rng:     r,
		cursor:  r.Lo - 1,
		workers: make(map[int]*worker),
	}
}

// spawn starts one goroutine per worker slot. Each worker is seeded with its
// own clone of the extension set, taken after OnStart ran, so seeded state is
// inherited but never shared.
func (p *pool) spawn(reg *Registry, store Store, t Transport, log *zap.Logger) {
	p.registry = reg
	p.store = store
	p.transport = t
	p.log = log

	lo := p.rng.Lo
	if lo < 2 {
		lo = 2
	}
	for slot := lo; slot <= p.rng.Hi; slot++ {
		w := &worker{
			slot:     slot,
			registry: reg.clone(),
			store:    store,
			jobs:     make(chan *job),
		}
		p.workers[slot] = w
		p.wg.Add(1)
		go w.run(&p.wg)
	}
	p.log.Info("worker pool started",
		zap.Int("workers", p.rng.Workers()),
		zap.Int("lo", p.rng.Lo),
		zap.Int("hi", p.rng.Hi))
}

// advance steps the cyclic selector and returns the chosen slot.
func (p *pool) advance() int {
	p.cursor++
	if p.cursor > p.rng.Hi {
		p.cursor = p.rng.Lo
	}
	return p.cursor
}

// dispatch places one packet. Selector values at or below 1 process inline;
// higher values ship the packet to that slot's worker, block until the job
// completes, then flush the worker's staged output as a single reply.
func (p *pool) dispatch(payload []byte, from net.Addr) error {
	slot := p.advance()
	if slot <= 1 {
		ctx := newContext(payload, from, p.store, p.registry.handlers, transportSink{p.transport})
		return route(ctx, p.registry)
	}

	w := p.workers[slot]
	j := &job{payload: payload, from: from, done: make(chan error, 1)}
	w.jobs <- j
	if err := <-j.done; err != nil {
		return fmt.Errorf("worker %d: %w", w.slot, err)
	}

	if out := w.take(); out != nil {
		if _, err := p.transport.WriteTo(out, from); err != nil {
			return fmt.Errorf("worker %d: reply: %w", w.slot, err)
		}
	}
	return nil
}

// shutdown stops all workers and waits for them to drain.
func (p *pool) shutdown() {
	for _, w := range p.workers {
		close(w.jobs)
	}
	p.wg.Wait()
}
