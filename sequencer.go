package match

import (
	"context"
	"runtime"

	tomb "gopkg.in/tomb.v2"
)

type commandType uint8

const (
	cmdSubmit commandType = iota
	cmdSnapshot
	cmdDepth
	cmdStats
)

type command struct {
	typ   commandType
	order *Order
	limit uint32
	resp  chan response
}

type response struct {
	fills    []FillEvent
	snapshot *BookSnapshot
	depth    *Depth
	stats    *BookStats
	err      error
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithCommandBuffer sets the capacity of the command channel.
func WithCommandBuffer(size int) Option {
	return func(s *Sequencer) {
		if size > 0 {
			s.cmdChan = make(chan command, size)
		}
	}
}

// Sequencer owns one OrderBook and is the single writer to it.
// Every call is turned into a command and executed in arrival order by one goroutine,
// so callers may share a Sequencer freely.
type Sequencer struct {
	book    *OrderBook
	cmdChan chan command
	t       tomb.Tomb
}

// NewSequencer starts the command loop for book.
func NewSequencer(book *OrderBook, opts ...Option) *Sequencer {
	s := &Sequencer{
		book:    book,
		cmdChan: make(chan command, defaultCommandBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.t.Go(s.loop)
	return s
}

// Submit runs OrderBook.Submit on the book's goroutine.
func (s *Sequencer) Submit(ctx context.Context, order *Order) ([]FillEvent, error) {
	if order == nil {
		return nil, ErrInvalidParam
	}
	// The book keeps its own copy, but the caller may reuse order before the loop reads it.
	res, err := s.call(ctx, command{typ: cmdSubmit, order: order.clone()})
	if err != nil {
		return nil, err
	}
	return res.fills, res.err
}

// Snapshot returns a copy of both sides of the book.
func (s *Sequencer) Snapshot(ctx context.Context) (*BookSnapshot, error) {
	res, err := s.call(ctx, command{typ: cmdSnapshot})
	if err != nil {
		return nil, err
	}
	return res.snapshot, nil
}

// Depth returns up to limit aggregated price levels per side.
func (s *Sequencer) Depth(ctx context.Context, limit uint32) (*Depth, error) {
	if limit == 0 {
		return nil, ErrInvalidParam
	}
	res, err := s.call(ctx, command{typ: cmdDepth, limit: limit})
	if err != nil {
		return nil, err
	}
	return res.depth, res.err
}

// Stats returns usage statistics for the order book.
func (s *Sequencer) Stats(ctx context.Context) (*BookStats, error) {
	res, err := s.call(ctx, command{typ: cmdStats})
	if err != nil {
		return nil, err
	}
	return res.stats, nil
}

func (s *Sequencer) call(ctx context.Context, cmd command) (response, error) {
	cmd.resp = make(chan response, 1)

	select {
	case <-s.t.Dying():
		return response{}, ErrShutdown
	default:
	}

	select {
	case s.cmdChan <- cmd:
	case <-s.t.Dying():
		return response{}, ErrShutdown
	case <-ctx.Done():
		return response{}, ErrTimeout
	}

	select {
	case res := <-cmd.resp:
		return res, nil
	case <-s.t.Dead():
		// The loop may have answered while draining.
		select {
		case res := <-cmd.resp:
			return res, nil
		default:
			return response{}, ErrShutdown
		}
	case <-ctx.Done():
		return response{}, ErrTimeout
	}
}

// Shutdown stops accepting commands, executes the ones already queued and waits for the loop to exit.
// Returns nil if shutdown completed successfully, or ctx.Err() if the context was cancelled.
func (s *Sequencer) Shutdown(ctx context.Context) error {
	s.t.Kill(nil)

	select {
	case <-s.t.Dead():
		return s.t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sequencer) loop() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-s.t.Dying():
			return s.drain()
		case cmd := <-s.cmdChan:
			s.execute(cmd)
		}
	}
}

// drain executes all remaining commands before returning.
func (s *Sequencer) drain() error {
	for {
		select {
		case cmd := <-s.cmdChan:
			s.execute(cmd)
		default:
			return nil
		}
	}
}

func (s *Sequencer) execute(cmd command) {
	var res response

	switch cmd.typ {
	case cmdSubmit:
		res.fills, res.err = s.book.Submit(cmd.order)
	case cmdSnapshot:
		res.snapshot = s.book.TakeSnapshot()
	case cmdDepth:
		res.depth, res.err = s.book.Depth(cmd.limit)
	case cmdStats:
		res.stats = s.book.Stats()
	}

	// resp is buffered, so this never blocks even if the caller gave up.
	cmd.resp <- res
}
