package match

import (
	"fmt"
	"time"

	"github.com/rs/xid"
)

// Depth is the aggregated view of both sides, best levels first.
type Depth struct {
	UpdateID uint64       `json:"update_id"`
	Asks     []*DepthItem `json:"asks"`
	Bids     []*DepthItem `json:"bids"`
}

// BookStats contains statistics about the order book queues
type BookStats struct {
	AskDepthCount int64
	AskOrderCount int64
	BidDepthCount int64
	BidOrderCount int64
}

// OrderBook is the matching core of a single instrument.
//
// It is not safe for concurrent use: Submit and every query must be serialized,
// for example by running the book behind a Sequencer.
type OrderBook struct {
	id            xid.ID
	clock         uint64 // Logical time: one tick per submitted order and per resting iceberg reveal
	seqID         uint64 // Sequence ID of the last published BookLog
	tradeID       uint64 // Sequential trade ID counter, only incremented for Match events
	index         *orderIndex
	publishTrader PublishLog
	broken        error
}

// NewOrderBook creates a new order book instance.
func NewOrderBook(publishTrader PublishLog) *OrderBook {
	if publishTrader == nil {
		publishTrader = NewDiscardPublishLog()
	}
	return &OrderBook{
		id:            xid.New(),
		index:         newOrderIndex(),
		publishTrader: publishTrader,
	}
}

// ID returns the instance ID attached to every BookLog of this book.
func (book *OrderBook) ID() string {
	return book.id.String()
}

// Clock returns the current logical time of the book.
func (book *OrderBook) Clock() uint64 {
	return book.clock
}

// Submit stamps order with the next clock value and crosses it against the opposite side
// until it is filled or no resting order crosses; any remainder then rests in the book.
// Fills are returned in the order they happened.
//
// The caller's order is not retained or modified. Submit returns ErrInvalidParam or
// ErrDuplicateID without touching the book when order breaks a precondition. An
// internal invariant violation aborts the call with an *InvariantError and every
// later Submit fails with the same error.
func (book *OrderBook) Submit(order *Order) (fills []FillEvent, err error) {
	if book.broken != nil {
		return nil, book.broken
	}
	if err := book.validate(order); err != nil {
		return nil, err
	}

	taker := order.clone()
	logs := make([]*BookLog, 0, 8)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ierr, ok := r.(*InvariantError)
		if !ok {
			panic(r)
		}
		book.broken = ierr
		logger.Error("order book halted",
			"kind", "invariant_violation",
			"book_id", book.ID(),
			"order_id", order.ID,
			"error", ierr)
		fills, err = nil, ierr
	}()

	book.clock++
	taker.Timestamp = book.clock

	fills, logs = book.match(taker, logs)

	if len(logs) > 0 {
		book.publishTrader.Publish(logs...)
		for _, log := range logs {
			releaseBookLog(log)
		}
	}

	return fills, nil
}

func (book *OrderBook) validate(order *Order) error {
	if order == nil {
		return fmt.Errorf("%w: nil order", ErrInvalidParam)
	}
	if !order.Side.valid() {
		return fmt.Errorf("%w: unknown side %d", ErrInvalidParam, order.Side)
	}
	if order.Quantity == 0 {
		return fmt.Errorf("%w: order %d has no visible quantity", ErrInvalidParam, order.ID)
	}
	if order.Iceberg != nil {
		if order.Iceberg.PeakSize == 0 {
			return fmt.Errorf("%w: iceberg %d has zero peak", ErrInvalidParam, order.ID)
		}
		if order.Quantity > order.Iceberg.PeakSize {
			return fmt.Errorf("%w: iceberg %d shows more than its peak", ErrInvalidParam, order.ID)
		}
	}
	if book.index.contains(order.ID) {
		return fmt.Errorf("%w: %d", ErrDuplicateID, order.ID)
	}
	return nil
}

// match is the crossing loop of Submit.
func (book *OrderBook) match(taker *Order, logs []*BookLog) ([]FillEvent, []*BookLog) {
	fills := make([]FillEvent, 0, 4)
	opposite := taker.Side.Opposite()
	now := time.Now().UTC()

	for taker.Quantity != 0 {
		makerKey, ok := book.index.best(opposite)
		if !ok || !taker.crosses(makerKey) {
			book.index.insert(taker)
			book.seqID++
			logs = append(logs, newOpenLog(book.seqID, book.ID(), taker, now))
			break
		}

		maker := book.index.lookup(makerKey)
		quantity := min(taker.Quantity, maker.Quantity)
		taker.Quantity -= quantity
		book.index.consume(maker, quantity)

		fill := newFillEvent(taker, maker, quantity)
		fills = append(fills, fill)
		book.seqID++
		book.tradeID++
		logs = append(logs, newMatchLog(book.seqID, book.tradeID, book.ID(), taker, maker, fill, now))

		switch {
		case maker.Empty():
			book.index.remove(maker)
		case maker.Quantity == 0:
			// The reload enters the queue as a fresh arrival at its price.
			book.clock++
			book.index.requeue(maker, book.clock)
			book.seqID++
			logs = append(logs, newRevealLog(book.seqID, book.ID(), maker, now))
		}

		// The taker has not been queued yet, so its reload keeps its arrival stamp.
		if taker.IsIceberg() && taker.Quantity == 0 {
			taker.reveal()
		}
	}

	return fills, logs
}

// Orders returns every resting order on side, best priority first.
// The returned orders are copies.
func (book *OrderBook) Orders(side Side) []Order {
	return book.index.snapshot(side)
}

// Order returns a copy of the resting order with id.
func (book *OrderBook) Order(id uint64) (Order, bool) {
	o, ok := book.index.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o.clone(), true
}

// Depth returns up to limit aggregated price levels per side.
func (book *OrderBook) Depth(limit uint32) (*Depth, error) {
	if limit == 0 {
		return nil, ErrInvalidParam
	}
	return &Depth{
		UpdateID: book.seqID,
		Asks:     book.index.asks.depth(limit),
		Bids:     book.index.bids.depth(limit),
	}, nil
}

// Stats returns usage statistics for the order book.
func (book *OrderBook) Stats() *BookStats {
	return &BookStats{
		AskDepthCount: book.index.asks.depthCount(),
		AskOrderCount: book.index.asks.orderCount(),
		BidDepthCount: book.index.bids.depthCount(),
		BidOrderCount: book.index.bids.orderCount(),
	}
}

// TakeSnapshot captures the current state of the order book.
func (book *OrderBook) TakeSnapshot() *BookSnapshot {
	return &BookSnapshot{
		BookID:  book.ID(),
		Clock:   book.clock,
		SeqID:   book.seqID,
		TradeID: book.tradeID,
		Bids:    book.Orders(Buy),
		Asks:    book.Orders(Sell),
	}
}
