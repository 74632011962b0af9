package match

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type LogType string

const (
	LogTypeOpen   LogType = "open"   // A remainder starts resting in the book
	LogTypeMatch  LogType = "match"  // A fill against a resting order
	LogTypeReveal LogType = "reveal" // A resting iceberg reloaded its visible slice
)

// BookLog represents an event in the order book.
// SequenceID is a strictly increasing ID for every event of one book, used for ordering,
// deduplication, and rebuild synchronization in downstream systems.
// Replaying the same orders into a fresh book yields the same logs apart from CreatedAt and BookID.
type BookLog struct {
	SequenceID   uint64          `json:"seq_id"`
	TradeID      uint64          `json:"trade_id,omitempty"` // Sequential trade ID, only set for Match events
	Type         LogType         `json:"type"`
	BookID       string          `json:"book_id"`
	Side         Side            `json:"side"` // Taker side for Match, order side otherwise
	Price        uint64          `json:"price"`
	Size         uint64          `json:"size"`
	Hidden       uint64          `json:"hidden,omitempty"` // Remaining hidden quantity, iceberg orders only
	Amount       decimal.Decimal `json:"amount"`           // Price * Size, only set for Match events
	OrderID      uint64          `json:"order_id"`
	MakerOrderID uint64          `json:"maker_order_id,omitempty"`
	Timestamp    uint64          `json:"timestamp"` // Book clock of the order when the event happened
	CreatedAt    time.Time       `json:"created_at"`
}

var bookLogPool = sync.Pool{
	New: func() any {
		return new(BookLog)
	},
}

func acquireBookLog() *BookLog {
	return bookLogPool.Get().(*BookLog)
}

func releaseBookLog(log *BookLog) {
	*log = BookLog{}
	bookLogPool.Put(log)
}

func hiddenOf(order *Order) uint64 {
	if order.Iceberg == nil {
		return 0
	}
	return order.Iceberg.HiddenQuantity
}

func newOpenLog(seqID uint64, bookID string, order *Order, now time.Time) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeOpen
	log.BookID = bookID
	log.Side = order.Side
	log.Price = order.Price
	log.Size = order.Quantity
	log.Hidden = hiddenOf(order)
	log.OrderID = order.ID
	log.Timestamp = order.Timestamp
	log.CreatedAt = now
	return log
}

func newMatchLog(seqID uint64, tradeID uint64, bookID string, taker *Order, maker *Order, fill FillEvent, now time.Time) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.TradeID = tradeID
	log.Type = LogTypeMatch
	log.BookID = bookID
	log.Side = taker.Side
	log.Price = fill.Price
	log.Size = fill.Quantity
	log.Amount = fill.Notional()
	log.OrderID = taker.ID
	log.MakerOrderID = maker.ID
	log.Timestamp = taker.Timestamp
	log.CreatedAt = now
	return log
}

func newRevealLog(seqID uint64, bookID string, order *Order, now time.Time) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeReveal
	log.BookID = bookID
	log.Side = order.Side
	log.Price = order.Price
	log.Size = order.Quantity
	log.Hidden = hiddenOf(order)
	log.OrderID = order.ID
	log.Timestamp = order.Timestamp
	log.CreatedAt = now
	return log
}
