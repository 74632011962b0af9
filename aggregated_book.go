package match

import (
	"fmt"
	"sync"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// AggregatedBook maintains a simplified view of the order book,
// tracking only price levels and their aggregated visible sizes (depth).
// It is designed for downstream services that need to rebuild
// order book state from BookLog events, and it is itself a PublishLog.
type AggregatedBook struct {
	mu    sync.RWMutex
	seqID uint64 // Last processed SequenceID for gap detection and deduplication
	ask   *treemap.TreeMap[uint64, decimal.Decimal]
	bid   *treemap.TreeMap[uint64, decimal.Decimal]
}

// NewAggregatedBook creates a new AggregatedBook instance with empty ask and bid sides.
func NewAggregatedBook() *AggregatedBook {
	ab := &AggregatedBook{}
	ab.reset()
	return ab
}

func (ab *AggregatedBook) reset() {
	ab.seqID = 0
	ab.ask = treemap.NewWithKeyCompare[uint64, decimal.Decimal](func(a, b uint64) bool {
		return a < b
	})
	ab.bid = treemap.NewWithKeyCompare[uint64, decimal.Decimal](func(a, b uint64) bool {
		return a > b
	})
}

// SequenceID returns the last processed sequence ID.
func (ab *AggregatedBook) SequenceID() uint64 {
	ab.mu.RLock()
	defer ab.mu.RUnlock()
	return ab.seqID
}

// Publish replays logs, dropping them after the first failure.
func (ab *AggregatedBook) Publish(logs ...*BookLog) {
	for _, log := range logs {
		if err := ab.Replay(log); err != nil {
			logger.Error("aggregated book replay failed", "error", err, "seq_id", log.SequenceID)
			return
		}
	}
}

// Replay applies a BookLog event to update the aggregated book state.
// Already applied events are ignored; a gap in sequence IDs returns ErrSequenceGap.
func (ab *AggregatedBook) Replay(log *BookLog) error {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	if log.SequenceID <= ab.seqID {
		return nil
	}
	if log.SequenceID != ab.seqID+1 {
		return fmt.Errorf("%w: expected %d, got %d", ErrSequenceGap, ab.seqID+1, log.SequenceID)
	}

	change := CalculateDepthChange(log)
	tree := ab.side(change.Side)
	if tree != nil && change.Size != 0 {
		current, _ := tree.Get(change.Price)
		delta := decimalFromUint64(change.Size)
		if change.Decrease {
			delta = delta.Neg()
		}
		next := current.Add(delta)
		switch next.Sign() {
		case -1:
			return fmt.Errorf("%w: depth at price %d would become %s", ErrInvariantViolation, change.Price, next)
		case 0:
			tree.Del(change.Price)
		default:
			tree.Set(change.Price, next)
		}
	}

	ab.seqID = log.SequenceID
	return nil
}

// OnRebuild resets the aggregated book so it can be replayed from the first event.
func (ab *AggregatedBook) OnRebuild() error {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	ab.reset()
	return nil
}

// Depth returns the aggregated size at a specific price level for the given side.
// Returns zero if the price level does not exist.
func (ab *AggregatedBook) Depth(side Side, price uint64) decimal.Decimal {
	ab.mu.RLock()
	defer ab.mu.RUnlock()
	tree := ab.side(side)
	if tree == nil {
		return decimal.Zero
	}
	size, _ := tree.Get(price)
	return size
}

// Levels returns up to limit price levels of side, best first.
func (ab *AggregatedBook) Levels(side Side, limit uint32) []*DepthItem {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	tree := ab.side(side)
	result := make([]*DepthItem, 0)
	if tree == nil {
		return result
	}
	for it := tree.Iterator(); it.Valid() && uint32(len(result)) < limit; it.Next() {
		result = append(result, &DepthItem{Price: it.Key(), Quantity: it.Value()})
	}
	return result
}

func (ab *AggregatedBook) side(side Side) *treemap.TreeMap[uint64, decimal.Decimal] {
	switch side {
	case Buy:
		return ab.bid
	case Sell:
		return ab.ask
	}
	return nil
}
