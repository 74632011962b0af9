package match

import (
	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// priceLevel aggregates the visible quantity resting at one price.
// The sum of several u64 quantities does not fit in a u64, so size is a decimal.
type priceLevel struct {
	price uint64
	size  decimal.Decimal
	count int64
}

// DepthItem is one aggregated price level.
type DepthItem struct {
	Price    uint64          `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Count    int64           `json:"count"`
}

// queue keeps the keys of one side in priority order, best first.
// It never holds order state; that lives in the orderIndex registry.
type queue struct {
	side   Side
	keys   *skiplist.SkipList
	levels *btree.BTreeG[*priceLevel]
}

// newBuyerQueue creates a queue for buy orders (bids).
// Higher prices come first, then earlier timestamps.
func newBuyerQueue() *queue {
	return newQueue(Buy, func(a, b *priceLevel) bool {
		return a.price > b.price
	})
}

// newSellerQueue creates a queue for sell orders (asks).
// Lower prices come first, then earlier timestamps.
func newSellerQueue() *queue {
	return newQueue(Sell, func(a, b *priceLevel) bool {
		return a.price < b.price
	})
}

func newQueue(side Side, less func(a, b *priceLevel) bool) *queue {
	return &queue{
		side: side,
		keys: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			k1, _ := lhs.(OrderKey)
			k2, _ := rhs.(OrderKey)
			return compareKeys(k1, k2)
		})),
		levels: btree.NewBTreeGOptions(less, btree.Options{NoLocks: true}),
	}
}

// push adds key with its visible quantity. An equal key already present is a broken invariant.
func (q *queue) push(key OrderKey, visible uint64) {
	if q.keys.Get(key) != nil {
		panic(newInvariantError("queue already holds key", key))
	}
	q.keys.Set(key, nil)

	level, ok := q.levels.Get(&priceLevel{price: key.Price})
	if !ok {
		level = &priceLevel{price: key.Price}
		q.levels.Set(level)
	}
	level.size = level.size.Add(decimalFromUint64(visible))
	level.count++
}

// remove drops key; visible is the quantity still accounted to it in its price level.
func (q *queue) remove(key OrderKey, visible uint64) {
	if q.keys.Remove(key) == nil {
		panic(newInvariantError("queue does not hold key", key))
	}

	level, ok := q.levels.Get(&priceLevel{price: key.Price})
	if !ok {
		panic(newInvariantError("price level missing", key))
	}
	level.size = level.size.Sub(decimalFromUint64(visible))
	level.count--
	if level.count == 0 {
		q.levels.Delete(level)
	}
}

// consume takes quantity off the level at price after a fill.
func (q *queue) consume(price uint64, quantity uint64) {
	level, ok := q.levels.Get(&priceLevel{price: price})
	if !ok {
		panic(newInvariantError("price level missing", OrderKey{Price: price, Side: q.side}))
	}
	level.size = level.size.Sub(decimalFromUint64(quantity))
}

// front returns the best key without removing it.
func (q *queue) front() (OrderKey, bool) {
	el := q.keys.Front()
	if el == nil {
		return OrderKey{}, false
	}
	key, _ := el.Key().(OrderKey)
	return key, true
}

// each calls fn for every key, best first, until fn returns false.
func (q *queue) each(fn func(key OrderKey) bool) {
	for el := q.keys.Front(); el != nil; el = el.Next() {
		key, _ := el.Key().(OrderKey)
		if !fn(key) {
			return
		}
	}
}

// orderCount returns the total number of orders in the queue.
func (q *queue) orderCount() int64 {
	return int64(q.keys.Len())
}

// depthCount returns the number of price levels in the queue.
func (q *queue) depthCount() int64 {
	return int64(q.levels.Len())
}

// depth returns up to limit aggregated price levels, best first.
func (q *queue) depth(limit uint32) []*DepthItem {
	result := make([]*DepthItem, 0, min(int(limit), q.levels.Len()))

	q.levels.Scan(func(level *priceLevel) bool {
		if uint32(len(result)) >= limit {
			return false
		}
		result = append(result, &DepthItem{
			Price:    level.price,
			Quantity: level.size,
			Count:    level.count,
		})
		return true
	})

	return result
}
