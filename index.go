package match

// orderIndex owns every resting order. The registry and the two queues are
// only changed through insert, remove, consume and requeue so they never drift:
// an id is registered iff its order is non-empty and its current key is queued
// exactly once on its side.
type orderIndex struct {
	orders map[uint64]*Order
	bids   *queue
	asks   *queue
}

func newOrderIndex() *orderIndex {
	return &orderIndex{
		orders: make(map[uint64]*Order),
		bids:   newBuyerQueue(),
		asks:   newSellerQueue(),
	}
}

func (x *orderIndex) queue(side Side) *queue {
	if side == Buy {
		return x.bids
	}
	return x.asks
}

func (x *orderIndex) contains(id uint64) bool {
	_, ok := x.orders[id]
	return ok
}

// insert registers a non-empty order and queues its key.
func (x *orderIndex) insert(o *Order) {
	if o.Empty() {
		panic(newInvariantError("inserting empty order", o.OrderKey))
	}
	if x.contains(o.ID) {
		panic(newInvariantError("registry already holds id", o.OrderKey))
	}
	x.queue(o.Side).push(o.OrderKey, o.Quantity)
	x.orders[o.ID] = o
}

// remove unqueues and unregisters o.
func (x *orderIndex) remove(o *Order) {
	x.queue(o.Side).remove(o.OrderKey, o.Quantity)
	delete(x.orders, o.ID)
}

// best returns the key matched next on side.
func (x *orderIndex) best(side Side) (OrderKey, bool) {
	return x.queue(side).front()
}

// lookup resolves a queued key to its order.
func (x *orderIndex) lookup(key OrderKey) *Order {
	o, ok := x.orders[key.ID]
	if !ok {
		panic(newInvariantError("queued key has no registry entry", key))
	}
	if o.Price != key.Price || o.Timestamp != key.Timestamp {
		panic(newInvariantError("queued key is stale", key))
	}
	return o
}

// consume takes quantity off a resting order's visible quantity.
func (x *orderIndex) consume(o *Order, quantity uint64) {
	o.Quantity -= quantity
	x.queue(o.Side).consume(o.Price, quantity)
}

// requeue reloads a resting iceberg whose visible slice is exhausted.
// The old key leaves the queue before the order is revealed and restamped
// with timestamp, and only the new key is pushed back.
func (x *orderIndex) requeue(o *Order, timestamp uint64) {
	q := x.queue(o.Side)
	q.remove(o.OrderKey, o.Quantity)
	o.reveal()
	o.Timestamp = timestamp
	q.push(o.OrderKey, o.Quantity)
}

// snapshot returns copies of the resting orders on side, best first.
func (x *orderIndex) snapshot(side Side) []Order {
	q := x.queue(side)
	result := make([]Order, 0, q.orderCount())
	q.each(func(key OrderKey) bool {
		result = append(result, *x.lookup(key).clone())
		return true
	})
	return result
}
