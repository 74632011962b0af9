package match

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Side is the side of the book an order rests on.
type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

// Opposite returns the side an order of side s matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) valid() bool {
	return s == Buy || s == Sell
}

// OrderKey holds the identity and priority fields of an order.
// Timestamp is a logical clock value assigned by the book, not wall time.
type OrderKey struct {
	ID        uint64 `json:"id"`
	Price     uint64 `json:"price"`
	Timestamp uint64 `json:"timestamp"`
	Side      Side   `json:"side"`
}

// compareKeys orders keys best-first: it returns -1 when a is matched before b,
// 1 when b is matched before a and 0 when both price and timestamp are equal.
// The side of a decides the price direction; ID takes no part in the ordering.
func compareKeys(a, b OrderKey) int {
	if a.Price != b.Price {
		better := a.Price < b.Price
		if a.Side == Buy {
			better = a.Price > b.Price
		}
		if better {
			return -1
		}
		return 1
	}

	switch {
	case a.Timestamp < b.Timestamp:
		return -1
	case a.Timestamp > b.Timestamp:
		return 1
	}
	return 0
}

// Better reports whether k would be matched before other.
func (k OrderKey) Better(other OrderKey) bool {
	return compareKeys(k, other) < 0
}

// crosses reports whether an incoming order with key k can trade against the resting maker.
func (k OrderKey) crosses(maker OrderKey) bool {
	if k.Side == Buy {
		return k.Price >= maker.Price
	}
	return k.Price <= maker.Price
}

// IcebergOrder is the hidden reserve of an iceberg order.
type IcebergOrder struct {
	PeakSize       uint64 `json:"peak_size"`
	HiddenQuantity uint64 `json:"hidden_quantity"`
}

// Order is an OrderKey plus its mutable quantity state.
type Order struct {
	OrderKey
	Quantity uint64        `json:"quantity"` // Visible, matchable quantity
	Iceberg  *IcebergOrder `json:"iceberg,omitempty"`
}

// NewLimitOrder creates a plain limit order.
func NewLimitOrder(id uint64, side Side, price, quantity uint64) *Order {
	return &Order{
		OrderKey: OrderKey{ID: id, Price: price, Side: side},
		Quantity: quantity,
	}
}

// NewIcebergOrder creates an iceberg order from its total requested quantity.
// The first visible slice is min(peak, quantity) and the rest is hidden.
// When peak exceeds quantity the whole quantity is visible and nothing is hidden.
func NewIcebergOrder(id uint64, side Side, price, quantity, peak uint64) *Order {
	visible := min(peak, quantity)
	return &Order{
		OrderKey: OrderKey{ID: id, Price: price, Side: side},
		Quantity: visible,
		Iceberg: &IcebergOrder{
			PeakSize:       peak,
			HiddenQuantity: quantity - visible,
		},
	}
}

// IsIceberg reports whether the order carries a hidden reserve.
func (o *Order) IsIceberg() bool {
	return o.Iceberg != nil
}

// Empty reports whether nothing is left to match, visible or hidden.
func (o *Order) Empty() bool {
	if o.Iceberg == nil {
		return o.Quantity == 0
	}
	return o.Quantity == 0 && o.Iceberg.HiddenQuantity == 0
}

// TotalQuantity is the visible plus hidden quantity.
func (o *Order) TotalQuantity() uint64 {
	if o.Iceberg == nil {
		return o.Quantity
	}
	return o.Quantity + o.Iceberg.HiddenQuantity
}

// reveal exposes the next visible slice of an iceberg whose visible quantity is exhausted.
// It never touches the timestamp.
func (o *Order) reveal() {
	if o.Quantity != 0 || o.Iceberg == nil {
		return
	}
	slice := min(o.Iceberg.PeakSize, o.Iceberg.HiddenQuantity)
	o.Quantity = slice
	o.Iceberg.HiddenQuantity -= slice
}

func (o *Order) clone() *Order {
	cpy := *o
	if o.Iceberg != nil {
		ice := *o.Iceberg
		cpy.Iceberg = &ice
	}
	return &cpy
}

// FillEvent is a single trade between a buy and a sell order.
// Price is always the resting (maker) order's price.
type FillEvent struct {
	BuyOrderID  uint64 `json:"buy_order_id"`
	SellOrderID uint64 `json:"sell_order_id"`
	Price       uint64 `json:"price"`
	Quantity    uint64 `json:"quantity"`
}

func newFillEvent(taker, maker *Order, quantity uint64) FillEvent {
	fill := FillEvent{Price: maker.Price, Quantity: quantity}
	if taker.Side == Buy {
		fill.BuyOrderID, fill.SellOrderID = taker.ID, maker.ID
	} else {
		fill.BuyOrderID, fill.SellOrderID = maker.ID, taker.ID
	}
	return fill
}

// Notional returns Price * Quantity without overflowing uint64.
func (f FillEvent) Notional() decimal.Decimal {
	return decimalFromUint64(f.Price).Mul(decimalFromUint64(f.Quantity))
}

func decimalFromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
