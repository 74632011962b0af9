package protocol

// OrderType is the tag of an order line.
type OrderType string

const (
	OrderTypeLimit   OrderType = "Limit"
	OrderTypeIceberg OrderType = "Iceberg"
)

// Direction is the side of an order on the wire.
type Direction string

const (
	DirectionBuy  Direction = "Buy"
	DirectionSell Direction = "Sell"
)

// OrderCommand is one line of input: a tagged order.
//
//	{"type":"Iceberg","order":{"direction":"Buy","id":4,"price":100,"quantity":500,"peak":100}}
type OrderCommand struct {
	Type  OrderType  `json:"type" validate:"required,oneof=Limit Iceberg"`
	Order *OrderBody `json:"order" validate:"required"`
}

// OrderBody is the order payload. Peak is only read for Iceberg orders.
type OrderBody struct {
	Direction Direction `json:"direction" validate:"required,oneof=Buy Sell"`
	ID        *uint64   `json:"id" validate:"required"`
	Price     *uint64   `json:"price" validate:"required"`
	Quantity  uint64    `json:"quantity" validate:"gt=0"`
	Peak      *uint64   `json:"peak,omitempty"`
}

// OrderView is how a resting order is shown. Internal fields never leave the book.
type OrderView struct {
	ID       uint64 `json:"id"`
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`
}

// BookView is the current book: buy side first, then sell side, each best first.
type BookView struct {
	BuyOrders  []OrderView `json:"buyOrders"`
	SellOrders []OrderView `json:"sellOrders"`
}

// FillView is how a trade is shown.
type FillView struct {
	BuyOrderID  uint64 `json:"buyOrderId"`
	SellOrderID uint64 `json:"sellOrderId"`
	Price       uint64 `json:"price"`
	Quantity    uint64 `json:"quantity"`
}
