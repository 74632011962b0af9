package match

import (
	"fmt"

	"github.com/0x5487/iceberg-book/protocol"
)

// OrderFromCommand builds the order a decoded line describes.
// Iceberg orders show min(peak, quantity) first; see NewIcebergOrder.
func OrderFromCommand(cmd *protocol.OrderCommand) (*Order, error) {
	if cmd == nil || cmd.Order == nil || cmd.Order.ID == nil || cmd.Order.Price == nil {
		return nil, fmt.Errorf("%w: incomplete order command", ErrInvalidParam)
	}

	var side Side
	switch cmd.Order.Direction {
	case protocol.DirectionBuy:
		side = Buy
	case protocol.DirectionSell:
		side = Sell
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidParam, cmd.Order.Direction)
	}

	body := cmd.Order
	switch cmd.Type {
	case protocol.OrderTypeLimit:
		return NewLimitOrder(*body.ID, side, *body.Price, body.Quantity), nil
	case protocol.OrderTypeIceberg:
		if body.Peak == nil || *body.Peak == 0 {
			return nil, fmt.Errorf("%w: iceberg %d needs a positive peak", ErrInvalidParam, *body.ID)
		}
		return NewIcebergOrder(*body.ID, side, *body.Price, body.Quantity, *body.Peak), nil
	}
	return nil, fmt.Errorf("%w: unknown order type %q", ErrInvalidParam, cmd.Type)
}

// NewBookView projects a snapshot onto its external form.
func NewBookView(snap *BookSnapshot) *protocol.BookView {
	return &protocol.BookView{
		BuyOrders:  orderViews(snap.Bids),
		SellOrders: orderViews(snap.Asks),
	}
}

func orderViews(orders []Order) []protocol.OrderView {
	views := make([]protocol.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, protocol.OrderView{
			ID:       orders[i].ID,
			Price:    orders[i].Price,
			Quantity: orders[i].Quantity,
		})
	}
	return views
}

// NewFillView projects a fill onto its external form.
func NewFillView(fill FillEvent) protocol.FillView {
	return protocol.FillView{
		BuyOrderID:  fill.BuyOrderID,
		SellOrderID: fill.SellOrderID,
		Price:       fill.Price,
		Quantity:    fill.Quantity,
	}
}
