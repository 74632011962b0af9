package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icebergSell100x25x300() *Order { return NewIcebergOrder(5, Sell, 100, 300, 25) }
func icebergBuy100x100x500() *Order { return NewIcebergOrder(4, Buy, 100, 500, 100) }

func TestIceberg_TakerAgainstLimitOrders(t *testing.T) {
	book := NewOrderBook(NewMemoryPublishLog())

	for i := uint64(0); i < 4; i++ {
		submit(t, book, NewLimitOrder(i, Buy, 100+i, 30))
	}

	fills := submit(t, book, icebergSell100x25x300())

	// Each buy is hit in up to two slices because the seller shows 25 at a time.
	assert.Equal(t, []FillEvent{
		{BuyOrderID: 3, SellOrderID: 5, Price: 103, Quantity: 25},
		{BuyOrderID: 3, SellOrderID: 5, Price: 103, Quantity: 5},

		{BuyOrderID: 2, SellOrderID: 5, Price: 102, Quantity: 20},
		{BuyOrderID: 2, SellOrderID: 5, Price: 102, Quantity: 10},

		{BuyOrderID: 1, SellOrderID: 5, Price: 101, Quantity: 15},
		{BuyOrderID: 1, SellOrderID: 5, Price: 101, Quantity: 15},

		{BuyOrderID: 0, SellOrderID: 5, Price: 100, Quantity: 10},
		{BuyOrderID: 0, SellOrderID: 5, Price: 100, Quantity: 20},
	}, fills)

	assert.Empty(t, book.Orders(Buy))
	assert.Equal(t, []Order{{
		OrderKey: OrderKey{ID: 5, Price: 100, Timestamp: 5, Side: Sell},
		Quantity: 5,
		Iceberg:  &IcebergOrder{PeakSize: 25, HiddenQuantity: 175},
	}}, book.Orders(Sell))
}

func TestIceberg_LimitOrderAgainstIceberg(t *testing.T) {
	book := NewOrderBook(NewMemoryPublishLog())

	submit(t, book, icebergSell100x25x300())

	buy := NewLimitOrder(1, Buy, 100, 400)
	fills := submit(t, book, buy)

	want := make([]FillEvent, 12)
	for i := range want {
		want[i] = FillEvent{BuyOrderID: 1, SellOrderID: 5, Price: 100, Quantity: 25}
	}
	assert.Equal(t, want, fills)

	assert.Equal(t, []Order{stamped(buy, 2, 100)}, book.Orders(Buy))
	assert.Empty(t, book.Orders(Sell))

	// One tick for each order plus one for each of the 11 reloads.
	assert.Equal(t, uint64(13), book.Clock())
}

func TestIceberg_RestingIcebergExhausted(t *testing.T) {
	book := NewOrderBook(nil)

	submit(t, book, NewIcebergOrder(7, Sell, 100, 500, 100))
	fills := submit(t, book, NewLimitOrder(8, Buy, 100, 1000))

	require.Len(t, fills, 5)
	for _, fill := range fills {
		assert.Equal(t, FillEvent{BuyOrderID: 8, SellOrderID: 7, Price: 100, Quantity: 100}, fill)
	}
	assert.Empty(t, book.Orders(Sell))

	orders := book.Orders(Buy)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(500), orders[0].Quantity)
}

func TestIceberg_PreservingOrder(t *testing.T) {
	book := NewOrderBook(NewMemoryPublishLog())

	for i := uint64(0); i < 3; i++ {
		submit(t, book, NewIcebergOrder(i, Sell, 100, 100*(i+2), 100))
	}

	fills := submit(t, book, icebergBuy100x100x500())

	// Every reload queues behind the icebergs that have not reloaded yet.
	assert.Equal(t, []FillEvent{
		{BuyOrderID: 4, SellOrderID: 0, Price: 100, Quantity: 100},
		{BuyOrderID: 4, SellOrderID: 1, Price: 100, Quantity: 100},
		{BuyOrderID: 4, SellOrderID: 2, Price: 100, Quantity: 100},
		{BuyOrderID: 4, SellOrderID: 0, Price: 100, Quantity: 100},
		{BuyOrderID: 4, SellOrderID: 1, Price: 100, Quantity: 100},
	}, fills)

	assert.Empty(t, book.Orders(Buy))
	assert.Equal(t, []Order{
		{
			OrderKey: OrderKey{ID: 2, Price: 100, Timestamp: 7, Side: Sell},
			Quantity: 100,
			Iceberg:  &IcebergOrder{PeakSize: 100, HiddenQuantity: 200},
		},
		{
			OrderKey: OrderKey{ID: 1, Price: 100, Timestamp: 8, Side: Sell},
			Quantity: 100,
			Iceberg:  &IcebergOrder{PeakSize: 100, HiddenQuantity: 0},
		},
	}, book.Orders(Sell))
}

func TestIceberg_ReplenishmentPriority(t *testing.T) {
	publishTrader := NewMemoryPublishLog()
	book := NewOrderBook(publishTrader)

	submit(t, book, NewIcebergOrder(1, Sell, 100, 100, 10))
	submit(t, book, NewLimitOrder(2, Sell, 100, 10))

	// Exhausts the iceberg's visible slice; the reload moves behind order 2.
	fills := submit(t, book, NewLimitOrder(3, Buy, 100, 10))
	assert.Equal(t, []FillEvent{{BuyOrderID: 3, SellOrderID: 1, Price: 100, Quantity: 10}}, fills)

	fills = submit(t, book, NewLimitOrder(4, Buy, 100, 10))
	assert.Equal(t, []FillEvent{{BuyOrderID: 4, SellOrderID: 2, Price: 100, Quantity: 10}}, fills)

	assert.Equal(t, []Order{{
		OrderKey: OrderKey{ID: 1, Price: 100, Timestamp: 4, Side: Sell},
		Quantity: 10,
		Iceberg:  &IcebergOrder{PeakSize: 10, HiddenQuantity: 80},
	}}, book.Orders(Sell))

	var reveals []*BookLog
	for _, l := range publishTrader.Logs() {
		if l.Type == LogTypeReveal {
			reveals = append(reveals, l)
		}
	}
	require.Len(t, reveals, 1)
	assert.Equal(t, uint64(1), reveals[0].OrderID)
	assert.Equal(t, uint64(10), reveals[0].Size)
	assert.Equal(t, uint64(80), reveals[0].Hidden)
	assert.Equal(t, uint64(4), reveals[0].Timestamp)
}

func TestIceberg_PartialFillNoReplenish(t *testing.T) {
	publishTrader := NewMemoryPublishLog()
	book := NewOrderBook(publishTrader)

	submit(t, book, NewIcebergOrder(1, Sell, 100, 60, 10))
	submit(t, book, NewLimitOrder(2, Buy, 100, 5))

	assert.Equal(t, []Order{{
		OrderKey: OrderKey{ID: 1, Price: 100, Timestamp: 1, Side: Sell},
		Quantity: 5,
		Iceberg:  &IcebergOrder{PeakSize: 10, HiddenQuantity: 50},
	}}, book.Orders(Sell))

	for _, l := range publishTrader.Logs() {
		assert.NotEqual(t, LogTypeReveal, l.Type)
	}
	assert.Equal(t, uint64(2), book.Clock())
}

func TestIceberg_TakerConsumesHiddenQuantity(t *testing.T) {
	book := NewOrderBook(nil)

	for i := uint64(1); i <= 5; i++ {
		submit(t, book, NewLimitOrder(i, Sell, 100, 20))
	}

	// The iceberg shows 10 but trades its full 80 while it is the taker.
	fills := submit(t, book, NewIcebergOrder(10, Buy, 100, 80, 10))
	require.Len(t, fills, 8)

	var total uint64
	for _, fill := range fills {
		assert.Equal(t, uint64(10), fill.Quantity)
		total += fill.Quantity
	}
	assert.Equal(t, uint64(80), total)

	assert.Empty(t, book.Orders(Buy))
	sells := book.Orders(Sell)
	require.Len(t, sells, 1)
	assert.Equal(t, uint64(5), sells[0].ID)
	assert.Equal(t, uint64(20), sells[0].Quantity)
}

func TestIceberg_TakerRemainderRests(t *testing.T) {
	publishTrader := NewMemoryPublishLog()
	book := NewOrderBook(publishTrader)

	submit(t, book, NewLimitOrder(1, Sell, 100, 15))

	// The partly consumed slice rests as is; it is not topped up to the peak.
	fills := submit(t, book, NewIcebergOrder(2, Buy, 100, 50, 20))
	assert.Equal(t, []FillEvent{{BuyOrderID: 2, SellOrderID: 1, Price: 100, Quantity: 15}}, fills)
	assert.Equal(t, []Order{{
		OrderKey: OrderKey{ID: 2, Price: 100, Timestamp: 2, Side: Buy},
		Quantity: 5,
		Iceberg:  &IcebergOrder{PeakSize: 20, HiddenQuantity: 30},
	}}, book.Orders(Buy))

	open := publishTrader.Get(publishTrader.Count() - 1)
	assert.Equal(t, LogTypeOpen, open.Type)
	assert.Equal(t, uint64(5), open.Size)
	assert.Equal(t, uint64(30), open.Hidden)

	// The resting iceberg reloads mid-match and keeps trading with the same taker.
	fills = submit(t, book, NewLimitOrder(3, Sell, 100, 10))
	assert.Equal(t, []FillEvent{
		{BuyOrderID: 2, SellOrderID: 3, Price: 100, Quantity: 5},
		{BuyOrderID: 2, SellOrderID: 3, Price: 100, Quantity: 5},
	}, fills)
	assert.Equal(t, []Order{{
		OrderKey: OrderKey{ID: 2, Price: 100, Timestamp: 4, Side: Buy},
		Quantity: 15,
		Iceberg:  &IcebergOrder{PeakSize: 20, HiddenQuantity: 10},
	}}, book.Orders(Buy))
	assert.Empty(t, book.Orders(Sell))
}

func TestIceberg_PeakAboveQuantity(t *testing.T) {
	book := NewOrderBook(nil)

	submit(t, book, NewIcebergOrder(1, Buy, 100, 30, 50))
	orders := book.Orders(Buy)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(30), orders[0].Quantity)
	assert.Equal(t, uint64(0), orders[0].Iceberg.HiddenQuantity)

	fills := submit(t, book, NewLimitOrder(2, Sell, 100, 40))
	assert.Equal(t, []FillEvent{{BuyOrderID: 1, SellOrderID: 2, Price: 100, Quantity: 30}}, fills)
	assert.Empty(t, book.Orders(Buy))
	assert.Len(t, book.Orders(Sell), 1)
}

func TestIceberg_DepthTracksReloads(t *testing.T) {
	book := NewOrderBook(nil)

	submit(t, book, NewIcebergOrder(1, Sell, 100, 100, 10))
	submit(t, book, NewLimitOrder(2, Buy, 100, 15))

	depth, err := book.Depth(5)
	require.NoError(t, err)
	assert.Equal(t, []depthRow{{100, "5", 1}}, depthRows(depth.Asks))
	assert.Empty(t, depth.Bids)
}
