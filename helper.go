package match

// DepthChange represents a change in the order book depth.
// Size is the magnitude of the change; Decrease tells whether it is taken off the level.
type DepthChange struct {
	Side     Side
	Price    uint64
	Size     uint64
	Decrease bool
}

// CalculateDepthChange calculates the depth change based on the book log.
// It returns a DepthChange struct indicating which side and price level should be updated.
// Note: For LogTypeMatch, the side returned is the Maker's side (opposite of the log's side).
func CalculateDepthChange(log *BookLog) DepthChange {
	switch log.Type {
	case LogTypeOpen, LogTypeReveal:
		return DepthChange{
			Side:  log.Side,
			Price: log.Price,
			Size:  log.Size,
		}
	case LogTypeMatch:
		// The log.Side is the Taker's side, so we update the opposite side.
		return DepthChange{
			Side:     log.Side.Opposite(),
			Price:    log.Price,
			Size:     log.Size,
			Decrease: true,
		}
	}

	return DepthChange{}
}
