package processor

// State is the stage the processor reached on the event it is handling.
type State uint32

const (
	StateIdle State = iota
	StateSubscribed
	StatePoolDetected
	StateMarketKeysResolved
	StateQuoteReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubscribed:
		return "subscribed"
	case StatePoolDetected:
		return "pool_detected"
	case StateMarketKeysResolved:
		return "market_keys_resolved"
	case StateQuoteReady:
		return "quote_ready"
	default:
		return "UNKNOWN"
	}
}
