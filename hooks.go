package greetcount

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The counter calls them on the request path.
type Hooks interface {
	// The store read failed; the hit returns the error.
	ReadFailed(key string, err error)

	// A fire-and-forget write failed. Nothing else observes it.
	WriteFailed(key string, err error)

	// A stored value could not be decoded.
	MalformedValue(key string, err error)

	// A hit produced count n.
	Counted(key string, n int64)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) ReadFailed(string, error)     {}
func (NopHooks) WriteFailed(string, error)    {}
func (NopHooks) MalformedValue(string, error) {}
func (NopHooks) Counted(string, int64)        {}
