package migrate

// EventKind identifies a progress step reported to an Observer.
type EventKind int

const (
	// EventStarted is sent before a URI is processed.
	EventStarted EventKind = iota
	// EventRequest is sent before an HTTP request (Method, URL).
	EventRequest
	// EventData carries the source preview and its size in bytes.
	EventData
	// EventSame is sent when the destination already holds the source data.
	EventSame
	// EventDryRun replaces a write that was skipped.
	EventDryRun
	// EventStatus reports an accepted write (StatusCode).
	EventStatus
	// EventFinished carries the final Outcome of a URI.
	EventFinished
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventRequest:
		return "request"
	case EventData:
		return "data"
	case EventSame:
		return "same"
	case EventDryRun:
		return "dry-run"
	case EventStatus:
		return "status"
	case EventFinished:
		return "finished"
	}
	return "unknown"
}

// Event is a single progress notification.
type Event struct {
	Kind  EventKind
	Index int
	Total int
	URI   string

	Method     string
	URL        string
	Preview    string
	Size       int
	StatusCode int

	Outcome *Outcome
}

// Observer receives progress events synchronously from the processing loop.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Observers fans events out to several observers in order.
type Observers []Observer

func (os Observers) Observe(e Event) {
	for _, o := range os {
		if o != nil {
			o.Observe(e)
		}
	}
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
