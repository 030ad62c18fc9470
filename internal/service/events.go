package service

// EventType defines the type of event
type EventType string

const (
	EventRepoCreated   EventType = "repo_created"
	EventRepoDeleted   EventType = "repo_deleted"
	EventReadmeUpdated EventType = "readme_updated"
	EventCommitCreated EventType = "commit_created"
)

// Event represents a mutation that occurred in the system. Payloads carry
// identifiers only, not full change batches; consumers re-fetch what they
// need.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
