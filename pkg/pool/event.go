package pool

// EventType selects which stream of pool events a listener receives.
type EventType int

const (
	// EventAcquire fires after an entry is handed out.
	EventAcquire EventType = iota
	// EventRelease fires after an entry is back in the available queue.
	EventRelease
)

func (t EventType) String() string {
	switch t {
	case EventAcquire:
		return "acquire"
	case EventRelease:
		return "release"
	default:
		return "unknown"
	}
}

func (t EventType) valid() bool {
	return t == EventAcquire || t == EventRelease
}

// Event describes one state transition of a pool entry. Capacity and
// Acquired are the pool totals after the transition.
type Event struct {
	Type     EventType
	PoolID   string
	Capacity int
	Acquired int
	Entry    Handle
}

// Listener receives pool events. Listeners run synchronously inside the
// fetch or release that triggered them.
type Listener func(Event)

// Subscription identifies a registered listener for later removal.
type Subscription uint64

type subscriber struct {
	id Subscription
	fn Listener
}

// observers is an ordered listener list per event type.
type observers struct {
	next  Subscription
	lists [2][]subscriber
}

func (o *observers) add(t EventType, fn Listener) Subscription {
	o.next++
	o.lists[t] = append(o.lists[t], subscriber{id: o.next, fn: fn})
	return o.next
}

func (o *observers) remove(t EventType, id Subscription) bool {
	list := o.lists[t]
	for i, s := range list {
		if s.id == id {
			// copy so an in-flight dispatch keeps its snapshot intact
			next := make([]subscriber, 0, len(list)-1)
			next = append(next, list[:i]...)
			o.lists[t] = append(next, list[i+1:]...)
			return true
		}
	}
	return false
}

func (o *observers) count(t EventType) int {
	return len(o.lists[t])
}

func (o *observers) emit(ev Event) {
	for _, s := range o.lists[ev.Type] {
		s.fn(ev)
	}
}
