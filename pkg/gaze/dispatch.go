package gaze

// Handler receives a gaze point. Returning true asks the engine to end the
// session, for slots that observe abort.
type Handler func(p Point) (abort bool)

// Slot identifies one of the four handler positions.
type Slot int

const (
	SlotGaze Slot = iota
	SlotError
	SlotStill
	SlotExit

	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotGaze:
		return "gaze"
	case SlotError:
		return "error"
	case SlotStill:
		return "still"
	case SlotExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ObservesAbort reports whether the slot's result may end the session.
// The exit handler is a terminal notification and never does.
func (s Slot) ObservesAbort() bool {
	return s != SlotExit
}

// Callbacks holds the optional handlers of one session. A nil field is an
// absent slot.
type Callbacks struct {
	OnGaze  Handler
	OnError Handler
	OnStill Handler
	OnExit  Handler
}

// Handler returns the handler in slot, or nil when the slot is absent.
func (c Callbacks) Handler(slot Slot) Handler {
	switch slot {
	case SlotGaze:
		return c.OnGaze
	case SlotError:
		return c.OnError
	case SlotStill:
		return c.OnStill
	case SlotExit:
		return c.OnExit
	default:
		return nil
	}
}

// Has reports whether slot holds a handler.
func (c Callbacks) Has(slot Slot) bool {
	return c.Handler(slot) != nil
}

// Empty reports whether every slot is absent.
func (c Callbacks) Empty() bool {
	for slot := SlotGaze; slot < slotCount; slot++ {
		if c.Has(slot) {
			return false
		}
	}
	return true
}

// Dispatcher invokes handlers and interprets their results.
type Dispatcher struct {
	callbacks Callbacks
	counts    [slotCount]int
}

// NewDispatcher creates a dispatcher for callbacks.
func NewDispatcher(callbacks Callbacks) *Dispatcher {
	return &Dispatcher{callbacks: callbacks}
}

// Dispatch invokes the handler in slot with p and returns the new abort
// flag. An absent handler leaves aborted unchanged. When observe is false
// the handler's result is discarded.
func (d *Dispatcher) Dispatch(slot Slot, p Point, aborted, observe bool) bool {
	h := d.callbacks.Handler(slot)
	if h == nil {
		return aborted
	}
	d.counts[slot]++

	result := h(p)
	if observe {
		return result
	}
	return aborted
}

// Count returns how many times the handler in slot was invoked.
func (d *Dispatcher) Count(slot Slot) int {
	if slot < 0 || slot >= slotCount {
		return 0
	}
	return d.counts[slot]
}
