package strategy

// Signal is the per-step marker emitted by the generator. Only entries are
// nonzero; exits and steps that keep a position open both read as Flat.
type Signal int8

const (
	ShortSpread Signal = -1 // short asset A, long asset B
	Flat        Signal = 0
	LongSpread  Signal = 1 // long asset A, short asset B
)

func (s Signal) String() string {
	switch s {
	case LongSpread:
		return "long_spread"
	case ShortSpread:
		return "short_spread"
	default:
		return "flat"
	}
}

// EventKind tags what happened at a step.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventEnter
	EventExit
)

// Event is the explicit form of a generator step. Side is set for entries.
type Event struct {
	Kind EventKind
	Side Signal
}

// Signal projects the event onto the external 0/+1/-1 contract.
func (e Event) Signal() Signal {
	if e.Kind == EventEnter {
		return e.Side
	}
	return Flat
}

// GenerateEvents scans target with a flat/long/short state machine:
// from flat, a value below Lower enters long and above Upper enters short;
// a long exits once the value rises above Mean, a short once it falls below.
func GenerateEvents(b Band, target []float64) []Event {
	events := make([]Event, len(target))
	position := Flat

	for i, v := range target {
		switch position {
		case Flat:
			if v < b.Lower {
				events[i] = Event{Kind: EventEnter, Side: LongSpread}
				position = LongSpread
			} else if v > b.Upper {
				events[i] = Event{Kind: EventEnter, Side: ShortSpread}
				position = ShortSpread
			}
		case LongSpread:
			if v > b.Mean {
				events[i] = Event{Kind: EventExit}
				position = Flat
			}
		case ShortSpread:
			if v < b.Mean {
				events[i] = Event{Kind: EventExit}
				position = Flat
			}
		}
	}

	return events
}

// Generate returns one Signal per target value.
func Generate(b Band, target []float64) []Signal {
	events := GenerateEvents(b, target)
	signals := make([]Signal, len(events))
	for i, e := range events {
		signals[i] = e.Signal()
	}
	return signals
}

// GenerateSignals estimates a band on test and applies it to target.
func GenerateSignals(test, target []float64, alpha float64) []Signal {
	return Generate(EstimateBand(test, alpha), target)
}
