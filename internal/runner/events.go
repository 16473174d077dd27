package runner

// Status is the progress state reported for a fixture or a case.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusIgnored Status = "ignored"
)

// Event reports progress for a case, or for a whole fixture when
// Subcommand is empty.
type Event struct {
	File       string
	Subcommand string
	Status     Status
}

// EventSink consumes progress events.
type EventSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent implements EventSink.
func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func statusFor(o Outcome) Status {
	switch o {
	case OutcomePassed:
		return StatusPassed
	case OutcomeIgnored:
		return StatusIgnored
	default:
		return StatusFailed
	}
}
