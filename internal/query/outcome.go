package query

// Messages shown to the user instead of the underlying failure.
const (
	MessageApplicationError = "Sorry, there was an error processing your question."
	MessageTransportError   = "Sorry, there was an error connecting to the server."
)

type OutcomeKind int

const (
	Success OutcomeKind = iota
	ApplicationError
	TransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case ApplicationError:
		return "application_error"
	case TransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one query.
type Outcome struct {
	// Seq is the sequence number Send returned for the query. It is zero for outcomes of synchronous Do calls.
	Seq  uint64
	Kind OutcomeKind
	// Text is the generated answer for Success and the service's error message for ApplicationError.
	Text string
	// Err is the diagnostic cause of a failure. It is never shown to the user.
	Err error
}

// DisplayText is what the user sees for the outcome.
func (o Outcome) DisplayText() string {
	switch o.Kind {
	case Success:
		return o.Text
	case ApplicationError:
		return MessageApplicationError
	default:
		return MessageTransportError
	}
}
