package message

// State is the lifecycle state of a message
type State int

const (
	StateCreated State = iota
	StateRequestPrepared
	StateTransportDispatched
	StateResponseReceived
	StateResponseNormalized
	StateSucceeded
	StateFailed
)

var stateNames = [...]string{
	"created",
	"request-prepared",
	"transport-dispatched",
	"response-received",
	"response-normalized",
	"succeeded",
	"failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// Done returns true once the message has been validated
func (s State) Done() bool {
	return s == StateSucceeded || s == StateFailed
}
