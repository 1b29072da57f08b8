package ring

// ConnState is the controller's connection lifecycle state. It is mutated
// only by Controller methods.
type ConnState int32

const (
	Disconnected ConnState = iota
	Scanning
	Connecting
	Connected
	Disconnecting
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Scanning:
		return "scanning"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}
