package ring

import "fmt"

// FailureKind discriminates connection-level failures.
type FailureKind string

const (
	// ConnectFailed means both connect attempts were exhausted.
	ConnectFailed FailureKind = "connect_failed"
	// NotConnected means the transport reported success but the session is
	// not actually usable, or an operation required a live session.
	NotConnected FailureKind = "not_connected"
	// Busy means the controller was not in a state that allows the
	// requested transition.
	Busy FailureKind = "busy"
)

// ConnError is any connection-related failure surfaced by the controller.
type ConnError struct {
	Kind FailureKind
	Msg  string
	Err  error
}

func (e *ConnError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConnError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is compare ConnError values by Kind.
func (e *ConnError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrConnectFailed = &ConnError{Kind: ConnectFailed}
	ErrNotConnected  = &ConnError{Kind: NotConnected}
	ErrBusy          = &ConnError{Kind: Busy}
)
