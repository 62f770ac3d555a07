package adapter

import "context"

// Severity of a user-facing notice.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notice is one user-facing message. Code carries the API status code when the
// notice originates from a failed horde call, 0 otherwise.
type Notice struct {
	Severity Severity
	Message  string
	Code     int
}

// Notifier is the port for surfacing job outcomes and errors to the user.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}
