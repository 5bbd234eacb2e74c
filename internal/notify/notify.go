// Package notify defines the notification channel through which the
// synchronization layer surfaces classified transport failures. The layer
// has no UI of its own; presentational components plug in whatever
// toast-equivalent they use by implementing Notifier.
//
// The notifier is an injected dependency, never a package-level singleton,
// so tests can substitute a spy and assert the one-notification-per-failure
// contract.
package notify

import "github.com/rs/zerolog"

// Severity grades a notification for presentation purposes.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier receives (severity, message, detail) tuples. Message is a short
// headline safe to show to users; detail carries supporting context such as
// the server-provided error text.
//
// Implementations must be safe for concurrent use: the poller goroutine and
// user-initiated calls share one notifier.
type Notifier interface {
	Notify(severity Severity, message, detail string)
}

// LogNotifier is the default Notifier: it writes notifications to a zerolog
// logger at a level matching the severity. Useful as a fallback when the
// embedding UI has not installed its own channel, and in development.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier constructs a LogNotifier around the given logger.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification at info/warn/error depending on severity.
func (n *LogNotifier) Notify(severity Severity, message, detail string) {
	var ev *zerolog.Event
	switch severity {
	case SeverityError:
		ev = n.log.Error()
	case SeverityWarning:
		ev = n.log.Warn()
	default:
		ev = n.log.Info()
	}
	ev.Str("detail", detail).Msg(message)
}
