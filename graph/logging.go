package graph

// Logger is the small logging surface Graph calls into. Callers that
// don't care can use NewNopLogger; nothing in Graph ever assumes a nil
// Logger. It carries exactly the two levels Graph actually emits: a
// debug-gated section-churn counter and a warning for a degenerate
// search call.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything. It is the
// default a Graph starts with, so embedding one in a hot render loop
// costs nothing unless SetLogger is called.
func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
