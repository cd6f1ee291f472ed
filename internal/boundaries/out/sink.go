package out

// EventSink pushes one named event to the client bound to a session.
// Implementations must be safe for concurrent use and must never block
// the caller indefinitely; a slow or gone client drops events instead.
type EventSink interface {
	Emit(event string, data any)
}
