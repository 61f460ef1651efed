package notification

import "context"

// Guard runs fn only when no blocking notification has accumulated yet.
// An error returned by fn is converted into an Error notification instead of
// propagating, so a service can chain guarded steps and let the boundary
// layer decide the outcome once.
func Guard(ctx context.Context, m *Manager, fn func(ctx context.Context) error) {
	if !m.IsValid() {
		return
	}
	if err := fn(ctx); err != nil {
		m.AddError(err)
	}
}

// Try runs fn and converts a failure into an Error notification. When message
// is non-empty it becomes the notification message and the error its detail;
// otherwise the error is wrapped as-is.
func Try(ctx context.Context, m *Manager, message string, fn func(ctx context.Context) error) {
	err := fn(ctx)
	if err == nil {
		return
	}
	if message == "" {
		m.AddError(err)
		return
	}
	m.Add(NewDetailed(message, Error, err.Error()))
}
