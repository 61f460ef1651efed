// Package audit carries the request-scoped identity used to stamp audit
// columns at commit time. The info is placed into the request context by
// middleware and read back by the repository, so there is no hidden global
// accessor: a test builds the same context value directly.
package audit

import (
	"context"
	"time"

	"github.com/simp-lee/crudbase/internal/domain"
)

// Info identifies who is performing the current unit of work.
type Info struct {
	IP        string
	UserAgent string
	Email     string
}

type contextKey struct{}

// WithContext returns a context carrying the given audit info.
func WithContext(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// FromContext extracts the audit info from ctx. A context without audit info
// yields the zero Info, which stamps empty strings.
func FromContext(ctx context.Context) Info {
	info, _ := ctx.Value(contextKey{}).(Info)
	return info
}

// Stamp writes the audit columns on an entity about to be flushed. Editor
// fields are set on every flush; creator fields and CreatedAt only when the
// entity is newly added.
func Stamp(e *domain.Entity, info Info, created bool, now time.Time) {
	e.UpdatedAt = now
	e.EditorIP = info.IP
	e.EditorUserAgent = info.UserAgent
	e.EditorEmail = info.Email

	if created {
		e.CreatedAt = now
		e.CreatorIP = info.IP
		e.CreatorUserAgent = info.UserAgent
		e.CreatorEmail = info.Email
	}
}
