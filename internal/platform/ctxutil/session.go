package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type sessionKey struct{}

// Session is the authenticated caller, attached by the auth middleware and
// passed explicitly to services that act on behalf of a user.
type Session struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	UserName  string
	Email     string
	Role      string
	Token     string
}

const RoleAdmin = "admin"

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (s *Session) Valid() bool {
	return s != nil && s.UserID != uuid.Nil
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func GetSession(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(sessionKey{}).(*Session); ok {
		return s
	}
	return nil
}
