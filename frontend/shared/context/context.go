package context

import (
	"context"

	"logistica/models"
)

type sessionKey struct{}

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// Actor names the signed-in user for records that store who did something.
func Actor(ctx context.Context) (userID int64, username string) {
	s, ok := GetSessionFromContext(ctx)
	if !ok {
		return 0, ""
	}
	return s.UserID, s.User.Username
}
