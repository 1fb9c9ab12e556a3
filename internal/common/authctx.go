package common

import "context"

type callerKey struct{}

// caller is the authenticated principal behind a request.
type caller struct {
	userID string
	token  string
}

func callerFrom(ctx context.Context) caller {
	c, _ := ctx.Value(callerKey{}).(caller)
	return c
}

// WithUserID records the authenticated cashier on ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	c := callerFrom(ctx)
	c.userID = id
	return context.WithValue(ctx, callerKey{}, c)
}

// UserID returns the cashier recorded by WithUserID.
func UserID(ctx context.Context) (string, bool) {
	c := callerFrom(ctx)
	return c.userID, c.userID != ""
}

// WithAccessToken keeps the caller's bearer token for forwarding to the order service.
func WithAccessToken(ctx context.Context, token string) context.Context {
	c := callerFrom(ctx)
	c.token = token
	return context.WithValue(ctx, callerKey{}, c)
}

// AccessToken returns the bearer token stored by WithAccessToken.
func AccessToken(ctx context.Context) string {
	return callerFrom(ctx).token
}
