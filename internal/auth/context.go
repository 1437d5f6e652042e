package auth

import "context"

// Principal carries authenticated caller metadata derived from the API key.
// NOTE: Do not place secrets or raw API keys here.
type Principal struct {
	APIKeyID string
}

type principalKeyType struct{}

var principalKey = principalKeyType{}

// WithPrincipal attaches the principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal retrieves the principal from the context (nil if absent).
func GetPrincipal(ctx context.Context) *Principal {
	v := ctx.Value(principalKey)
	if v == nil {
		return nil
	}
	p, _ := v.(*Principal)
	return p
}
