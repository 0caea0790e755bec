package utils

import (
	"context"
	"errors"

	"github.com/investalk/backend/internal/models"
)

// Key type for context values
type contextKey string

const principalKey contextKey = "principal"

// GetPrincipalFromContext extracts the authenticated principal from the context
func GetPrincipalFromContext(ctx context.Context) (models.Principal, error) {
	principal, ok := ctx.Value(principalKey).(models.Principal)
	if !ok {
		return models.Principal{}, errors.New("principal not found in context")
	}
	return principal, nil
}

// SetPrincipalToContext adds the authenticated principal to the context
func SetPrincipalToContext(ctx context.Context, principal models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}
