// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/farmacob/cobtool/internal/config"
	"github.com/farmacob/cobtool/internal/letters"
)

// GeneratorProvider returns the letter generator in effect. The server swaps
// generators when the config file changes.
type GeneratorProvider interface {
	Generator() *letters.Generator
}

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Letters GeneratorProvider
	Config  *config.Manager
	Logger  *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// GeneratorFrom extracts the current letter generator from context.
func GeneratorFrom(ctx context.Context) *letters.Generator {
	if s := ServicesFrom(ctx); s != nil && s.Letters != nil {
		return s.Letters.Generator()
	}
	return nil
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
