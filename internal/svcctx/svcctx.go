// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/labelwise/labelwise/internal/assess"
	"github.com/labelwise/labelwise/internal/auth"
	"github.com/labelwise/labelwise/internal/defra"
	"github.com/labelwise/labelwise/internal/extract"
	"github.com/labelwise/labelwise/internal/home"
	"github.com/labelwise/labelwise/internal/llmcall"
	"github.com/labelwise/labelwise/internal/profiles"
	"github.com/labelwise/labelwise/internal/prompts"
	"github.com/labelwise/labelwise/internal/providers"
	"github.com/labelwise/labelwise/internal/scans"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	DefraClient  *defra.Client
	Registry     *providers.Registry
	Resolver     *prompts.Resolver
	Assess       *assess.Service
	Extract      *extract.Service
	ScanStore    *scans.Store
	ProfileStore *profiles.Store
	LLMCallStore *llmcall.Store
	Verifier     *auth.Verifier
	Logger       *slog.Logger
	Home         *home.Dir
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

// DefraClientFrom extracts the DefraDB client from context.
func DefraClientFrom(ctx context.Context) *defra.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.DefraClient
	}
	return nil
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// ResolverFrom extracts the prompt resolver from context.
func ResolverFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Resolver
	}
	return nil
}

// AssessFrom extracts the assessment service from context.
func AssessFrom(ctx context.Context) *assess.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Assess
	}
	return nil
}

// ExtractFrom extracts the label extraction service from context.
func ExtractFrom(ctx context.Context) *extract.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Extract
	}
	return nil
}

// ScanStoreFrom extracts the scan record store from context.
func ScanStoreFrom(ctx context.Context) *scans.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.ScanStore
	}
	return nil
}

// ProfileStoreFrom extracts the health profile store from context.
func ProfileStoreFrom(ctx context.Context) *profiles.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.ProfileStore
	}
	return nil
}

// LLMCallStoreFrom extracts the LLM call store from context.
func LLMCallStoreFrom(ctx context.Context) *llmcall.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.LLMCallStore
	}
	return nil
}

// VerifierFrom extracts the token verifier from context.
func VerifierFrom(ctx context.Context) *auth.Verifier {
	if s := ServicesFrom(ctx); s != nil {
		return s.Verifier
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

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
