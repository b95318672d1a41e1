package services

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/lborres/pinto/core"
)

// BaseEndpoints returns the framework-agnostic route table for the auth API.
// Paths are relative to the configured base path; adapters attach handlers
// by OperationID.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/register",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID:   "register",
				Description:   "Create an unverified account and issue an email verification token",
				SuccessStatus: http.StatusCreated,
			},
		},
		{
			Path:   "/login",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID:   "login",
				Description:   "Authenticate with email and password, set the session cookie and return a bearer token",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:   "/verify-email",
			Method: http.MethodGet,
			Metadata: core.EndpointMetadata{
				OperationID:   "verifyEmail",
				Description:   "Consume an email verification token",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:   "/resend-verification",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID:   "resendVerification",
				Description:   "Issue a fresh verification token for an unverified account",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:   "/forgot-password",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID:   "forgotPassword",
				Description:   "Request a password reset token; the answer never reveals whether the email exists",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:   "/reset-password",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID:   "resetPassword",
				Description:   "Set a new password using a live reset token",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:   "/logout",
			Method: http.MethodGet,
			Metadata: core.EndpointMetadata{
				OperationID:   "logout",
				Description:   "Destroy the current session and clear the cookie",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/me",
			Method:    http.MethodGet,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   "me",
				Description:   "Return the authenticated user",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:      "/profile",
			Method:    http.MethodPut,
			Protected: true,
			Metadata: core.EndpointMetadata{
				OperationID:   "updateProfile",
				Description:   "Update the authenticated user's name or username",
				SuccessStatus: http.StatusOK,
			},
		},
		{
			Path:   "/validate-token",
			Method: http.MethodPost,
			Metadata: core.EndpointMetadata{
				OperationID:   "validateToken",
				Description:   "Check a bearer token's signature and expiry",
				SuccessStatus: http.StatusOK,
			},
		},
	}
}

// EndpointRegistry holds endpoints keyed by "METHOD:PATH" and rejects
// duplicates.
type EndpointRegistry struct {
	endpoints map[string]*core.Endpoint
}

var _ core.EndpointProvider = (*EndpointRegistry)(nil)

// NewEndpointRegistry creates a registry with the base endpoints registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	for _, ep := range BaseEndpoints() {
		// base endpoints are unique, this cannot fail
		_ = reg.register(ep)
	}

	return reg
}

func key(ep core.Endpoint) string {
	return fmt.Sprintf("%s:%s", ep.Method, ep.Path)
}

func (r *EndpointRegistry) register(ep core.Endpoint) error {
	k := key(ep)
	if _, exists := r.endpoints[k]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}
	r.endpoints[k] = &ep
	return nil
}

// Register adds extra endpoints. The batch is rejected as a whole when any
// entry collides with an existing endpoint or with another entry.
func (r *EndpointRegistry) Register(endpoints ...core.Endpoint) error {
	seen := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		k := key(ep)
		if _, exists := r.endpoints[k]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
		}
		if seen[k] {
			return fmt.Errorf("duplicate endpoint in batch: %s %s", ep.Method, ep.Path)
		}
		seen[k] = true
	}

	for _, ep := range endpoints {
		_ = r.register(ep)
	}
	return nil
}

// Endpoints returns every registered endpoint ordered by path, then method.
func (r *EndpointRegistry) Endpoints() []*core.Endpoint {
	result := make([]*core.Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		result = append(result, ep)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}
