package usecase

import (
	"pgfeedback/internal/feedback/domain/model"
)

// AccessDecision is the outcome of an authorization check.
type AccessDecision string

const (
	// DecisionAllow grants access to the requested surface.
	DecisionAllow AccessDecision = "allow"
	// DecisionRedirectToLogin means the caller must authenticate first.
	DecisionRedirectToLogin AccessDecision = "redirect_to_login"
	// DecisionRedirectToDefault means the caller is authenticated but lacks
	// the role for this surface and should land on the default page instead.
	DecisionRedirectToDefault AccessDecision = "redirect_to_default"
)

// RouteRequirements describes what a surface demands of its caller.
type RouteRequirements struct {
	RequiresAuth  bool
	RequiresAdmin bool
}

// AccessGate decides whether an identity may reach a surface. Authorize is a
// pure function: same identity and requirements, same decision, no side
// effects.
type AccessGate struct{}

// NewAccessGate creates the gate.
func NewAccessGate() *AccessGate {
	return &AccessGate{}
}

// Authorize evaluates the identity against the surface requirements.
// Unauthenticated callers are sent to login before any role check; an admin
// requirement implies an auth requirement even when RequiresAuth is unset.
func (g *AccessGate) Authorize(identity model.Identity, req RouteRequirements) AccessDecision {
	if !req.RequiresAuth && !req.RequiresAdmin {
		return DecisionAllow
	}
	if !identity.Authenticated {
		return DecisionRedirectToLogin
	}
	if req.RequiresAdmin && !identity.IsAdmin() {
		return DecisionRedirectToDefault
	}
	return DecisionAllow
}
