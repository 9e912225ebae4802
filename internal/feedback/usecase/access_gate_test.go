package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pgfeedback/internal/feedback/domain/model"
)

func TestAccessGate_Authorize(t *testing.T) {
	gate := NewAccessGate()

	resident := model.Identity{Authenticated: true, UID: "u1", Role: model.RoleUser}
	admin := model.Identity{Authenticated: true, UID: "a1", Role: model.RoleAdmin}
	anonymous := model.Anonymous()

	cases := []struct {
		name     string
		identity model.Identity
		req      RouteRequirements
		want     AccessDecision
	}{
		{
			name:     "public surface allows anonymous",
			identity: anonymous,
			req:      RouteRequirements{},
			want:     DecisionAllow,
		},
		{
			name:     "auth surface redirects anonymous to login",
			identity: anonymous,
			req:      RouteRequirements{RequiresAuth: true},
			want:     DecisionRedirectToLogin,
		},
		{
			name:     "auth surface allows resident",
			identity: resident,
			req:      RouteRequirements{RequiresAuth: true},
			want:     DecisionAllow,
		},
		{
			name:     "admin surface redirects resident to default",
			identity: resident,
			req:      RouteRequirements{RequiresAuth: true, RequiresAdmin: true},
			want:     DecisionRedirectToDefault,
		},
		{
			name:     "admin surface allows admin",
			identity: admin,
			req:      RouteRequirements{RequiresAuth: true, RequiresAdmin: true},
			want:     DecisionAllow,
		},
		{
			// Login check comes before the role check.
			name:     "admin surface redirects anonymous to login not default",
			identity: anonymous,
			req:      RouteRequirements{RequiresAuth: true, RequiresAdmin: true},
			want:     DecisionRedirectToLogin,
		},
		{
			name:     "admin requirement implies auth requirement",
			identity: anonymous,
			req:      RouteRequirements{RequiresAdmin: true},
			want:     DecisionRedirectToLogin,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, gate.Authorize(tc.identity, tc.req))
		})
	}
}

func TestAccessGate_AuthorizeIsPure(t *testing.T) {
	gate := NewAccessGate()
	resident := model.Identity{Authenticated: true, UID: "u1", Role: model.RoleUser}
	req := RouteRequirements{RequiresAuth: true}

	first := gate.Authorize(resident, req)
	second := gate.Authorize(resident, req)
	assert.Equal(t, first, second)
}
