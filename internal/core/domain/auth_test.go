package domain

import (
	"testing"
	"time"
)

func TestAuthContextIsAdmin(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleAdmin, true},
		{RoleMember, false},
		{RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			ctx := &AuthContext{Role: tt.role}
			if ctx.IsAdmin() != tt.expected {
				t.Errorf("expected IsAdmin() = %v for role %s", tt.expected, tt.role)
			}
		})
	}
}

func TestAuthContextProjectAccess(t *testing.T) {
	tests := []struct {
		name      string
		ctx       AuthContext
		project   string
		canAccess bool
		canWrite  bool
	}{
		{"admin any project", AuthContext{Role: RoleAdmin}, "proj-x", true, true},
		{"member listed", AuthContext{Role: RoleMember, Projects: []string{"proj-1"}}, "proj-1", true, true},
		{"member unlisted", AuthContext{Role: RoleMember, Projects: []string{"proj-1"}}, "proj-2", false, false},
		{"viewer listed", AuthContext{Role: RoleViewer, Projects: []string{"proj-1"}}, "proj-1", true, false},
		{"viewer unlisted", AuthContext{Role: RoleViewer}, "proj-1", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.CanAccess(tt.project); got != tt.canAccess {
				t.Errorf("CanAccess(%q) = %v, want %v", tt.project, got, tt.canAccess)
			}
			if got := tt.ctx.CanWrite(tt.project); got != tt.canWrite {
				t.Errorf("CanWrite(%q) = %v, want %v", tt.project, got, tt.canWrite)
			}
		})
	}
}

func TestTokenClaims_ToAuthContext(t *testing.T) {
	now := time.Now()
	claims := &TokenClaims{
		UserID:    "user-123",
		Email:     "test@example.com",
		Role:      RoleMember,
		Projects:  []string{"proj-1", "proj-2"},
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}

	ctx := claims.ToAuthContext()
	if ctx.UserID != "user-123" {
		t.Errorf("expected UserID user-123, got %s", ctx.UserID)
	}
	if ctx.Role != RoleMember {
		t.Errorf("expected Role member, got %s", ctx.Role)
	}
	if len(ctx.Projects) != 2 || !ctx.CanAccess("proj-2") {
		t.Errorf("expected projects to carry over, got %v", ctx.Projects)
	}
}
