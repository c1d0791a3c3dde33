package domain

// Role defines caller permission level
type Role string

const (
	RoleAdmin  Role = "admin"  // Any project
	RoleMember Role = "member" // Projects listed in the token
	RoleViewer Role = "viewer" // Read-only access to listed projects
)

// AuthContext contains authenticated caller info for request context.
// Tokens are issued by an external identity service.
type AuthContext struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
	Projects []string `json:"projects"`
}

// IsAdmin checks if the authenticated caller is an admin
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the caller may read the project
func (a *AuthContext) CanAccess(projectID string) bool {
	if a.IsAdmin() {
		return true
	}
	for _, p := range a.Projects {
		if p == projectID {
			return true
		}
	}
	return false
}

// CanWrite reports whether the caller may mutate the project
func (a *AuthContext) CanWrite(projectID string) bool {
	return a.Role != RoleViewer && a.CanAccess(projectID)
}

// TokenClaims are the claims carried by API bearer tokens
type TokenClaims struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	Role      Role     `json:"role"`
	Projects  []string `json:"projects"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
}

// ToAuthContext converts validated claims into a request auth context
func (c *TokenClaims) ToAuthContext() *AuthContext {
	return &AuthContext{
		UserID:   c.UserID,
		Email:    c.Email,
		Role:     c.Role,
		Projects: c.Projects,
	}
}
