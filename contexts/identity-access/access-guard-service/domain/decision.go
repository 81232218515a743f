package domain

// Outcome enumerates the terminal results of a guard evaluation.
type Outcome string

const (
	OutcomePending              Outcome = "pending"
	OutcomeRedirectLogin        Outcome = "redirect_login"
	OutcomeRedirectUnauthorized Outcome = "redirect_unauthorized"
	OutcomeRedirectMemberHome   Outcome = "redirect_member_home"
	OutcomePermit               Outcome = "permit"
)

// AuthState is the resolved authorization snapshot for the acting principal.
// Fields are values supplied by the session resolver; the guard never
// recomputes them.
type AuthState struct {
	Loading       bool
	Authenticated bool
	UserID        string
	Roles         []string
	IsGroupAdmin  bool
	IsSuperAdmin  bool
}

// Requirement declares what a protected view demands.
type Requirement struct {
	RequiredRole      string
	RequireGroupAdmin bool
}

// Decision is the guard verdict. RedirectTo is set for redirect outcomes;
// From preserves the originally requested path on login redirects so the
// caller can be returned there after authentication.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
	From       string
}

// HasRole reports whether the snapshot carries the named role.
func (s AuthState) HasRole(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}
