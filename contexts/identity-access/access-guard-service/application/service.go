package application

import (
	"chama/contexts/identity-access/access-guard-service/domain"
)

const (
	defaultLoginPath        = "/login"
	defaultUnauthorizedPath = "/unauthorized"
	defaultMemberHomePath   = "/member/home"
)

// Service evaluates guard decisions. It holds only redirect targets; the
// evaluation itself is a pure function of (state, requirement).
type Service struct {
	LoginPath        string
	UnauthorizedPath string
	MemberHomePath   string
}

// Evaluate applies the decision steps in strict order; the first match wins.
// Ordering matters: deciding before identity resolution finishes would flash
// a login redirect at an already-authenticated principal.
func (s Service) Evaluate(state domain.AuthState, req domain.Requirement, requestedPath string) domain.Decision {
	if state.Loading {
		return domain.Decision{Outcome: domain.OutcomePending}
	}

	if !state.Authenticated || state.UserID == "" {
		return domain.Decision{
			Outcome:    domain.OutcomeRedirectLogin,
			RedirectTo: s.loginPath(),
			From:       requestedPath,
		}
	}

	if req.RequiredRole != "" && !state.HasRole(req.RequiredRole) && !state.IsSuperAdmin {
		return domain.Decision{
			Outcome:    domain.OutcomeRedirectUnauthorized,
			RedirectTo: s.unauthorizedPath(),
		}
	}

	// Valid member, wrong privilege level: soft fallback to the member
	// landing page rather than the generic unauthorized page.
	if req.RequireGroupAdmin && !state.IsGroupAdmin && !state.IsSuperAdmin {
		return domain.Decision{
			Outcome:    domain.OutcomeRedirectMemberHome,
			RedirectTo: s.memberHomePath(),
		}
	}

	return domain.Decision{Outcome: domain.OutcomePermit}
}

func (s Service) loginPath() string {
	if s.LoginPath == "" {
		return defaultLoginPath
	}
	return s.LoginPath
}

func (s Service) unauthorizedPath() string {
	if s.UnauthorizedPath == "" {
		return defaultUnauthorizedPath
	}
	return s.UnauthorizedPath
}

func (s Service) memberHomePath() string {
	if s.MemberHomePath == "" {
		return defaultMemberHomePath
	}
	return s.MemberHomePath
}
