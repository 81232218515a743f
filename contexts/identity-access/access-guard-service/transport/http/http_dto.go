package httptransport

// AuthStateDTO mirrors the session resolver snapshot supplied by the caller.
type AuthStateDTO struct {
	Loading       bool     `json:"loading"`
	Authenticated bool     `json:"authenticated"`
	UserID        string   `json:"user_id,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	IsGroupAdmin  bool     `json:"is_group_admin"`
	IsSuperAdmin  bool     `json:"is_super_admin"`
}

// RequirementDTO declares the protected view requirements.
type RequirementDTO struct {
	RequiredRole      string `json:"required_role,omitempty"`
	RequireGroupAdmin bool   `json:"require_group_admin,omitempty"`
}

// EvaluateRequest is the request body for guard evaluation.
type EvaluateRequest struct {
	AuthState     AuthStateDTO   `json:"auth_state"`
	Requirement   RequirementDTO `json:"requirement"`
	RequestedPath string         `json:"requested_path,omitempty"`
}

// EvaluateResponse is the guard verdict returned to the UI layer.
type EvaluateResponse struct {
	Outcome    string `json:"outcome"`
	RedirectTo string `json:"redirect_to,omitempty"`
	From       string `json:"from,omitempty"`
}

// ErrorResponse is the module error shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
