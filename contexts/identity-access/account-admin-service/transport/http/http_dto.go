package httptransport

// DeleteUserRequest is the public wire contract for privileged principal
// deletion. Field casing is part of the published API.
type DeleteUserRequest struct {
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
}

// DeleteUserResponse is returned on successful deletion.
type DeleteUserResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the public error shape for the privileged endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
