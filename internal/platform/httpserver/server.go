package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	accessguard "chama/contexts/identity-access/access-guard-service"
	guardhttp "chama/contexts/identity-access/access-guard-service/transport/http"
	accountadmin "chama/contexts/identity-access/account-admin-service"
	accounterrors "chama/contexts/identity-access/account-admin-service/domain/errors"
	accounthttp "chama/contexts/identity-access/account-admin-service/transport/http"
	memberdirectory "chama/contexts/identity-access/member-directory-service"
	directoryerrors "chama/contexts/identity-access/member-directory-service/domain/errors"
	directoryhttp "chama/contexts/identity-access/member-directory-service/transport/http"

	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "chama/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	handler   http.Handler
	logger    *slog.Logger
	addr      string
	guard     accessguard.Module
	directory memberdirectory.Module
	accounts  accountadmin.Module
}

func New(
	guard accessguard.Module,
	directory memberdirectory.Module,
	accounts accountadmin.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		guard:     guard,
		directory: directory,
		accounts:  accounts,
	}
	s.registerRoutes()

	// Browser clients call the privileged endpoint cross-origin; preflight
	// OPTIONS must succeed with an empty body before the real request.
	s.handler = cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		MaxAge:         300,
	})(s.mux)
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.handler)
}

// Handler exposes the fully wrapped handler for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/access/v1/evaluate", s.handleGuardEvaluate)

	s.mux.HandleFunc("POST /api/directory/v1/users", s.handleRegisterPrincipal)
	s.mux.HandleFunc("POST /api/directory/v1/groups", s.handleCreateGroup)
	s.mux.HandleFunc("POST /api/directory/v1/groups/{group_id}/members", s.handleEnrollMember)
	s.mux.HandleFunc("POST /api/directory/v1/users/{user_id}/roles", s.handleAssignRole)
	s.mux.HandleFunc("GET /api/directory/v1/users/{user_id}/authority", s.handleAuthority)

	s.mux.HandleFunc("POST /api/admin/v1/users/delete", s.handleAdminDeleteUser)
}

func (s *Server) handleGuardEvaluate(w http.ResponseWriter, r *http.Request) {
	var req guardhttp.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGuardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.guard.Handler.EvaluateHandler(r.Context(), req)
	if err != nil {
		writeGuardError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterPrincipal(w http.ResponseWriter, r *http.Request) {
	var req directoryhttp.RegisterPrincipalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.directory.Handler.RegisterPrincipalHandler(r.Context(), r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req directoryhttp.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.directory.Handler.CreateGroupHandler(r.Context(), r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleEnrollMember(w http.ResponseWriter, r *http.Request) {
	var req directoryhttp.EnrollMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.directory.Handler.EnrollMemberHandler(
		r.Context(),
		r.PathValue("group_id"),
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	adminID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if adminID == "" {
		adminID = strings.TrimSpace(r.Header.Get("X-Admin-Id"))
	}

	var req directoryhttp.AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.directory.Handler.AssignRoleHandler(
		r.Context(),
		r.PathValue("user_id"),
		adminID,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthority(w http.ResponseWriter, r *http.Request) {
	resp, err := s.directory.Handler.AuthorityHandler(
		r.Context(),
		r.PathValue("user_id"),
		r.URL.Query().Get("group_id"),
	)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader == "" {
		writeAdminError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	var req accounthttp.DeleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAdminError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := s.accounts.Handler.DeleteUserHandler(r.Context(), token, req)
	if err != nil {
		s.writeAdminDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeAdminDomainError(w http.ResponseWriter, err error) {
	var deletionErr *accounterrors.DeletionFailedError
	switch {
	case errors.Is(err, accounterrors.ErrMissingAuthorization):
		writeAdminError(w, http.StatusUnauthorized, "Missing authorization header")
	case errors.Is(err, accounterrors.ErrInvalidToken):
		writeAdminError(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, accounterrors.ErrUserIDRequired):
		writeAdminError(w, http.StatusBadRequest, "userId is required")
	case errors.Is(err, accounterrors.ErrAdminPrivilegesRequired):
		writeAdminError(w, http.StatusForbidden, "Unauthorized: requires admin privileges")
	case errors.As(err, &deletionErr):
		writeAdminError(w, http.StatusInternalServerError, deletionErr.ProviderMessage())
	default:
		// Details are logged server-side only; the caller gets a generic body.
		s.logger.Error("admin delete user unexpected failure",
			"event", "http_admin_delete_unexpected",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeAdminError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeDirectoryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directoryerrors.ErrInvalidRequest):
		writeDirectoryError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, directoryerrors.ErrUnknownRole),
		errors.Is(err, directoryerrors.ErrUnknownMembershipStatus):
		writeDirectoryError(w, http.StatusUnprocessableEntity, "invalid_value", err.Error())
	case errors.Is(err, directoryerrors.ErrPrincipalNotFound),
		errors.Is(err, directoryerrors.ErrGroupNotFound):
		writeDirectoryError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, directoryerrors.ErrPrincipalAlreadyExists),
		errors.Is(err, directoryerrors.ErrGroupAlreadyExists),
		errors.Is(err, directoryerrors.ErrIdempotencyConflict):
		writeDirectoryError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, directoryerrors.ErrGroupDisabled):
		writeDirectoryError(w, http.StatusConflict, "group_disabled", err.Error())
	case errors.Is(err, directoryerrors.ErrIdempotencyKeyRequired):
		writeDirectoryError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	default:
		writeDirectoryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGuardError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, guardhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeDirectoryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, directoryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAdminError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, accounthttp.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
