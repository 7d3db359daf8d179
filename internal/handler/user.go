package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vasiliy-maslov/pedido-service/internal/auth"
	"github.com/vasiliy-maslov/pedido-service/internal/user"
)

// UserHandler handles user registration and login.
type UserHandler struct {
	svc    user.Service
	tokens *auth.Manager
}

func NewUserHandler(svc user.Service, tokens *auth.Manager) *UserHandler {
	return &UserHandler{svc: svc, tokens: tokens}
}

// CreateUser handles POST /user.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto createUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.svc.CreateUser(r.Context(), dto.Username, dto.Password, user.Role(dto.Role)); err != nil {
		respondWithDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Login handles POST /auth/login. Successful logins get a signed JWT
// whose scope claim carries the user's role.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var dto loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Authenticate(r.Context(), dto.Username, dto.Password)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	token, expiresIn, err := h.tokens.GenerateToken(u.ID, u.Role.String())
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponseDTO{AccessToken: token, ExpiresIn: expiresIn})
}
