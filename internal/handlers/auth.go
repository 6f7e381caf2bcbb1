package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"conditions-backend/internal/service"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type AccountService interface {
	Signup(ctx context.Context, in service.SignupInput) (service.AccountResult, error)
	Login(ctx context.Context, in service.LoginInput) (service.AccountResult, error)
	Conditions() []string
}

type AuthHandler struct {
	accounts AccountService
	log      *zap.Logger
}

func NewAuthHandler(accounts AccountService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		log:      log,
	}
}

// --- Request / Response types ---

type SignupRequest struct {
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Conditions json.RawMessage `json:"conditions"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccountResponse struct {
	Message    string   `json:"message"`
	UID        string   `json:"uid"`
	Email      string   `json:"email"`
	Conditions []string `json:"conditions"`
}

// --- POST /signup ---

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.accounts.Signup(r.Context(), service.SignupInput{
		Email:      req.Email,
		Password:   req.Password,
		Conditions: parseConditions(req.Conditions),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, AccountResponse{
		Message:    "User created successfully",
		UID:        res.UID,
		Email:      res.Email,
		Conditions: res.Conditions,
	})
}

// --- POST /login ---

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	res, err := h.accounts.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	// Actual sign-in happens client-side against the identity provider.
	writeJSON(w, http.StatusOK, AccountResponse{
		Message:    "User found, proceed with client-side login",
		UID:        res.UID,
		Email:      res.Email,
		Conditions: res.Conditions,
	})
}

// --- Helpers ---

// decodeBody treats an empty body as an empty object so that missing
// fields are reported by validation rather than as a decode failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parseConditions accepts only a JSON array. Anything else counts as no
// selection; non-string elements are kept as their JSON text so they are
// reported as invalid tags.
func parseConditions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil && !bytes.Equal(item, []byte("null")) {
			tags = append(tags, s)
			continue
		}
		tags = append(tags, string(item))
	}
	return tags
}
