package handlers

import (
	"net/http"
)

type ConditionsHandler struct {
	accounts AccountService
}

func NewConditionsHandler(accounts AccountService) *ConditionsHandler {
	return &ConditionsHandler{accounts: accounts}
}

type ConditionsResponse struct {
	Conditions []string `json:"conditions"`
}

// --- GET /conditions ---

func (h *ConditionsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ConditionsResponse{Conditions: h.accounts.Conditions()})
}

// --- GET /health ---

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "conditions-backend",
	})
}
