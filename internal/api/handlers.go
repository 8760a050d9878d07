package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"coinladder-api/internal/account"
	"coinladder-api/internal/metrics"
)

type actionRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// commandFunc handles one action. Each command decodes and validates its
// own payload schema.
type commandFunc func(ctx context.Context, uid string, data json.RawMessage) (string, error)

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	uid := identityFrom(r.Context())

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "No action specified.")
		return
	}

	reqID := uuid.New().String()
	log.Printf("[%s] Action received: '%s' for user %s", reqID, req.Action, uid)

	cmd, ok := s.commands[req.Action]
	if !ok {
		// The action string is caller-controlled; unknown actions share
		// one label to keep the metric's cardinality bounded.
		metrics.Actions.WithLabelValues("unknown", "rejected").Inc()
		writeError(w, http.StatusBadRequest, "Invalid action specified.")
		return
	}

	message, err := cmd(r.Context(), uid, req.Data)
	if err != nil {
		metrics.Actions.WithLabelValues(req.Action, "failed").Inc()
		log.Printf("[%s] FAILURE ('%s'): user %s: %v", reqID, req.Action, uid, err)
		status, reason := clientFailure(err)
		writeError(w, status, reason)
		return
	}

	metrics.Actions.WithLabelValues(req.Action, "ok").Inc()
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: message})
}

type activatePayload struct {
	Level int `json:"level"`
}

type upgradePayload struct {
	TargetLevel int `json:"targetLevel"`
}

type profileInfoPayload struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

type socialLinksPayload struct {
	FacebookLink string `json:"facebookLink"`
	LinkedInLink string `json:"linkedInLink"`
}

type profileImagePayload struct {
	ProfileImageURL *string `json:"profileImageUrl"`
	CoverImageURL   *string `json:"coverImageUrl"`
}

func (s *Server) activateAccount(ctx context.Context, uid string, data json.RawMessage) (string, error) {
	var p activatePayload
	if err := decodeData(data, &p); err != nil {
		return "", err
	}
	if err := s.Accounts.Activate(ctx, uid, p.Level); err != nil {
		return "", err
	}
	return "Account activated successfully!", nil
}

func (s *Server) upgradeUserLevel(ctx context.Context, uid string, data json.RawMessage) (string, error) {
	var p upgradePayload
	if err := decodeData(data, &p); err != nil {
		return "", err
	}
	if err := s.Accounts.Upgrade(ctx, uid, p.TargetLevel); err != nil {
		return "", err
	}
	return "Level upgraded successfully!", nil
}

func (s *Server) updateProfileInfo(ctx context.Context, uid string, data json.RawMessage) (string, error) {
	var p profileInfoPayload
	if err := decodeData(data, &p); err != nil {
		return "", err
	}
	if err := s.Accounts.UpdateProfileInfo(ctx, uid, p.Name, p.Bio); err != nil {
		return "", err
	}
	return "Profile information updated.", nil
}

func (s *Server) updateSocialLinks(ctx context.Context, uid string, data json.RawMessage) (string, error) {
	var p socialLinksPayload
	if err := decodeData(data, &p); err != nil {
		return "", err
	}
	if err := s.Accounts.UpdateSocialLinks(ctx, uid, p.FacebookLink, p.LinkedInLink); err != nil {
		return "", err
	}
	return "Social links updated.", nil
}

func (s *Server) updateProfileImage(ctx context.Context, uid string, data json.RawMessage) (string, error) {
	var p profileImagePayload
	if err := decodeData(data, &p); err != nil {
		return "", err
	}
	if err := s.Accounts.UpdateProfileImages(ctx, uid, p.ProfileImageURL, p.CoverImageURL); err != nil {
		return "", err
	}
	return "Image updated successfully.", nil
}

// decodeData enforces each command's declared payload schema; unknown
// fields are rejected.
func decodeData(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &account.ValidationError{Reason: "Invalid request data."}
	}
	return nil
}

// clientFailure maps business-rule failures to a 400 with their reason;
// everything else stays internal.
func clientFailure(err error) (int, string) {
	if account.IsClientError(err) {
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error."
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, apiResponse{Success: false, Error: reason})
}
