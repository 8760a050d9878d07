package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coinladder-api/internal/account"
	"coinladder-api/internal/auth"
)

// Server exposes the single action endpoint plus the operational surface.
type Server struct {
	Accounts *account.Service
	Verifier auth.Verifier

	commands map[string]commandFunc
}

func NewServer(accounts *account.Service, verifier auth.Verifier) *Server {
	s := &Server{
		Accounts: accounts,
		Verifier: verifier,
	}
	s.commands = map[string]commandFunc{
		"ACTIVATE_ACCOUNT":     s.activateAccount,
		"UPGRADE_USER_LEVEL":   s.upgradeUserLevel,
		"UPDATE_PROFILE_INFO":  s.updateProfileInfo,
		"UPDATE_SOCIAL_LINKS":  s.updateSocialLinks,
		"UPDATE_PROFILE_IMAGE": s.updateProfileImage,
	}
	return s
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/server", withCORS(s.requireAuth(http.HandlerFunc(s.handleAction))))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
