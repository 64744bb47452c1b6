package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-booking-auth/internal/errors"
	"github.com/jrsteele09/go-booking-auth/link"
	"github.com/jrsteele09/go-booking-auth/session"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 16

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// LoginHandler exchanges {email, password} for {token, user}
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req session.LoginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid login request")
			return
		}

		result, err := s.authn.Authenticate(r.Context(), req)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrAuthRejected) {
				writeError(w, http.StatusUnauthorized, session.MessageInvalidCredentials)
				return
			}
			log.Err(err).Msg("login failed")
			writeError(w, http.StatusServiceUnavailable, session.MessageNetworkFailure)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type createLinkRequest struct {
	EntityID string `json:"entityId"`
}

type createLinkResponse struct {
	*link.FormToken
	URL string `json:"url"`
}

// CreateLinkHandler mints a public form link for an entity (POST /api/links)
func (s *Server) CreateLinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid link request")
			return
		}

		formToken, err := s.links.GenerateFormToken(req.EntityID)
		if apperrors.Is(err, apperrors.ErrInvalidEntityID) {
			writeError(w, http.StatusBadRequest, "entityId is required")
			return
		}
		if err != nil {
			log.Err(err).Msg("failed to generate link token")
			writeError(w, http.StatusInternalServerError, "failed to generate link")
			return
		}

		event := log.Info().Str("entity_id", formToken.EntityID)
		if identity, ok := IdentityFromContext(r.Context()); ok {
			event = event.Str("user_id", identity.UserID)
		}
		event.Msg("link generated")

		writeJSON(w, http.StatusCreated, createLinkResponse{
			FormToken: formToken,
			URL:       s.baseURL + RouteLinks + formToken.Token,
		})
	}
}

// ResolveLinkHandler resolves an anonymous link (GET /links/{token}). Every failure is
// a 404 with the same generic message.
func (s *Server) ResolveLinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entity, err := s.resolver.Resolve(r.Context(), r.PathValue("token"))
		if err != nil {
			writeError(w, http.StatusNotFound, apperrors.ErrLinkUnavailable.Error())
			return
		}
		writeJSON(w, http.StatusOK, entity)
	}
}
