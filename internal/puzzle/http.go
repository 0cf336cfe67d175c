package puzzle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/puzzlewager/puzzlewager/internal/auth"
	"github.com/puzzlewager/puzzlewager/internal/chain"
	httperrors "github.com/puzzlewager/puzzlewager/pkg/http/errors"
)

// HTTPHandlers serves the puzzle session surface. Demo requests are
// anonymous; live requests carry the viewer's wallet address in their
// bearer token, never in the body.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers constructs the handler set.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{svc: svc, logger: logger.With().Str("component", "puzzle_http").Logger()}
}

type sessionRequest struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess,omitempty"`
	IsDemo bool   `json:"isDemo,omitempty"`
}

// GetOrCreate handles POST /v1/puzzle/get-or-create.
func (h *HTTPHandlers) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	req, id, viewer, ok := h.accept(w, r, false)
	if !ok {
		return
	}
	sess, err := h.svc.GetOrCreate(r.Context(), id, viewer, req.IsDemo)
	if err != nil {
		h.respondServiceError(w, r, err, "get-or-create")
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// SubmitGuess handles POST /v1/puzzle/submit-guess.
func (h *HTTPHandlers) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	req, id, viewer, ok := h.accept(w, r, false)
	if !ok {
		return
	}
	if req.Guess == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "guess is required", "guess")
		return
	}
	sess, err := h.svc.SubmitGuess(r.Context(), id, viewer, req.Guess, req.IsDemo)
	if err != nil {
		h.respondServiceError(w, r, err, "submit-guess")
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// ResetGame handles POST /v1/puzzle/reset-game.
func (h *HTTPHandlers) ResetGame(w http.ResponseWriter, r *http.Request) {
	req, id, viewer, ok := h.accept(w, r, false)
	if !ok {
		return
	}
	sess, err := h.svc.Reset(r.Context(), id, viewer, req.IsDemo)
	if err != nil {
		if errors.Is(err, ErrResetNotAllowed) {
			httperrors.RespondError(w, http.StatusForbidden, httperrors.ErrCodeResetNotAllowed, "game not resetable")
			return
		}
		h.respondServiceError(w, r, err, "reset-game")
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// VerifySolution handles POST /v1/puzzle/verify-solution. Always
// authenticated: the attestation binds the caller's own address.
func (h *HTTPHandlers) VerifySolution(w http.ResponseWriter, r *http.Request) {
	_, id, viewer, ok := h.accept(w, r, true)
	if !ok {
		return
	}
	result, err := h.svc.Verify(r.Context(), id, viewer)
	if err != nil {
		h.respondServiceError(w, r, err, "verify-solution")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// accept decodes the request body, parses the match id and resolves the
// viewer. Live requests without a valid token are rejected; demo requests
// pass with a zero viewer unless requireAuth forces a token.
func (h *HTTPHandlers) accept(w http.ResponseWriter, r *http.Request, requireAuth bool) (sessionRequest, chain.MatchID, chain.Address, bool) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest, "malformed request body")
		return req, chain.MatchID{}, chain.Address{}, false
	}
	if req.GameID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "gameId is required", "gameId")
		return req, chain.MatchID{}, chain.Address{}, false
	}
	id, err := chain.ParseMatchID(req.GameID)
	if err != nil {
		httperrors.RespondError(w, http.StatusBadRequest, httperrors.ErrCodeInvalidMatchID, "malformed match id")
		return req, chain.MatchID{}, chain.Address{}, false
	}

	viewer, authed := auth.AddressFromContext(r.Context())
	if (requireAuth || !req.IsDemo) && !authed {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "wallet session required")
		return req, chain.MatchID{}, chain.Address{}, false
	}
	return req, id, viewer, true
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "puzzle session not found")
	case errors.Is(err, ErrNotParticipant):
		httperrors.RespondError(w, http.StatusForbidden, httperrors.ErrCodeUnauthorized, "not a match participant")
	case errors.Is(err, ErrLockBusy):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeSessionBusy, "operation in flight, re-fetch session")
	default:
		h.logger.Error().Err(err).Str("op", op).Msg("puzzle request failed")
		httperrors.RespondInternalError(w, "puzzle operation failed")
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
