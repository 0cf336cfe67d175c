package leaderboard

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/puzzlewager/puzzlewager/pkg/http/errors"
)

// Handler serves GET /v1/leaderboard from the cached aggregation.
func Handler(svc *Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "GET only")
			return
		}
		entries, err := svc.Cached(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("leaderboard fetch failed")
			httperrors.RespondInternalError(w, "leaderboard unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"entries": entries})
	}
}
