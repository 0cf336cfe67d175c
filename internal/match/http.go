package match

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/puzzlewager/puzzlewager/internal/auth"
	"github.com/puzzlewager/puzzlewager/internal/chain"
	httperrors "github.com/puzzlewager/puzzlewager/pkg/http/errors"
)

// SettingsStore persists per-player display settings for matches.
type SettingsStore interface {
	SetArchived(ctx context.Context, matchID, player string, archived bool) error
	ListArchived(ctx context.Context, player string) ([]string, error)
}

// HTTPHandlers serves match queries over the chain snapshot store.
type HTTPHandlers struct {
	store    *chain.Store
	operator chain.Address
	settings SettingsStore
	logger   zerolog.Logger
}

// NewHTTPHandlers constructs the match query handlers.
func NewHTTPHandlers(store *chain.Store, operator chain.Address, settings SettingsStore, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		store:    store,
		operator: operator,
		settings: settings,
		logger:   logger.With().Str("component", "match_http").Logger(),
	}
}

// View is the JSON shape of one enriched match.
type View struct {
	ID               string  `json:"id"`
	Kind             string  `json:"type"`
	Status           string  `json:"status"`
	P1               string  `json:"p1"`
	P2               *string `json:"p2,omitempty"`
	Opponent         *string `json:"opponent,omitempty"`
	BuyIn            string  `json:"buyInAmount"`
	MyBalance        string  `json:"myBalance"`
	OpponentBalance  string  `json:"opponentBalance"`
	MyStartTime      *uint64 `json:"myStartTime,omitempty"`
	OpponentStart    *uint64 `json:"opponentStartTime,omitempty"`
	MyScore          uint32  `json:"myScore"`
	OpponentScore    uint32  `json:"opponentScore"`
	MyRematchVote    bool    `json:"myRematchVote"`
	OppRematchVote   bool    `json:"opponentRematchVote"`
	ISubmitted       bool    `json:"iSubmitted"`
	OppSubmitted     bool    `json:"opponentSubmitted"`
	SubmissionWindow uint32  `json:"submissionWindow"`
	PlaybackWindow   uint32  `json:"playbackWindow"`
	InviteExpiration uint64  `json:"inviteExpiration"`
	RematchCount     uint32  `json:"rematchCount"`
	Archived         bool    `json:"archived,omitempty"`
	Outcome          Outcome `json:"outcome"`
}

// NewView flattens a PlayerMatch for the wire.
func NewView(m PlayerMatch) View {
	v := View{
		ID:               m.ID.Hex(),
		Kind:             m.Kind.String(),
		Status:           m.Status.String(),
		P1:               m.P1.Hex(),
		BuyIn:            m.BuyIn.String(),
		MyBalance:        m.MyBalance.String(),
		MyStartTime:      m.MyStartTime,
		OpponentStart:    m.OpponentStartTime,
		MyScore:          m.MyScore,
		OpponentScore:    m.OpponentScore,
		MyRematchVote:    m.MyRematchVote,
		OppRematchVote:   m.OpponentRematchVote,
		ISubmitted:       m.ISubmitted,
		OppSubmitted:     m.OpponentSubmitted,
		SubmissionWindow: m.SubmissionWindow,
		PlaybackWindow:   m.PlaybackWindow,
		InviteExpiration: m.InviteExpiration,
		RematchCount:     m.RematchCount,
		Outcome:          m.Outcome,
	}
	if m.P2 != nil {
		p2 := m.P2.Hex()
		v.P2 = &p2
	}
	if m.Opponent != nil {
		opp := m.Opponent.Hex()
		v.Opponent = &opp
	}
	if m.OpponentBalance != nil {
		v.OpponentBalance = m.OpponentBalance.String()
	} else {
		v.OpponentBalance = "0"
	}
	return v
}

// ListMine handles GET /v1/matches for the authenticated player. Archived
// matches are hidden unless ?includeArchived=true.
func (h *HTTPHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	player, ok := auth.AddressFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "wallet session required")
		return
	}

	archived := map[string]bool{}
	if ids, err := h.settings.ListArchived(r.Context(), player.Hex()); err != nil {
		// listing still works without the display settings
		h.logger.Warn().Err(err).Msg("load archived settings failed")
	} else {
		for _, id := range ids {
			archived[id] = true
		}
	}
	includeArchived := r.URL.Query().Get("includeArchived") == "true"

	now := time.Now().Unix()
	matches := ForPlayer(h.store.Current(), h.operator, player, now)
	views := make([]View, 0, len(matches))
	for _, m := range matches {
		isArchived := archived[m.ID.Hex()]
		if isArchived && !includeArchived {
			continue
		}
		v := NewView(m)
		v.Archived = isArchived
		views = append(views, v)
	}
	respondJSON(w, map[string]any{"matches": views})
}

// Archive handles POST /v1/matches/archive: toggles the archived flag for
// one of the player's matches.
func (h *HTTPHandlers) Archive(w http.ResponseWriter, r *http.Request) {
	player, ok := auth.AddressFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "wallet session required")
		return
	}
	var req struct {
		GameID   string `json:"gameId"`
		Archived bool   `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "malformed request body", "")
		return
	}
	id, err := chain.ParseMatchID(req.GameID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidMatchID, "invalid match id", "gameId")
		return
	}
	if err := h.settings.SetArchived(r.Context(), id.Hex(), player.Hex(), req.Archived); err != nil {
		h.logger.Error().Err(err).Str("match_id", id.Hex()).Msg("persist archived setting failed")
		httperrors.RespondInternalError(w, "could not update match settings")
		return
	}
	respondJSON(w, map[string]any{"gameId": id.Hex(), "archived": req.Archived})
}

// ListLobbies handles GET /v1/lobbies: public joinable matches.
func (h *HTTPHandlers) ListLobbies(w http.ResponseWriter, r *http.Request) {
	now := time.Now().Unix()
	lobbies := OpenLobbies(h.store.Current(), h.operator, now)
	type lobbyView struct {
		ID               string `json:"id"`
		Kind             string `json:"type"`
		P1               string `json:"p1"`
		BuyIn            string `json:"buyInAmount"`
		SubmissionWindow uint32 `json:"submissionWindow"`
		InviteExpiration uint64 `json:"inviteExpiration"`
	}
	views := make([]lobbyView, 0, len(lobbies))
	for _, g := range lobbies {
		views = append(views, lobbyView{
			ID:               g.ID.Hex(),
			Kind:             g.Kind.String(),
			P1:               g.P1.Hex(),
			BuyIn:            g.BuyIn.String(),
			SubmissionWindow: g.SubmissionWindow,
			InviteExpiration: g.InviteExpiration,
		})
	}
	respondJSON(w, map[string]any{"lobbies": views})
}

// Stats handles GET /v1/stats for the authenticated player.
func (h *HTTPHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	player, ok := auth.AddressFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "wallet session required")
		return
	}
	st := StatsForPlayer(h.store.Current(), h.operator, player, time.Now().Unix())
	respondJSON(w, st)
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
