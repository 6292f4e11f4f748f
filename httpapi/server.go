package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"creditflow/auth"
	"creditflow/dispute"
	"creditflow/letter"
	"creditflow/selection"
)

// Server wires the domain services to HTTP routes.
type Server struct {
	auth     *auth.Service
	disputes *dispute.Service
	mirror   *selection.Mirror
	logger   *zap.Logger
	mux      *http.ServeMux
	now      func() time.Time
}

// NewServer builds the request boundary. mirror may be nil when no Redis is
// configured; selection routes then report the feature as unavailable.
func NewServer(authSvc *auth.Service, disputeSvc *dispute.Service, mirror *selection.Mirror, logger *zap.Logger) *Server {
	s := &Server{
		auth:     authSvc,
		disputes: disputeSvc,
		mirror:   mirror,
		logger:   logger,
		mux:      http.NewServeMux(),
		now:      time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	s.mux.Handle("GET /api/me", s.authenticated(s.handleMe))
	s.mux.Handle("PUT /api/me/plan", s.authenticated(s.handleChangePlan))

	s.mux.Handle("GET /api/selections", s.authenticated(s.handleListSelections))
	s.mux.Handle("DELETE /api/selections", s.authenticated(s.handleResetSelections))
	s.mux.Handle("POST /api/selections/items", s.authenticated(s.handleAddSelection))
	s.mux.Handle("PATCH /api/selections/items/{id}", s.authenticated(s.handleUpdateSelection))
	s.mux.Handle("DELETE /api/selections/items/{id}", s.authenticated(s.handleRemoveSelection))

	s.mux.Handle("POST /api/rounds", s.authenticated(s.handleCreateRound))
	s.mux.Handle("GET /api/rounds", s.authenticated(s.handleListRounds))
	s.mux.Handle("GET /api/rounds/{id}", s.authenticated(s.handleGetRound))
	s.mux.Handle("POST /api/rounds/{id}/sent", s.authenticated(s.handleMarkSent))
	s.mux.Handle("POST /api/rounds/{id}/advance", s.authenticated(s.handleAdvanceRound))
	s.mux.Handle("POST /api/items/{id}/resolve", s.authenticated(s.handleResolveItem))

	s.mux.Handle("POST /api/letters/preview", s.authenticated(s.handlePreviewLetters))
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}
	user, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, userView(*user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}
	result, err := s.auth.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  userView(result.User),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.GetUserByID(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, userView(*user))
}

func (s *Server) handleChangePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan auth.Plan `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}
	user, err := s.auth.ChangePlan(r.Context(), userIDFrom(r.Context()), req.Plan)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, userView(*user))
}

func (s *Server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items           []selectedItemView     `json:"items"`
		DeliveryMethod  dispute.DeliveryMethod `json:"delivery_method"`
		TrackingNumbers []string               `json:"tracking_numbers"`
		Metro2          bool                   `json:"metro2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}

	userID := userIDFrom(r.Context())
	items := make([]dispute.SelectedItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, item.toDomain())
	}

	// An empty body falls back to the mirrored selection store.
	fromMirror := false
	if len(items) == 0 && s.mirror != nil {
		store, err := s.mirror.Load(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := store.Ready(); err != nil {
			s.writeError(w, r, err)
			return
		}
		for _, sel := range store.Items() {
			items = append(items, dispute.SelectedItem{
				AccountID:   sel.ID,
				AccountName: sel.Name,
				Reason:      sel.Reason,
				Instruction: sel.Instruction,
			})
		}
		fromMirror = true
	}

	result, err := s.disputes.CreateRound(r.Context(), dispute.CreateRoundParams{
		UserID:          userID,
		Items:           items,
		DeliveryMethod:  req.DeliveryMethod,
		TrackingNumbers: req.TrackingNumbers,
		Metro2:          req.Metro2,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if fromMirror {
		if err := s.mirror.Clear(r.Context(), userID); err != nil {
			s.logger.Warn("clear selection mirror", zap.Error(err), zap.String("user_id", userID))
		}
	}

	s.writeJSON(w, http.StatusCreated, createRoundView(result))
}

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.disputes.ListRounds(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]roundView, 0, len(rounds))
	for _, round := range rounds {
		views = append(views, newRoundView(round))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"rounds": views})
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, items, err := s.disputes.GetRound(r.Context(), userIDFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	itemViews := make([]itemView, 0, len(items))
	for _, item := range items {
		itemViews = append(itemViews, newItemView(item))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"round": newRoundView(round),
		"items": itemViews,
	})
}

func (s *Server) handleMarkSent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackingNumbers []string `json:"tracking_numbers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}
	round, err := s.disputes.MarkSent(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), req.TrackingNumbers)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newRoundView(round))
}

func (s *Server) handleAdvanceRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status dispute.RoundStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}
	round, err := s.disputes.AdvanceRound(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newRoundView(round))
}

func (s *Server) handleResolveItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status  dispute.ItemStatus `json:"status"`
		Outcome string             `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}
	item, err := s.disputes.ResolveItem(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), req.Status, req.Outcome)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newItemView(item))
}

func (s *Server) handlePreviewLetters(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items  []selectedItemView `json:"items"`
		Metro2 bool               `json:"metro2"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}

	user, err := s.auth.GetUserByID(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	identity := letter.Identity{
		FullName:    user.FullName,
		AddressLine: deref(user.AddressLine),
		City:        deref(user.City),
		State:       deref(user.State),
		PostalCode:  deref(user.PostalCode),
		SSNLast4:    deref(user.SSNLast4),
		Date:        s.now().UTC(),
	}
	items := make([]letter.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, letter.Item{
			AccountID:   item.AccountID,
			AccountName: item.AccountName,
			Reason:      item.Reason,
			Instruction: item.Instruction,
		})
	}

	letters := make(map[letter.Bureau]string, 3)
	for _, bureau := range letter.Bureaus() {
		if req.Metro2 {
			letters[bureau] = letter.GenerateMetro2(bureau, identity, items)
		} else {
			letters[bureau] = letter.Generate(bureau, identity, items)
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"letters": letters})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var errBadBody = errors.New("httpapi: malformed request body")
