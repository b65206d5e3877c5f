package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"forefunds/internal/auth"
	"forefunds/internal/log"
	"forefunds/internal/middleware/ratelimit"
	"forefunds/internal/middleware/security"
	"forefunds/internal/middleware/trace"
	"forefunds/internal/services"
	"forefunds/internal/store"
)

func writeHealth(w http.ResponseWriter, status int, state string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": state})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, "ok")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed",
				log.FieldError, err,
				log.FieldErrorType, log.ErrorTypeDatabase)
			writeHealth(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeHealth(w, http.StatusOK, "ready")
}

type metricsDTO struct {
	Requests     trace.Metrics             `json:"requests"`
	RateLimit    ratelimit.Metrics         `json:"rate_limit"`
	Security     security.DetectionMetrics `json:"security"`
	CacheEntries int                       `json:"cache_entries"`
	Time         time.Time                 `json:"time"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := metricsDTO{
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
		Time:      time.Now().UTC(),
	}
	if s.cacheSize != nil {
		m.CacheEntries = s.cacheSize()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(m)
}

type signInRequest struct {
	Credential string `json:"credential"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Credential == "" {
		writeError(w, r, auth.ErrInvalidCredential)
		return
	}

	id, err := s.verifier.Verify(r.Context(), req.Credential)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Sign-in rejected",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeAuth)
		writeError(w, r, err)
		return
	}
	profile, created, err := s.svc.Profiles.SignIn(r.Context(), id.Subject, id.Email, id.Name, id.Picture)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, expires, err := s.sessions.Issue(profile.ID, profile.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	NewResponse().Data(signInDTO{
		Token:     token,
		ExpiresAt: expires,
		Created:   created,
		Profile:   toProfileDTO(profile),
	}).Write(w)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, streakMsg, err := s.svc.Profiles.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toProfileDTO(p)).Toast(streakMsg).Write(w)
}

func (s *Server) handleSetDailyGoal(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, errors.Join(errBadRequest, err))
		return
	}
	goal, err := s.svc.Profiles.SetDailyGoal(r.Context(), auth.UserID(r.Context()), p.Get("amount"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Data(map[string]float64{"daily_goal": goal.Rupees()}).
		Toast(services.MsgDailyGoalUpdated).
		Write(w)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.svc.Profiles.Leaderboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries := make([]leaderEntryDTO, len(profiles))
	for i, p := range profiles {
		entries[i] = leaderEntryDTO{Rank: i + 1, ID: p.ID, Name: p.Name, PhotoURL: p.PhotoURL, Points: p.Points}
	}
	NewResponse().Data(entries).Write(w)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	p, _, err := s.svc.Profiles.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toAchievementDTOs(p)).Write(w)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.Goals.Get(r.Context(), auth.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		NewResponse().Write(w)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toGoalDTO(g)).Write(w)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, errors.Join(errBadRequest, err))
		return
	}
	g, notices, err := s.svc.Goals.Set(r.Context(), auth.UserID(r.Context()), services.GoalInput{
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
		Reward:      p.Get("reward"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toGoalDTO(g)).Toast("Goal saved!").Notices(notices...).Write(w)
}

func (s *Server) handleRemoveGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Goals.Remove(r.Context(), auth.UserID(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Toast("Goal removed.").Write(w)
}
