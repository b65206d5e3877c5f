package http

import (
	"net/http"

	"forefunds/internal/auth"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard.Overview(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toDashboardDTO(d)).Write(w)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	points, err := s.svc.Dashboard.Trend(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toTrendDTOs(points)).Write(w)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h, err := s.svc.Dashboard.Heatmap(r.Context(), auth.UserID(r.Context()), params.Year, params.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toHeatmapDTO(h)).Write(w)
}

func (s *Server) handleForeScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.svc.Dashboard.ForeScore(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(foreScoreDTO{Score: score.Score, Tier: score.Tier, Message: score.Message}).Write(w)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insight, err := s.svc.Insights.Generate(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if insight.Empty {
		NewResponse().Toast(insight.Message).Write(w)
		return
	}
	NewResponse().Data(insightDTO{HTML: insight.HTML, Markdown: insight.Markdown}).Write(w)
}
