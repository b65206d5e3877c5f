package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"forefunds/internal/analyzer"
)

// Insight is the model's month summary. Empty is set, with Message, when
// there was nothing to analyze.
type Insight struct {
	Markdown string
	HTML     string
	Empty    bool
	Message  string
}

type InsightService struct {
	analyzer  analyzer.Analyzer
	dashboard *DashboardService
	clock     Clock
	markdown  goldmark.Markdown
}

func NewInsightService(a analyzer.Analyzer, dashboard *DashboardService, clock Clock) *InsightService {
	return &InsightService{
		analyzer:  a,
		dashboard: dashboard,
		clock:     clock,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (s *InsightService) Generate(ctx context.Context, userID string) (Insight, error) {
	month, totals, err := s.dashboard.MonthTransactions(ctx, userID)
	if err != nil {
		return Insight{}, err
	}
	if len(month) == 0 {
		return Insight{Empty: true, Message: MsgNeedTransactions}, nil
	}
	if s.analyzer == nil {
		return Insight{}, ErrAnalyzerDisabled
	}

	prompt, err := analyzer.InsightsPrompt(s.clock.Today(), totals.Balance(), month)
	if err != nil {
		return Insight{}, err
	}
	md, err := s.analyzer.Insights(ctx, prompt)
	if err != nil {
		return Insight{}, err
	}

	// goldmark drops raw HTML by default, so model output cannot inject markup.
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return Insight{}, fmt.Errorf("render insights: %w", err)
	}
	return Insight{Markdown: md, HTML: buf.String()}, nil
}
