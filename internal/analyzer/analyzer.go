// Package analyzer turns uploaded documents into transaction rows and
// writes spending insights with a large language model.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"forefunds/internal/core"
	"forefunds/internal/log"
)

var ErrEmptyReply = errors.New("model returned an empty reply")

// Attachment is binary content sent inline with a prompt.
type Attachment struct {
	MimeType string
	Data     []byte
}

type Request struct {
	Prompt     string
	Attachment *Attachment
}

// Provider is one LLM backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Analyzer is what the services depend on.
type Analyzer interface {
	Extract(ctx context.Context, doc Document, today core.Date) ([]Extracted, error)
	Insights(ctx context.Context, prompt string) (string, error)
}

// Service bounds concurrent provider calls and applies a per-call timeout.
type Service struct {
	provider Provider
	sem      *semaphore.Weighted
	timeout  time.Duration
	logger   *log.Logger
}

func NewService(p Provider, concurrency int, timeout time.Duration, logger *log.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		provider: p,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		timeout:  timeout,
		logger:   logger.WithComponent(log.ComponentAnalyzer),
	}
}

func (s *Service) Extract(ctx context.Context, doc Document, today core.Date) ([]Extracted, error) {
	var req Request
	switch doc.Kind {
	case KindImage:
		req = Request{Prompt: screenshotPrompt(today), Attachment: &Attachment{MimeType: doc.MimeType, Data: doc.Data}}
	case KindPDF:
		req = Request{Prompt: statementPrompt(today, ""), Attachment: &Attachment{MimeType: doc.MimeType, Data: doc.Data}}
	case KindText:
		req = Request{Prompt: statementPrompt(today, string(doc.Data))}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, doc.Kind)
	}

	reply, err := s.generate(ctx, req, string(doc.Kind))
	if err != nil {
		return nil, err
	}
	rows, err := ParseReply(reply)
	if err != nil {
		s.logger.WarnContext(ctx, "Reply held no transactions",
			log.FieldProvider, s.provider.Name(),
			log.FieldDocumentKind, string(doc.Kind),
			log.FieldError, err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Document analyzed",
		log.FieldProvider, s.provider.Name(),
		log.FieldDocumentKind, string(doc.Kind),
		log.FieldCount, len(rows))
	return rows, nil
}

func (s *Service) Insights(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, Request{Prompt: prompt}, "insights")
}

func (s *Service) generate(ctx context.Context, req Request, what string) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.sem.Release(1)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "Model call failed",
			log.FieldProvider, s.provider.Name(),
			log.FieldOperation, log.OpAnalyze,
			log.FieldDocumentKind, what,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeUpstream,
			log.FieldDuration, time.Since(start).Milliseconds())
		return "", fmt.Errorf("%s: %w", s.provider.Name(), err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
