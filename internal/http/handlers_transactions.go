package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"forefunds/internal/analyzer"
	"forefunds/internal/auth"
	"forefunds/internal/log"
	"forefunds/internal/services"
)

var errUploadTooLarge = errors.New("upload too large")

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Data(toTransactionDTOs(txs)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeError(w, r, errors.Join(errBadRequest, err))
		return
	}
	tx, notices, err := s.svc.Transactions.Add(r.Context(), auth.UserID(r.Context()), services.TransactionInput{
		Amount:      p.Get("amount"),
		Description: p.Get("description"),
		Date:        p.Get("date"),
		Type:        p.Get("type"),
		Category:    p.Get("category"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Data(toTransactionDTO(tx)).
		Toast("Transaction added successfully!").
		Notices(notices...).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	notices, err := s.svc.Transactions.Delete(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Toast("Transaction deleted.").Notices(notices...).Write(w)
}

// readUpload reads the multipart "file" field within the upload limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (analyzer.Document, error) {
	if r.ContentLength > s.maxUploadBytes {
		return analyzer.Document{}, fmt.Errorf("%w: %d bytes", errUploadTooLarge, r.ContentLength)
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return analyzer.Document{}, fmt.Errorf("%w: limit %d bytes", errUploadTooLarge, tooLarge.Limit)
		}
		return analyzer.Document{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return analyzer.Document{}, fmt.Errorf("%w: missing file: %v", errBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return analyzer.Document{}, fmt.Errorf("%w: read upload: %v", errBadRequest, err)
	}
	return analyzer.NewDocument(header.Filename, header.Header.Get("Content-Type"), data)
}

func (s *Server) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Document received",
		log.FieldUserID, auth.UserID(r.Context()),
		log.FieldDocumentKind, string(doc.Kind),
		"size_bytes", len(doc.Data))

	res, err := s.svc.Documents.Analyze(r.Context(), auth.UserID(r.Context()), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Data(scanDTO{Transactions: toTransactionDTOs(res.Transactions), Skipped: res.Skipped}).
		Toast(res.Message).
		Notices(res.Notices...).
		Write(w)
}
