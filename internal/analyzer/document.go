package analyzer

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Kind selects the prompt a document is analyzed with.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindText  Kind = "text"
)

var ErrUnsupportedDocument = errors.New("unsupported document type")

// Document is an uploaded file ready for analysis.
type Document struct {
	Name     string
	Kind     Kind
	MimeType string
	Data     []byte
}

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// NewDocument classifies data by sniffing its content, falling back to the
// declared content type and the file extension.
func NewDocument(name, declaredType string, data []byte) (Document, error) {
	if len(data) == 0 {
		return Document{}, fmt.Errorf("%w: empty file", ErrUnsupportedDocument)
	}

	mimeType := baseType(http.DetectContentType(data))
	if mimeType == "application/octet-stream" {
		if declared := baseType(declaredType); declared != "" {
			mimeType = declared
		} else if byExt := baseType(mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))); byExt != "" {
			mimeType = byExt
		}
	}

	doc := Document{Name: name, MimeType: mimeType, Data: data}
	switch {
	case imageTypes[mimeType]:
		doc.Kind = KindImage
	case mimeType == "application/pdf":
		doc.Kind = KindPDF
	case strings.HasPrefix(mimeType, "text/") || mimeType == "application/csv":
		if !utf8.Valid(data) {
			return Document{}, fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupportedDocument)
		}
		doc.Kind = KindText
		doc.MimeType = "text/plain"
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedDocument, mimeType)
	}
	return doc, nil
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	t, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(t)
}
