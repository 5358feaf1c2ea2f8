package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newUploadRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewUploadHandler(nil, nil, nil)
	r := gin.New()
	r.POST("/api/upload", handler.Upload)
	return r
}

// addFilePart attaches a file with an explicit Content-Type, which
// multipart.Writer.CreateFormFile does not allow.
func addFilePart(t *testing.T, w *multipart.Writer, field, filename, mimeType string, data []byte) {
	t.Helper()
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}
}

func postUpload(t *testing.T, r *gin.Engine, build func(w *multipart.Writer)) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	build(w)
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUploadRejectsMismatchedDocumentType(t *testing.T) {
	r := newUploadRouter()

	tests := []struct {
		name     string
		mimeType string
		filename string
	}{
		// The .pdf filename must not override a declared non-PDF MIME.
		{name: "png disguised as pdf", mimeType: "image/png", filename: "resume.pdf"},
		{name: "html disguised as pdf", mimeType: "text/html", filename: "resume.pdf"},
		{name: "plain text extension", mimeType: "", filename: "resume.txt"},
		{name: "octet stream without pdf name", mimeType: "application/octet-stream", filename: "resume.docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postUpload(t, r, func(w *multipart.Writer) {
				addFilePart(t, w, "cv", tt.filename, tt.mimeType, []byte("%PDF-1.4 fake"))
			})

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d (body %s)", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), "INVALID_CV") {
				t.Errorf("expected INVALID_CV envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestUploadRejectsMismatchedCertificateType(t *testing.T) {
	r := newUploadRouter()

	rec := postUpload(t, r, func(w *multipart.Writer) {
		addFilePart(t, w, "cv", "resume.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
		addFilePart(t, w, "certificates", "cert.pdf", "image/jpeg", []byte("not a pdf"))
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "INVALID_CERTIFICATE") {
		t.Errorf("expected INVALID_CERTIFICATE envelope, got %s", rec.Body.String())
	}
}

func TestUploadRequiresCV(t *testing.T) {
	r := newUploadRouter()

	rec := postUpload(t, r, func(w *multipart.Writer) {
		_ = w.WriteField("extra_text", "hello")
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "MISSING_CV") {
		t.Errorf("expected MISSING_CV envelope, got %s", rec.Body.String())
	}
}
