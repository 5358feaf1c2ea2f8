package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"cvchat-backend/service"
	"cvchat-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxDocumentSize  = 10 * 1024 * 1024 // 10MB per PDF
	maxImageSize     = 5 * 1024 * 1024
	maxCertificates  = 5
	maxExtraTextSize = 10_000 // characters
)

// UploadHandler handles HTTP requests for document uploads
type UploadHandler struct {
	upload *service.UploadService
	auth   *service.AuthService
	images storage.ImageStore
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(upload *service.UploadService, auth *service.AuthService, images storage.ImageStore) *UploadHandler {
	return &UploadHandler{
		upload: upload,
		auth:   auth,
		images: images,
	}
}

// Upload handles POST /api/upload. The request is multipart: a required CV
// PDF, up to five certificate PDFs, an optional profile image and optional
// free text. An attached session claims the profile for that account;
// without one the profile is created anonymous.
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_FORM", "Request must be multipart/form-data")
		return
	}

	cvHeaders := form.File["cv"]
	if len(cvHeaders) == 0 {
		respondError(c, http.StatusBadRequest, "MISSING_CV", "A CV file is required")
		return
	}
	cvData, err := h.readPDF(cvHeaders[0])
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CV", err.Error())
		return
	}

	certHeaders := form.File["certificates"]
	if len(certHeaders) > maxCertificates {
		respondError(c, http.StatusBadRequest, "TOO_MANY_CERTIFICATES",
			fmt.Sprintf("At most %d certificate files are allowed", maxCertificates))
		return
	}
	certificates := make([][]byte, 0, len(certHeaders))
	for i, header := range certHeaders {
		data, err := h.readPDF(header)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_CERTIFICATE",
				fmt.Sprintf("certificate %d: %v", i+1, err))
			return
		}
		certificates = append(certificates, data)
	}

	imageURL := ""
	if imageHeaders := form.File["image"]; len(imageHeaders) > 0 {
		imageURL, err = h.storeImage(c, imageHeaders[0])
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_IMAGE", err.Error())
			return
		}
	}

	extraText := c.PostForm("extra_text")
	if len(extraText) > maxExtraTextSize {
		respondError(c, http.StatusBadRequest, "EXTRA_TEXT_TOO_LONG",
			fmt.Sprintf("extra_text exceeds %d characters", maxExtraTextSize))
		return
	}

	var userID *uuid.UUID
	if user := sessionUser(c, h.auth); user != nil {
		userID = &user.ID
	}

	result, err := h.upload.Upload(c.Request.Context(), service.UploadRequest{
		UserID:       userID,
		CV:           cvData,
		Certificates: certificates,
		ImageURL:     imageURL,
		ExtraText:    extraText,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"token": result.Token,
			"meta": gin.H{
				"name":      result.Meta.Name,
				"position":  result.Meta.Position,
				"summary":   result.Meta.Summary,
				"image_url": result.Meta.ImageURL,
			},
		},
	})
}

func (h *UploadHandler) readPDF(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > maxDocumentSize {
		return nil, fmt.Errorf("file exceeds maximum of %d bytes", maxDocumentSize)
	}

	// A declared non-PDF MIME is rejected outright, whatever the filename
	// says; the extension is consulted only when the MIME carries no
	// information (absent or the octet-stream default).
	mimeType := header.Header.Get("Content-Type")
	switch mimeType {
	case "application/pdf":
	case "", "application/octet-stream":
		if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			return nil, fmt.Errorf("only PDF files are accepted")
		}
	default:
		return nil, fmt.Errorf("only PDF files are accepted")
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxDocumentSize))
}

func (h *UploadHandler) storeImage(c *gin.Context, header *multipart.FileHeader) (string, error) {
	if header.Size > maxImageSize {
		return "", fmt.Errorf("image exceeds maximum of %d bytes", maxImageSize)
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("only image files are accepted")
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	path, err := h.images.Upload(c.Request.Context(), uuid.New(), header.Filename, file)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return "/api/images/" + path, nil
}
