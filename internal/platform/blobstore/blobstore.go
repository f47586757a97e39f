// Package blobstore stores captured fundus photographs. It defines the
// ImageStore interface, an in-memory implementation suitable for testing and
// development, and Echo HTTP handlers for multipart upload, download,
// metadata retrieval, and per-patient listing.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var (
	ErrImageNotFound      = errors.New("image not found")
	ErrImageTooLarge      = errors.New("image exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrInvalidEye         = errors.New("eye must be left or right")
)

// MaxImageSize is the maximum allowed image size in bytes (15 MB).
const MaxImageSize = 15 * 1024 * 1024

// AllowedContentTypes lists accepted fundus image MIME types.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Eye side values for captured images.
const (
	EyeLeft  = "left"
	EyeRight = "right"
)

// ImageMetadata describes a stored fundus image.
type ImageMetadata struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	PatientID   string    `json:"patient_id"`
	ScreeningID string    `json:"screening_id,omitempty"`
	Eye         string    `json:"eye"`
	Hash        string    `json:"hash"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// ImageStore defines the contract for fundus image storage backends.
type ImageStore interface {
	Upload(ctx context.Context, meta ImageMetadata, content io.Reader) (*ImageMetadata, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *ImageMetadata, error)
	GetMetadata(ctx context.Context, id string) (*ImageMetadata, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*ImageMetadata, int, error)
	Delete(ctx context.Context, id string) error
}

type storedImage struct {
	metadata ImageMetadata
	content  []byte
}

// InMemoryImageStore is a thread-safe, in-memory ImageStore.
type InMemoryImageStore struct {
	mu     sync.RWMutex
	images map[string]*storedImage
	order  []string
}

func NewInMemoryImageStore() *InMemoryImageStore {
	return &InMemoryImageStore{
		images: make(map[string]*storedImage),
	}
}

// Upload validates inputs, reads the content, computes a SHA-256 hash, and
// stores the image in memory.
func (s *InMemoryImageStore) Upload(_ context.Context, meta ImageMetadata, content io.Reader) (*ImageMetadata, error) {
	if meta.Eye != EyeLeft && meta.Eye != EyeRight {
		return nil, ErrInvalidEye
	}
	if !AllowedContentTypes[meta.ContentType] {
		return nil, ErrInvalidContentType
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	h := sha256.Sum256(data)

	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.images[meta.ID] = &storedImage{metadata: meta, content: data}
	s.order = append(s.order, meta.ID)
	s.mu.Unlock()

	out := meta
	return &out, nil
}

// Download returns an io.ReadCloser over the image bytes and its metadata.
func (s *InMemoryImageStore) Download(_ context.Context, id string) (io.ReadCloser, *ImageMetadata, error) {
	s.mu.RLock()
	img, ok := s.images[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrImageNotFound
	}

	meta := img.metadata
	return io.NopCloser(bytes.NewReader(img.content)), &meta, nil
}

func (s *InMemoryImageStore) GetMetadata(_ context.Context, id string) (*ImageMetadata, error) {
	s.mu.RLock()
	img, ok := s.images[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrImageNotFound
	}

	meta := img.metadata
	return &meta, nil
}

// ListByPatient returns images for a patient in upload order with the total
// match count.
func (s *InMemoryImageStore) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*ImageMetadata, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*ImageMetadata
	for _, id := range s.order {
		img, ok := s.images[id]
		if !ok || img.metadata.PatientID != patientID {
			continue
		}
		m := img.metadata
		matched = append(matched, &m)
	}

	total := len(matched)
	if limit <= 0 {
		limit = 20
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[offset:end], total, nil
}

func (s *InMemoryImageStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[id]; !ok {
		return ErrImageNotFound
	}
	delete(s.images, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

type listResponse struct {
	Items []*ImageMetadata `json:"items"`
	Total int              `json:"total"`
}

// ImageHandler provides Echo HTTP handlers for image operations.
type ImageHandler struct {
	store ImageStore
}

func NewImageHandler(store ImageStore) *ImageHandler {
	return &ImageHandler{store: store}
}

// RegisterRoutes mounts image routes on the supplied Echo group.
func (h *ImageHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/images", h.handleUpload)
	g.GET("/images/patient/:patientId", h.handleListByPatient)
	g.GET("/images/:id/metadata", h.handleGetMetadata)
	g.GET("/images/:id", h.handleDownload)
}

func (h *ImageHandler) handleUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open uploaded file"})
	}
	defer src.Close()

	meta := ImageMetadata{
		ContentType: file.Header.Get("Content-Type"),
		PatientID:   c.FormValue("patient_id"),
		Eye:         c.FormValue("eye"),
		CreatedBy:   c.FormValue("created_by"),
	}

	result, err := h.store.Upload(c.Request().Context(), meta, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrImageTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrInvalidEye):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrInvalidContentType):
			return c.JSON(http.StatusUnsupportedMediaType, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *ImageHandler) handleDownload(c echo.Context) error {
	id := c.Param("id")

	rc, meta, err := h.store.Download(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, meta.ContentType, rc)
}

func (h *ImageHandler) handleGetMetadata(c echo.Context) error {
	id := c.Param("id")

	meta, err := h.store.GetMetadata(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, meta)
}

func (h *ImageHandler) handleListByPatient(c echo.Context) error {
	patientID := c.Param("patientId")
	limit := intParam(c, "limit", 20)
	offset := intParam(c, "offset", 0)

	items, total, err := h.store.ListByPatient(c.Request().Context(), patientID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if items == nil {
		items = []*ImageMetadata{}
	}

	return c.JSON(http.StatusOK, listResponse{Items: items, Total: total})
}

func intParam(c echo.Context, name string, defaultVal int) int {
	v := c.QueryParam(name)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
