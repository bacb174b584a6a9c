package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookstore/response"
)

const (
	maxCoverBytes      = 5 << 20
	coverImportTimeout = 10 * time.Second
)

var coverExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type ImportCoverRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

// UploadCover stores the multipart "cover" image as the book's cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes+1<<10)
	if err := r.ParseMultipartForm(maxCoverBytes); err != nil {
		response.Error(w, r, response.InvalidBody, "Cover must be a multipart upload of at most 5 MiB", nil)
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		response.Error(w, r, response.InvalidBody, "Missing cover file", nil)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, r, response.InvalidBody, "Failed to read file", nil)
		return
	}
	contentType := http.DetectContentType(body)
	ext, ok := coverExts[contentType]
	if !ok {
		response.Error(w, r, response.InvalidBody, "Only jpeg, png and webp covers are allowed", nil)
		return
	}
	if e := strings.ToLower(filepath.Ext(header.Filename)); e != "" {
		ext = e
	}
	h.storeCover(w, r, id, "cover"+ext, body, contentType)
}

// ImportCover downloads an image, typically the cover_url of an ISBN lookup,
// and stores it as the book's cover.
func (h *BooksHandler) ImportCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ImportCoverRequest
	if !bind(w, r, &req) {
		return
	}
	body, contentType, err := downloadImage(r.Context(), req.URL, coverImportTimeout)
	if err != nil {
		h.Logger.Info("cover download failed", zap.String("url", req.URL), zap.Error(err))
		response.Error(w, r, response.InvalidBody, "Could not download cover image", nil)
		return
	}
	ext, ok := coverExts[contentType]
	if !ok {
		response.Error(w, r, response.InvalidBody, "URL does not point at a jpeg, png or webp image", nil)
		return
	}
	h.storeCover(w, r, id, "cover"+ext, body, contentType)
}

// Cover redirects to a short lived link to the cover image.
func (h *BooksHandler) Cover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	book, err := h.Books.BookByID(r.Context(), id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Book not found", "")
		return
	}
	if book.CoverKey == "" {
		response.Error(w, r, response.NotFound, "Book has no cover", nil)
		return
	}
	url, err := h.Covers.PresignedURL(r.Context(), book.CoverKey)
	if err != nil {
		storeError(w, r, h.Logger, err, "", "")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *BooksHandler) storeCover(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, filename string, body []byte, contentType string) {
	ctx := r.Context()
	old, err := h.Books.BookByID(ctx, id)
	if err != nil {
		storeError(w, r, h.Logger, err, "Book not found", "")
		return
	}
	key, err := h.Covers.Upload(ctx, id.Hex(), filename, bytes.NewReader(body), contentType)
	if err != nil {
		h.Logger.Error("cover upload failed", zap.String("book_id", id.Hex()), zap.Error(err))
		response.Error(w, r, response.Internal, "Failed to upload cover", nil)
		return
	}
	book, err := h.Books.SetBookCover(ctx, id, key)
	if err != nil {
		h.dropCover(ctx, key)
		storeError(w, r, h.Logger, err, "Book not found", "")
		return
	}
	if old.CoverKey != "" && old.CoverKey != key {
		h.dropCover(ctx, old.CoverKey)
	}
	h.invalidate(ctx, id)
	markCover(book)
	response.Success(w, http.StatusOK, "Cover successfully uploaded", book)
}

func (h *BooksHandler) dropCover(ctx context.Context, key string) {
	if err := h.Covers.Delete(ctx, key); err != nil {
		h.Logger.Warn("failed to delete cover object", zap.String("key", key), zap.Error(err))
	}
}

// downloadImage fetches url with a timeout and returns the body and its
// sniffed content type.
func downloadImage(ctx context.Context, url string, timeout time.Duration) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("cover URL returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(body) > maxCoverBytes {
		return nil, "", fmt.Errorf("cover larger than %d bytes", maxCoverBytes)
	}
	return body, http.DetectContentType(body), nil
}
