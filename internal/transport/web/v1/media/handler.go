package media

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pb0420/trademonke/internal/domain"
	"github.com/pb0420/trademonke/internal/transport/web/logx"
	"github.com/pb0420/trademonke/internal/transport/web/mw"
	v1 "github.com/pb0420/trademonke/internal/transport/web/v1"
)

type Handler struct {
	Log     *log.Logger
	Media   domain.MediaRepo
	Posts   domain.PostsRepo
	Storage domain.MediaStorage
}

type uploadResponse struct {
	Media domain.Media `json:"media"`
}

// Upload serves POST /v1/media: multipart "file" attached to the caller's
// own post. The stored object is content-addressed; the media row carries
// the serving URL.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "media.upload"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}
	if h.Storage == nil {
		logx.Error(h.Log, reqID, op, "storage not configured", domain.ErrUnexpected)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	postID, err := uuid.Parse(r.FormValue("post_id"))
	if err != nil {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	post, err := h.Posts.PostByID(r.Context(), postID)
	if err != nil {
		v1.WriteDomainError(w, r, err)
		return
	}
	if post.UserID != me.ID {
		v1.WriteDomainError(w, r, domain.ErrForbidden)
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		logx.Error(h.Log, reqID, op, "missing file", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	defer file.Close()

	mime := hdr.Header.Get("Content-Type")
	mediaType := domain.MediaPhoto
	if strings.HasPrefix(mime, "video/") {
		mediaType = domain.MediaVideo
	} else if !strings.HasPrefix(mime, "image/") {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	res, err := h.Storage.Put(r.Context(), file, hdr.Filename, mime)
	if err != nil {
		logx.Error(h.Log, reqID, op, "storage put failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	orderIndex := 0
	if n, err := strconv.Atoi(r.FormValue("order_index")); err == nil && n >= 0 {
		orderIndex = n
	}

	m, err := h.Media.AddMedia(r.Context(), domain.Media{
		PostID:     postID,
		URL:        "/v1/media/" + res.StorageKey,
		Type:       mediaType,
		OrderIndex: orderIndex,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "add media failed", err, "post_id", postID)
		_ = h.Storage.Delete(r.Context(), res.StorageKey)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok",
		"media_id", m.ID, "post_id", postID, "size", res.Size)
	v1.WriteOKResponse(w, r, uploadResponse{Media: m})
}

// Serve streams GET /v1/media/{key...} straight from object storage,
// honoring Range so video seeks work.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	const op = "media.serve"
	reqID := mw.RequestIDFromCtx(r.Context())

	if h.Storage == nil {
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	key := r.PathValue("key")
	if key == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	rc, contentLen, contentRange, contentType, etag, err := h.Storage.Get(
		r.Context(), key, r.Header.Get("Range"))
	if err != nil {
		logx.Error(h.Log, reqID, op, "storage get failed", err, "key", key)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(contentLen, 10))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	if contentRange != "" {
		w.Header().Set("Content-Range", contentRange)
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil && !errors.Is(err, io.EOF) {
		h.Log.Printf("stream aborted key=%s: %v", key, err)
	}
}
