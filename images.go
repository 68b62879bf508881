package eventsite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eringen/eventsite/content"
)

const (
	jpegQuality   = 80
	uploadsSubdir = "uploads"
)

// ErrUnsupportedMedia is returned for uploads that are neither images nor
// one of the accepted document and video types.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// passthroughTypes are stored byte for byte, keyed by their extension.
var passthroughTypes = map[string]string{
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
}

// MediaStore turns uploads into stored media: images are downscaled and
// re-encoded as JPEG, PDFs and videos are kept as they are. It implements
// content.Uploader for the block editor.
type MediaStore struct {
	store    *Store
	blobs    BlobStore
	maxWidth int
	maxSize  int64
	log      *zap.Logger
	now      func() time.Time
}

// NewMediaStore records uploads in store and writes their bytes to blobs.
func NewMediaStore(store *Store, blobs BlobStore, maxWidth int, log *zap.Logger) *MediaStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &MediaStore{
		store:    store,
		blobs:    blobs,
		maxWidth: maxWidth,
		maxSize:  50 << 20,
		log:      log,
		now:      time.Now,
	}
}

// Upload stores f and returns its public URL.
func (m *MediaStore) Upload(ctx context.Context, f content.Upload) (string, error) {
	mf, err := m.Save(ctx, f)
	if err != nil {
		return "", err
	}
	return mf.URL, nil
}

// Save stores f and returns the recorded media file.
func (m *MediaStore) Save(ctx context.Context, f content.Upload) (MediaFile, error) {
	data, err := io.ReadAll(io.LimitReader(f.Body, m.maxSize+1))
	if err != nil {
		return MediaFile{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > m.maxSize {
		return MediaFile{}, fmt.Errorf("file too large (max %d MB)", m.maxSize>>20)
	}
	if len(data) == 0 {
		return MediaFile{}, errors.New("empty file")
	}

	mf := MediaFile{
		OriginalName: f.Name,
		UploadedAt:   m.now().UTC().Format(time.RFC3339),
	}
	sniffed := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(sniffed, "image/"):
		out, w, h, err := processImage(bytes.NewReader(data), m.maxWidth)
		if err != nil {
			return MediaFile{}, err
		}
		data = out
		mf.ContentType = "image/jpeg"
		mf.Width, mf.Height = w, h
		mf.Key = mediaKey(f.Name, ".jpg")
	default:
		ext, ok := passthroughTypes[sniffed]
		if !ok {
			// Sniffing cannot tell webm from other matroska files.
			if ct := strings.ToLower(f.ContentType); passthroughTypes[ct] != "" {
				sniffed, ext, ok = ct, passthroughTypes[ct], true
			}
		}
		if !ok {
			return MediaFile{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, sniffed)
		}
		mf.ContentType = sniffed
		mf.Key = mediaKey(f.Name, ext)
	}
	mf.Size = len(data)

	url, err := m.blobs.Put(ctx, mf.Key, mf.ContentType, data)
	if err != nil {
		return MediaFile{}, fmt.Errorf("store upload: %w", err)
	}
	mf.URL = url
	if err := m.store.SaveMedia(mf); err != nil {
		return MediaFile{}, err
	}
	m.log.Info("media stored",
		zap.String("key", mf.Key),
		zap.String("type", mf.ContentType),
		zap.Int("size", mf.Size),
	)
	return mf, nil
}

// Delete removes the stored bytes and the library record.
func (m *MediaStore) Delete(ctx context.Context, key string) error {
	if err := m.blobs.Delete(ctx, key); err != nil {
		return err
	}
	return m.store.DeleteMedia(key)
}

// List returns the media library, newest first.
func (m *MediaStore) List() ([]MediaFile, error) {
	return m.store.ListMedia()
}

// mediaKey derives a readable, collision-free key from the original name.
func mediaKey(originalName, ext string) string {
	base := slugifyFilename(originalName)
	if base == "" {
		base = "upload"
	}
	return base + "-" + uuid.NewString()[:8] + ext
}

// processImage decodes an image, downscales it to maxWidth if wider, and
// encodes it as JPEG.
func processImage(src io.Reader, maxWidth int) ([]byte, int, int, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxWidth > 0 && w > maxWidth {
		newH := h * maxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	return Slugify(strings.TrimSuffix(name, ext))
}

func (a *App) handleMediaUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.String(http.StatusBadRequest, "No file provided")
	}
	if file.Size > a.Config.MaxUploadSize {
		return c.String(http.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", a.Config.MaxUploadSize>>20))
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = a.Media.Save(c.Request().Context(), content.Upload{
		Name:        file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Size:        file.Size,
		Body:        src,
	})
	if err != nil {
		a.log.Warn("media upload failed", zap.String("name", file.Filename), zap.Error(err))
		return c.String(http.StatusBadRequest, "Upload failed: "+err.Error())
	}
	return a.renderMediaList(c)
}

func (a *App) handleMediaDelete(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return c.String(http.StatusBadRequest, "Key required")
	}
	if err := a.Media.Delete(c.Request().Context(), key); err != nil {
		return err
	}
	return a.renderMediaList(c)
}

func (a *App) handleMediaList(c echo.Context) error {
	return a.renderMediaList(c)
}

func (a *App) renderMediaList(c echo.Context) error {
	files, err := a.Media.List()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminMedia(files, CsrfToken(c)))
}
