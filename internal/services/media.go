package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"astro-admin-go/internal/apiclient"
	"astro-admin-go/internal/models"
	"astro-admin-go/internal/store"

	"github.com/sirupsen/logrus"
)

const (
	thumbnailField    = "thumbnail"
	MaxThumbnailBytes = 5 << 20
)

var thumbnailTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Uploader sends multipart requests; *apiclient.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, method, path string, fields map[string]string, file apiclient.File, out any) error
}

// UploadResult describes a stored thumbnail.
type UploadResult struct {
	Article     models.Article `json:"article"`
	ContentType string         `json:"contentType"`
	SizeBytes   int64          `json:"sizeBytes"`
	SHA256      string         `json:"sha256"`
}

type Media struct {
	api      Uploader
	articles *store.Slice[models.Article]
	log      logrus.FieldLogger
}

func NewMedia(api Uploader, articles *store.Slice[models.Article], log logrus.FieldLogger) *Media {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Media{api: api, articles: articles, log: log}
}

// UploadThumbnail checks body is a non-empty image under the size limit,
// attaches it to the article and reloads the article into the store.
func (m *Media) UploadThumbnail(ctx context.Context, articleID, filename string, body io.Reader) (UploadResult, error) {
	if articleID == "" {
		return UploadResult{}, ErrBadRequest("Article id is required.")
	}
	var buf bytes.Buffer
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(&buf, hasher), io.LimitReader(body, MaxThumbnailBytes+1))
	if err != nil {
		return UploadResult{}, WrapError(err, "read thumbnail")
	}
	if size == 0 {
		return UploadResult{}, ErrBadRequest("File is empty.")
	}
	if size > MaxThumbnailBytes {
		return UploadResult{}, ErrBadRequest("File is larger than 5 MB.")
	}
	contentType := http.DetectContentType(buf.Bytes())
	ext, ok := thumbnailTypes[contentType]
	if !ok {
		return UploadResult{}, ErrBadRequest(fmt.Sprintf("Unsupported image type %s.", contentType))
	}
	if filename = filepath.Base(filename); filename == "." || filename == string(filepath.Separator) {
		filename = "thumbnail" + ext
	}
	sum := hex.EncodeToString(hasher.Sum(nil))

	path := "/articles/" + url.PathEscape(articleID) + "/"
	if err := m.api.Upload(ctx, http.MethodPatch, path, nil, apiclient.File{
		Field:       thumbnailField,
		Name:        filename,
		ContentType: contentType,
		Reader:      &buf,
	}, nil); err != nil {
		return UploadResult{}, err
	}
	m.log.WithFields(logrus.Fields{
		"article":      articleID,
		"content_type": contentType,
		"size":         size,
		"sha256":       sum,
	}).Info("thumbnail uploaded")

	article, err := m.articles.Get(ctx, articleID)
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{Article: article, ContentType: contentType, SizeBytes: size, SHA256: sum}, nil
}

func (m *Media) UploadThumbnailFile(ctx context.Context, articleID, path string) (UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return UploadResult{}, WrapError(err, "open thumbnail")
	}
	defer file.Close()
	return m.UploadThumbnail(ctx, articleID, filepath.Base(path), file)
}
