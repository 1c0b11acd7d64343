package providers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"postit/internal/models"
	"postit/internal/structures"
	"strings"

	"github.com/google/uuid"
)

const defaultUploadMaxSize = 10 << 20

var uploadCategories = map[string]bool{
	"avatar": true,
	"banner": true,
	"media":  true,
}

type UploadProviderInterface interface {
	// Save stores r under category and returns the public URL of the file.
	Save(category, filename string, r io.Reader) (string, error)
	Dir() string
	// MaxSize is the largest file Save accepts, in bytes.
	MaxSize() int64
}

type UploadProvider struct {
	dir       string
	publicURL string
	maxSize   int64
}

func NewUploadProvider(conf *structures.Config) UploadProviderInterface {
	maxSize := conf.Uploads.MaxSize
	if maxSize <= 0 {
		maxSize = defaultUploadMaxSize
	}
	return &UploadProvider{
		dir:       conf.Uploads.Dir,
		publicURL: strings.TrimRight(conf.Feed.PublicURL, "/"),
		maxSize:   maxSize,
	}
}

func (up *UploadProvider) Dir() string {
	return up.dir
}

func (up *UploadProvider) MaxSize() int64 {
	return up.maxSize
}

func (up *UploadProvider) Save(category, filename string, r io.Reader) (string, error) {
	if !uploadCategories[category] {
		return "", &models.Error{Kind: models.KindValidation, Msg: fmt.Sprintf("unknown upload category %q", category)}
	}

	dir := filepath.Join(up.dir, category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + sanitizeExt(filename)
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, up.maxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > up.maxSize {
		err = &models.Error{Kind: models.KindValidation, Msg: fmt.Sprintf("file exceeds %d bytes", up.maxSize)}
	}
	if err != nil {
		_ = os.Remove(path)
		var modelErr *models.Error
		if errors.As(err, &modelErr) {
			return "", err
		}
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s", up.publicURL, category, name), nil
}

// sanitizeExt keeps a short alphanumeric extension and drops anything else.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
