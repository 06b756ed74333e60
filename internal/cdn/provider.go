// Package cdn talks to the image CDN that holds the menu photos. Two
// backends exist: ImageKit (REST) and Cloudinary (SDK).
package cdn

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var ErrNotConfigured = errors.New("cdn is not configured")

// File is a remote asset. Path is the folder the file lives in, e.g.
// "/products". Folder entries carry a Name ending in "/".
type File struct {
	ID   string `json:"fileId"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Path string `json:"path"`
}

// IsDir reports whether f is a folder marker rather than an image.
func (f File) IsDir() bool { return strings.HasSuffix(f.Name, "/") }

// UploadAuth is handed to browsers so they can upload straight to the CDN.
// Only the fields relevant to the active provider are set.
type UploadAuth struct {
	Provider    string `json:"provider"`
	Token       string `json:"token,omitempty"`
	Expire      int64  `json:"expire,omitempty"`
	Signature   string `json:"signature"`
	PublicKey   string `json:"publicKey,omitempty"`
	URLEndpoint string `json:"urlEndpoint,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"`
	APIKey      string `json:"apiKey,omitempty"`
	CloudName   string `json:"cloudName,omitempty"`
	Folder      string `json:"folder,omitempty"`
}

type Provider interface {
	// ListFiles returns every file in the media library. Paging is handled
	// inside one call.
	ListFiles(ctx context.Context) ([]File, error)
	AuthParams(ctx context.Context) (UploadAuth, error)
	Upload(ctx context.Context, r io.Reader, fileName, folder string) (File, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string

	ImageKitPublicKey   string
	ImageKitPrivateKey  string
	ImageKitURLEndpoint string

	CloudinaryURL string
}

// New returns the configured provider, or ErrNotConfigured when the selected
// backend lacks credentials.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "cloudinary":
		c, err := NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "", "imagekit":
		ik, err := NewImageKit(cfg.ImageKitPublicKey, cfg.ImageKitPrivateKey, cfg.ImageKitURLEndpoint)
		if err != nil {
			return nil, err
		}
		return ik, nil
	default:
		return nil, ErrNotConfigured
	}
}

// Unconfigured is the Provider used when credentials are missing. Every call
// fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) ListFiles(context.Context) ([]File, error) { return nil, ErrNotConfigured }
func (Unconfigured) AuthParams(context.Context) (UploadAuth, error) {
	return UploadAuth{}, ErrNotConfigured
}
func (Unconfigured) Upload(context.Context, io.Reader, string, string) (File, error) {
	return File{}, ErrNotConfigured
}

// normalizeFolder turns "products", "/products/" and "" into "/products" and "/".
func normalizeFolder(folder string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return "/"
	}
	return "/" + folder
}

// folderOf returns the directory of a slash-separated file path.
func folderOf(filePath string) string {
	return normalizeFolder(path.Dir("/" + strings.TrimPrefix(filePath, "/")))
}
