package cdn

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	imageKitAPI       = "https://api.imagekit.io/v1"
	imageKitUploadAPI = "https://upload.imagekit.io/api/v1/files/upload"
	imageKitPageSize  = 1000
	uploadAuthTTL     = 30 * time.Minute
)

// ImageKit is a Provider backed by the ImageKit REST API. Requests are
// authenticated with HTTP basic auth, private key as user, empty password.
type ImageKit struct {
	PublicKey   string
	PrivateKey  string
	URLEndpoint string

	// Overridable in tests.
	APIBase   string
	UploadURL string
	Client    *http.Client
	Now       func() time.Time
	NewToken  func() string
}

var _ Provider = (*ImageKit)(nil)

func NewImageKit(publicKey, privateKey, urlEndpoint string) (*ImageKit, error) {
	if publicKey == "" || privateKey == "" || urlEndpoint == "" {
		return nil, ErrNotConfigured
	}
	return &ImageKit{
		PublicKey:   publicKey,
		PrivateKey:  privateKey,
		URLEndpoint: urlEndpoint,
		APIBase:     imageKitAPI,
		UploadURL:   imageKitUploadAPI,
		Client:      &http.Client{Timeout: 30 * time.Second},
		Now:         time.Now,
		NewToken:    uuid.NewString,
	}, nil
}

type imageKitFile struct {
	FileID   string `json:"fileId"`
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
	URL      string `json:"url"`
	Type     string `json:"type"`
}

func (f imageKitFile) toFile() File {
	out := File{ID: f.FileID, Name: f.Name, URL: f.URL, Path: folderOf(f.FilePath)}
	if f.Type == "folder" && !strings.HasSuffix(out.Name, "/") {
		out.Name += "/"
	}
	return out
}

type imageKitError struct {
	Message string `json:"message"`
}

func (ik *ImageKit) do(req *http.Request, out any) error {
	req.SetBasicAuth(ik.PrivateKey, "")
	resp, err := ik.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var e imageKitError
		_ = json.Unmarshal(body, &e)
		if e.Message == "" {
			e.Message = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("imagekit: %s: %s", resp.Status, e.Message)
	}
	return json.Unmarshal(body, out)
}

func (ik *ImageKit) ListFiles(ctx context.Context) ([]File, error) {
	var out []File
	for skip := 0; ; skip += imageKitPageSize {
		url := ik.APIBase + "/files?skip=" + strconv.Itoa(skip) + "&limit=" + strconv.Itoa(imageKitPageSize)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		var page []imageKitFile
		if err := ik.do(req, &page); err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		for _, f := range page {
			out = append(out, f.toFile())
		}
		if len(page) < imageKitPageSize {
			return out, nil
		}
	}
}

// Sign returns hex(HMAC-SHA1(privateKey, token+expire)).
func (ik *ImageKit) Sign(token string, expire int64) string {
	mac := hmac.New(sha1.New, []byte(ik.PrivateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (ik *ImageKit) AuthParams(ctx context.Context) (UploadAuth, error) {
	token := ik.NewToken()
	expire := ik.Now().Add(uploadAuthTTL).Unix()
	return UploadAuth{
		Provider:    "imagekit",
		Token:       token,
		Expire:      expire,
		Signature:   ik.Sign(token, expire),
		PublicKey:   ik.PublicKey,
		URLEndpoint: ik.URLEndpoint,
	}, nil
}

func (ik *ImageKit) Upload(ctx context.Context, r io.Reader, fileName, folder string) (File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return File{}, err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return File{}, fmt.Errorf("read upload: %w", err)
	}
	_ = mw.WriteField("fileName", fileName)
	_ = mw.WriteField("folder", normalizeFolder(folder))
	_ = mw.WriteField("useUniqueFileName", "true")
	if err := mw.Close(); err != nil {
		return File{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ik.UploadURL, &buf)
	if err != nil {
		return File{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var res imageKitFile
	if err := ik.do(req, &res); err != nil {
		return File{}, fmt.Errorf("upload %s: %w", fileName, err)
	}
	return res.toFile(), nil
}
