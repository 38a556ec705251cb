package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Uploader publishes the staged image files of one color under key
type Uploader interface {
	Upload(ctx context.Context, key string, paths []string) error
}

// HTTPUploader posts staged files as one multipart form to the image host.
// Each file is sent under its own base name. An empty batch is still posted.
type HTTPUploader struct {
	BaseURL string
	Secret  string
	Subject string
	client  *resty.Client
}

func NewHTTPUploader(baseURL, secret, subject string, retries int, delay time.Duration) *HTTPUploader {
	client := resty.New().
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}).
		SetRetryCount(retries).
		SetRetryWaitTime(delay).
		SetRetryMaxWaitTime(delay).
		SetTimeout(60 * time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= 500
	})

	return &HTTPUploader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Secret:  secret,
		Subject: subject,
		client:  client,
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, key string, paths []string) error {
	files := make(map[string]string, len(paths))
	for _, p := range paths {
		files[filepath.Base(p)] = p
	}

	req := u.client.R().SetContext(ctx).SetFiles(files)
	if u.Secret != "" {
		token, err := GenerateUploadToken(u.Secret, u.Subject)
		if err != nil {
			return err
		}
		req.SetAuthToken(token)
	}

	resp, err := req.Post(u.BaseURL + "/upload_imgs/" + key)
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if resp.IsError() {
		return fmt.Errorf("upload %s: status %d", key, resp.StatusCode())
	}
	if body := strings.TrimSpace(resp.String()); !strings.EqualFold(body, "success") {
		return fmt.Errorf("upload %s: unexpected response %q", key, body)
	}
	return nil
}

// NoopUploader accepts everything and stores nothing
type NoopUploader struct{}

func (NoopUploader) Upload(ctx context.Context, key string, paths []string) error {
	return nil
}
