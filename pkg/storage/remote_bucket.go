package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RemoteBucket uploads objects to the hosted storage service's REST API.
type RemoteBucket struct {
	baseURL    string
	bucket     string
	serviceKey string
	client     *http.Client
}

// NewRemoteBucket builds a client for `{baseURL}/object/{bucket}/...`.
func NewRemoteBucket(baseURL, bucket, serviceKey string, client *http.Client) *RemoteBucket {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RemoteBucket{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		client:     client,
	}
}

// Upload sends the object body and returns the public URL of the stored object.
func (b *RemoteBucket) Upload(ctx context.Context, obj Object) (string, error) {
	if b.baseURL == "" || b.bucket == "" {
		return "", fmt.Errorf("remote bucket not configured")
	}
	endpoint := fmt.Sprintf("%s/object/%s/%s", b.baseURL, b.bucket, obj.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, obj.Body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+b.serviceKey)
	req.Header.Set("apikey", b.serviceKey)
	req.Header.Set("x-upsert", "false")
	if obj.Size > 0 {
		req.ContentLength = obj.Size
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", obj.Name, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: status %d: %s", obj.Name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return b.PublicURL(obj.Name), nil
}

// PublicURL returns the anonymous read URL for an object name.
func (b *RemoteBucket) PublicURL(name string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", b.baseURL, b.bucket, name)
}
