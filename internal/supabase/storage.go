package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Upload stores an object, replacing any existing one at path.
func (c *Client) Upload(ctx context.Context, bucket, path string, data io.Reader, contentType string) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, data)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Message: string(body)}
	}

	return nil
}

func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path)
}
