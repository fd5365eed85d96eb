// Package netx holds small HTTP helpers for talking to object storage.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultClient is used when PutObject is given a nil client.
var DefaultClient = &http.Client{Timeout: 2 * time.Minute}

// PutObject uploads body to a presigned S3 PUT URL. contentType must match
// the one the URL was signed for.
func PutObject(ctx context.Context, c *http.Client, url, contentType string, body []byte) error {
	if c == nil {
		c = DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}
