// Package device talks to the robots over their local HTTP endpoint.
package device

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/botlab/robot-access/internal/core/domain"
)

const defaultPushTimeout = 30 * time.Second

// HTTPPusher uploads programs to a robot's /push_code endpoint as a
// multipart form with a single "file" part.
type HTTPPusher struct {
	addrs  map[domain.Resource]string
	client *http.Client
	log    zerolog.Logger
}

// NewHTTPPusher maps each resource to its host:port address.
func NewHTTPPusher(addrs map[domain.Resource]string, client *http.Client, log zerolog.Logger) *HTTPPusher {
	if client == nil {
		client = &http.Client{Timeout: defaultPushTimeout}
	}
	return &HTTPPusher{addrs: addrs, client: client, log: log}
}

func (p *HTTPPusher) Push(ctx context.Context, resource domain.Resource, filename string, body io.Reader) error {
	addr, ok := p.addrs[resource]
	if !ok || addr == "" {
		return fmt.Errorf("%w: no address configured for %q", domain.ErrInvalidInput, resource)
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	url := "http://" + addr + "/push_code"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		_ = pr.Close()
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		_ = pr.Close()
		return fmt.Errorf("push code to %s: %w", resource, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push code to %s: robot answered %s", resource, resp.Status)
	}

	p.log.Info().Str("resource", string(resource)).Str("filename", filename).Msg("code pushed")
	return nil
}
