package webzip

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// downloadFile fetches url and returns its body and content type. Non-2xx
// responses and bodies bigger than MaxFileSize are errors.
func (arc *Archiver) downloadFile(ctx context.Context, req *Request, url string, headers map[string]string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	httpReq.Header.Set("User-Agent", arc.UserAgent)
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	arc.logURL(req, url)
	client := &http.Client{
		Transport: arc.Transport,
		Jar:       req.cookieJar(),
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, "", errors.Wrap(err, "download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", errors.Errorf("failed to fetch with status code: %d", resp.StatusCode)
	}

	lr := &io.LimitedReader{R: resp.Body, N: arc.MaxFileSize + 1}
	body, err := io.ReadAll(lr)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to read response")
	}

	if lr.N <= 0 {
		return nil, "", errors.Errorf("response is larger than %d bytes", arc.MaxFileSize)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// stripQuery removes the query of a URL so credentials never end up in logs.
func stripQuery(url string) string {
	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		return url[:idx]
	}
	return url
}
