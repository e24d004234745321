package webzip

import (
	"context"

	"github.com/pkg/errors"
)

// htmlMethod downloads the raw HTML of the page itself, without any of
// its external resources.
type htmlMethod struct {
	arc *Archiver
}

func (m *htmlMethod) Name() string { return "Simple HTML Download" }

func (m *htmlMethod) Description() string { return "Downloading raw HTML..." }

func (m *htmlMethod) Archive(ctx context.Context, req *Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, m.arc.HTMLTimeout)
	defer cancel()

	body, _, err := m.arc.downloadFile(ctx, req, req.URL.String(), map[string]string{
		"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	})
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, errors.Wrap(ErrEmptyResponse, "page has no content")
	}

	return &Result{
		Kind:   KindHTML,
		Method: m.Name(),
		Data:   body,
		Title:  pageTitle(body),
	}, nil
}
