package webzip

import (
	"context"
	nurl "net/url"

	"github.com/pkg/errors"
)

// screenshotMethod captures a full-page screenshot with screenshotapi.
type screenshotMethod struct {
	arc *Archiver
}

func (m *screenshotMethod) Name() string { return "Screenshot Capture" }

func (m *screenshotMethod) Description() string { return "Taking full-page screenshot..." }

func (m *screenshotMethod) Archive(ctx context.Context, req *Request) (*Result, error) {
	if m.arc.ScreenshotToken == "" {
		return nil, errors.Wrap(ErrMissingCredential, "screenshot token is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, m.arc.ScreenshotTimeout)
	defer cancel()

	url, err := serviceURL(m.arc.ScreenshotEndpoint, nurl.Values{
		"url":   {req.RawURL},
		"token": {m.arc.ScreenshotToken},
	})
	if err != nil {
		return nil, err
	}

	body, _, err := m.arc.downloadFile(ctx, req, url, nil)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, errors.Wrap(ErrEmptyResponse, "screenshot service returned no content")
	}

	return &Result{Kind: KindScreenshot, Method: m.Name(), Data: body}, nil
}
