package webzip

import (
	"context"
	nurl "net/url"

	"github.com/pkg/errors"
)

// pdfMethod converts the page into PDF using the html2pdf service.
type pdfMethod struct {
	arc *Archiver
}

func (m *pdfMethod) Name() string { return "PDF Conversion" }

func (m *pdfMethod) Description() string { return "Converting to PDF..." }

func (m *pdfMethod) Archive(ctx context.Context, req *Request) (*Result, error) {
	if m.arc.PDFAPIKey == "" {
		return nil, errors.Wrap(ErrMissingCredential, "pdf api key is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, m.arc.PDFTimeout)
	defer cancel()

	url, err := serviceURL(m.arc.PDFEndpoint, nurl.Values{
		"url":    {req.RawURL},
		"apiKey": {m.arc.PDFAPIKey},
	})
	if err != nil {
		return nil, err
	}

	body, _, err := m.arc.downloadFile(ctx, req, url, nil)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, errors.Wrap(ErrEmptyResponse, "pdf service returned no content")
	}

	return &Result{Kind: KindPDF, Method: m.Name(), Data: body}, nil
}
