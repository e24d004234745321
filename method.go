package webzip

import (
	"context"
	nurl "net/url"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyResponse is returned by a method whose service answered
	// without any usable content.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMissingCredential is returned by a method whose service needs an
	// API key or token that hasn't been configured.
	ErrMissingCredential = errors.New("missing credential")
)

// Kind is the type of artifact produced by an archiving method.
type Kind string

const (
	KindLink       Kind = "link"
	KindPDF        Kind = "pdf"
	KindHTML       Kind = "html"
	KindScreenshot Kind = "screenshot"
)

// Result is the outcome of a successful archiving method.
type Result struct {
	Kind   Kind
	Method string

	// Data is the archived content. Empty for KindLink.
	Data []byte

	// Link and Size are only set for KindLink, as reported by the snapshot service.
	Link string
	Size string

	// Title of the page, when it could be found in Data.
	Title string
}

// Method is a single way of archiving a web page.
type Method interface {
	// Name is the label shown to the user.
	Name() string

	// Description tells the user what the method is doing.
	Description() string

	Archive(ctx context.Context, req *Request) (*Result, error)
}

// serviceURL appends query parameters to a service endpoint.
func serviceURL(endpoint string, params nurl.Values) (string, error) {
	url, err := nurl.Parse(endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "invalid endpoint %q", endpoint)
	}

	query := url.Query()
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	url.RawQuery = query.Encode()
	return url.String(), nil
}
