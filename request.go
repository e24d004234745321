package webzip

import (
	"net/http/cookiejar"
	nurl "net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

var (
	// ErrMissingURL is returned when the command has no argument.
	ErrMissingURL = errors.New("url is not specified")

	// ErrInvalidURL is returned when the argument is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("url is not valid")
)

// Message is an incoming chat message which invoked the command.
type Message struct {
	ChatID    string
	MessageID string
	Sender    string
	Text      string
}

// Request is data of a single archival request.
type Request struct {
	ID        string
	RawURL    string
	URL       *nurl.URL
	ChatID    string
	MessageID string
	Sender    string

	jar *cookiejar.Jar
}

// ParseRequest extracts the target URL from the message text. The first
// word of the text is the command itself, the URL is the word after it.
func ParseRequest(msg Message) (*Request, error) {
	fields := strings.Fields(msg.Text)
	if len(fields) < 2 {
		return nil, ErrMissingURL
	}

	rawURL := fields[1]
	url, err := parseTargetURL(rawURL)
	if err != nil {
		return nil, err
	}

	return &Request{
		ID:        uuid.NewString(),
		RawURL:    rawURL,
		URL:       url,
		ChatID:    msg.ChatID,
		MessageID: msg.MessageID,
		Sender:    msg.Sender,
	}, nil
}

func parseTargetURL(s string) (*nurl.URL, error) {
	url, err := nurl.ParseRequestURI(s)
	if err != nil || url.Hostname() == "" {
		return nil, errors.Wrapf(ErrInvalidURL, "%q", s)
	}

	switch strings.ToLower(url.Scheme) {
	case "http", "https":
		return url, nil
	default:
		return nil, errors.Wrapf(ErrInvalidURL, "%q has unsupported scheme", s)
	}
}

// cookieJar returns the cookie jar of this request. Every request gets
// its own jar so cookies never leak between users.
func (r *Request) cookieJar() *cookiejar.Jar {
	if r.jar == nil {
		r.jar, _ = cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	}
	return r.jar
}
