package webzip

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	msg := Message{ChatID: "room", MessageID: "event", Sender: "bob", Text: ".webzip   https://example.com/a?b=c  trailing words"}

	req, err := ParseRequest(msg)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a?b=c", req.RawURL)
	assert.Equal(t, "example.com", req.URL.Hostname())
	assert.Equal(t, "room", req.ChatID)
	assert.Equal(t, "event", req.MessageID)
	assert.Equal(t, "bob", req.Sender)
	assert.NotEmpty(t, req.ID)

	other, err := ParseRequest(msg)
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, other.ID)
}

func TestParseRequest_Errors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		for _, text := range []string{"", ".webzip", ".webzip \t\n"} {
			_, err := ParseRequest(Message{Text: text})
			assert.True(t, errors.Is(err, ErrMissingURL), text)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		for _, text := range []string{".webzip not a url", ".webzip itIsNotAURL", ".webzip mailto:someone@example.com", ".webzip http://"} {
			_, err := ParseRequest(Message{Text: text})
			assert.True(t, errors.Is(err, ErrInvalidURL), text)
		}
	})
}

func TestRequest_CookieJar(t *testing.T) {
	req := &Request{}
	jar := req.cookieJar()
	assert.NotNil(t, jar)
	assert.Same(t, jar, req.cookieJar())
	assert.NotSame(t, jar, (&Request{}).cookieJar())
}
