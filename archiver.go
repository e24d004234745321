// Package webzip archives web pages on behalf of a chat command by trying
// a chain of archiving services until one of them succeeds.
package webzip

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

var (
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultCommand    = ".webzip"
	defaultBotName    = "WebZIP"
	defaultMaxFile    = int64(50 * 1024 * 1024)
	defaultAPITimeout = 45 * time.Second
)

// Default endpoints of the third-party archiving services.
const (
	DefaultSnapshotEndpoint   = "https://singlefile-psi.vercel.app/"
	DefaultPDFEndpoint        = "https://api.html2pdf.app/v1/generate"
	DefaultScreenshotEndpoint = "https://screenshotapi.net/api/v1/screenshot"
)

// Archiver is the core of webzip. It handles the archive command by
// trying each archiving method in order until one of them succeeds.
type Archiver struct {
	Command string
	BotName string

	UserAgent        string
	EnableLog        bool
	EnableVerboseLog bool

	SnapshotEndpoint   string
	PDFEndpoint        string
	PDFAPIKey          string
	ScreenshotEndpoint string
	ScreenshotToken    string

	SnapshotTimeout   time.Duration
	PDFTimeout        time.Duration
	HTMLTimeout       time.Duration
	ScreenshotTimeout time.Duration
	DownloadTimeout   time.Duration

	Transport           http.RoundTripper
	SkipTLSVerification bool
	MaxFileSize         int64

	// Methods overrides the default fallback chain.
	Methods []Method

	isValidated bool
	now         func() time.Time
}

// Validate prepares Archiver to make sure its configurations
// are valid and ready to use. Must be run at least once before
// any command is handled.
func (arc *Archiver) Validate() {
	if arc.Command == "" {
		arc.Command = defaultCommand
	}

	if arc.BotName == "" {
		arc.BotName = defaultBotName
	}

	if arc.UserAgent == "" {
		arc.UserAgent = defaultUserAgent
	}

	if arc.SnapshotEndpoint == "" {
		arc.SnapshotEndpoint = DefaultSnapshotEndpoint
	}

	if arc.PDFEndpoint == "" {
		arc.PDFEndpoint = DefaultPDFEndpoint
	}

	if arc.ScreenshotEndpoint == "" {
		arc.ScreenshotEndpoint = DefaultScreenshotEndpoint
	}

	if arc.SnapshotTimeout <= 0 {
		arc.SnapshotTimeout = defaultAPITimeout
	}

	if arc.PDFTimeout <= 0 {
		arc.PDFTimeout = defaultAPITimeout
	}

	if arc.HTMLTimeout <= 0 {
		arc.HTMLTimeout = 30 * time.Second
	}

	if arc.ScreenshotTimeout <= 0 {
		arc.ScreenshotTimeout = defaultAPITimeout
	}

	if arc.DownloadTimeout <= 0 {
		arc.DownloadTimeout = time.Minute
	}

	if arc.MaxFileSize <= 0 {
		arc.MaxFileSize = defaultMaxFile
	}

	if arc.Transport == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if arc.SkipTLSVerification {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		arc.Transport = transport
	}

	if len(arc.Methods) == 0 {
		arc.Methods = []Method{
			&snapshotMethod{arc: arc},
			&pdfMethod{arc: arc},
			&htmlMethod{arc: arc},
			&screenshotMethod{arc: arc},
		}
	}

	if arc.now == nil {
		arc.now = time.Now
	}

	arc.isValidated = true
}

// HandleCommand handles a single archive command. Invalid input is answered
// with a help message. Failures of the archiving methods are never returned,
// they end in the "all methods failed" message instead. Any other error is
// reported to the chat and returned so the caller can log it.
func (arc *Archiver) HandleCommand(ctx context.Context, m Messenger, msg Message) (err error) {
	// Make sure archiver has been validated
	if !arc.isValidated {
		return errors.New("archiver hasn't been validated")
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}

		if err != nil {
			arc.reportUnexpected(ctx, m, msg, err)
		}
	}()

	req, err := ParseRequest(msg)
	switch {
	case errors.Is(err, ErrMissingURL):
		_, err = m.SendText(ctx, msg.ChatID, usageMessage(arc.Command), "")
		return err
	case errors.Is(err, ErrInvalidURL):
		_, err = m.SendText(ctx, msg.ChatID, invalidURLMessage(), "")
		return err
	case err != nil:
		return err
	}

	return arc.archive(ctx, m, req)
}

// archive runs the fallback chain for a validated request.
func (arc *Archiver) archive(ctx context.Context, m Messenger, req *Request) error {
	arc.logf(req, "archival started")

	err := m.React(ctx, req.ChatID, req.MessageID, ReactionProcessing)
	if err != nil {
		return errors.Wrap(err, "failed to react")
	}

	statusID, err := m.SendText(ctx, req.ChatID, processingMessage(req), "")
	if err != nil {
		return errors.Wrap(err, "failed to send status")
	}

	for i, method := range arc.Methods {
		result := arc.attempt(ctx, m, req, method, i+1, statusID)
		if result == nil {
			continue
		}

		// Snapshot results still need their file downloaded
		if result.Kind == KindLink {
			if err := arc.deliverLink(ctx, m, req, result, statusID); err != nil {
				return err
			}
		}

		arc.logf(req, "archival finished with %s", result.Method)
		return m.React(ctx, req.ChatID, req.MessageID, ReactionSuccess)
	}

	arc.warnf(req, "all archiving methods failed")
	if err := m.React(ctx, req.ChatID, req.MessageID, ReactionFailure); err != nil {
		return errors.Wrap(err, "failed to react")
	}

	_, err = m.SendText(ctx, req.ChatID, failureMessage(req), statusID)
	return err
}

// attempt runs a single method in its own failure scope. It returns nil
// when the method failed; the error is logged and never reaches the user.
// Results other than links are delivered before returning.
func (arc *Archiver) attempt(ctx context.Context, m Messenger, req *Request, method Method, index int, statusID string) *Result {
	status := methodStatusMessage(index, len(arc.Methods), method)
	if _, err := m.SendText(ctx, req.ChatID, status, statusID); err != nil {
		arc.methodFailed(req, method, err)
		return nil
	}

	result, err := method.Archive(ctx, req)
	if err == nil && result == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		arc.methodFailed(req, method, err)
		return nil
	}

	if result.Method == "" {
		result.Method = method.Name()
	}

	if result.Kind != KindLink {
		if err := arc.deliver(ctx, m, req, result); err != nil {
			arc.methodFailed(req, method, err)
			return nil
		}
	}

	return result
}

func (arc *Archiver) reportUnexpected(ctx context.Context, m Messenger, msg Message, cause error) {
	arc.errorf(cause, "unexpected error while handling %q", msg.Text)

	if err := m.React(ctx, msg.ChatID, msg.MessageID, ReactionFailure); err != nil {
		arc.errorf(err, "failed to react")
	}

	if _, err := m.SendText(ctx, msg.ChatID, unexpectedErrorMessage(cause), ""); err != nil {
		arc.errorf(err, "failed to report unexpected error")
	}
}
