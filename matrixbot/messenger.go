package matrixbot

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-shiori/webzip"
	"github.com/pkg/errors"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/format"
	"maunium.net/go/mautrix/id"
)

var (
	maxSendRetries = uint64(3)
	maxElapsedTime = 30 * time.Second
	retryInterval  = 500 * time.Millisecond
)

// Messenger sends webzip replies into Matrix rooms. Chat IDs are room IDs
// and message IDs are event IDs.
type Messenger struct {
	client *mautrix.Client
}

// NewMessenger returns a Messenger which sends through client.
func NewMessenger(client *mautrix.Client) *Messenger {
	return &Messenger{client: client}
}

var _ webzip.Messenger = (*Messenger)(nil)

func (m *Messenger) SendText(ctx context.Context, chatID, text, quotedID string) (string, error) {
	content := format.RenderMarkdown(text, true, false)
	if quotedID != "" {
		content.RelatesTo = &event.RelatesTo{
			InReplyTo: &event.InReplyTo{EventID: id.EventID(quotedID)},
		}
	}

	return m.send(ctx, id.RoomID(chatID), &content)
}

func (m *Messenger) React(ctx context.Context, chatID, messageID, reaction string) error {
	return m.retry(ctx, func() error {
		_, err := m.client.SendReaction(ctx, id.RoomID(chatID), id.EventID(messageID), reaction)
		return err
	})
}

func (m *Messenger) SendDocument(ctx context.Context, chatID string, file *webzip.File) error {
	return m.sendFile(ctx, id.RoomID(chatID), event.MsgFile, file)
}

func (m *Messenger) SendImage(ctx context.Context, chatID string, file *webzip.File) error {
	return m.sendFile(ctx, id.RoomID(chatID), event.MsgImage, file)
}

func (m *Messenger) sendFile(ctx context.Context, roomID id.RoomID, msgType event.MessageType, file *webzip.File) error {
	var upload *mautrix.RespMediaUpload
	err := m.retry(ctx, func() error {
		var err error
		upload, err = m.client.UploadBytes(ctx, file.Data, file.MimeType)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upload %s", file.Name)
	}

	caption := format.RenderMarkdown(file.Caption, true, false)
	content := &event.MessageEventContent{
		MsgType:       msgType,
		Body:          caption.Body,
		Format:        caption.Format,
		FormattedBody: caption.FormattedBody,
		FileName:      file.Name,
		URL:           upload.ContentURI.CUString(),
		Info: &event.FileInfo{
			MimeType: file.MimeType,
			Size:     len(file.Data),
		},
	}

	_, err = m.send(ctx, roomID, content)
	return err
}

func (m *Messenger) send(ctx context.Context, roomID id.RoomID, content *event.MessageEventContent) (string, error) {
	var resp *mautrix.RespSendEvent
	err := m.retry(ctx, func() error {
		var err error
		resp, err = m.client.SendMessageEvent(ctx, roomID, event.EventMessage, content)
		return err
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to send message to %s", roomID)
	}

	return string(resp.EventID), nil
}

// retry repeats op while the homeserver rate limits us. Any other error
// is returned immediately.
func (m *Messenger) retry(ctx context.Context, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = retryInterval
	exp.MaxElapsedTime = maxElapsedTime
	bo := backoff.WithContext(backoff.WithMaxRetries(exp, maxSendRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, mautrix.MLimitExceeded) {
			return backoff.Permanent(err)
		}
		return err
	}, bo)
}
