package webzip

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// deliver sends the artifact of a successful method to the chat.
func (arc *Archiver) deliver(ctx context.Context, m Messenger, req *Request, result *Result) error {
	now := arc.now()

	switch result.Kind {
	case KindPDF:
		return m.SendDocument(ctx, req.ChatID, &File{
			Name:     createFileName(req.URL, "", ".pdf", now),
			MimeType: "application/pdf",
			Data:     result.Data,
			Caption:  pdfCaption(arc.BotName, req, result),
		})

	case KindHTML:
		return m.SendDocument(ctx, req.ChatID, &File{
			Name:     createFileName(req.URL, "", ".html", now),
			MimeType: "text/html",
			Data:     result.Data,
			Caption:  htmlCaption(arc.BotName, req, result),
		})

	case KindScreenshot:
		mimeType := http.DetectContentType(result.Data)
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = "image/png"
		}

		return m.SendImage(ctx, req.ChatID, &File{
			Name:     createFileName(req.URL, "_screenshot", ".png", now),
			MimeType: mimeType,
			Data:     result.Data,
			Caption:  screenshotCaption(arc.BotName, req, result),
		})

	default:
		return errors.Errorf("result kind %q can't be delivered directly", result.Kind)
	}
}

// deliverLink downloads the file behind a snapshot link and sends it as
// a document. If that fails, the link itself is sent instead. Only the
// error of that last fallback is returned.
func (arc *Archiver) deliverLink(ctx context.Context, m Messenger, req *Request, result *Result, statusID string) error {
	err := arc.deliverSnapshot(ctx, m, req, result, statusID)
	if err == nil {
		return nil
	}

	arc.warnf(req, "snapshot download failed: %v", err)
	_, err = m.SendText(ctx, req.ChatID, snapshotLinkMessage(req, result), "")
	return err
}

func (arc *Archiver) deliverSnapshot(ctx context.Context, m Messenger, req *Request, result *Result, statusID string) error {
	_, err := m.SendText(ctx, req.ChatID, snapshotReadyMessage(req, result), statusID)
	if err != nil {
		return err
	}

	dlCtx, cancel := context.WithTimeout(ctx, arc.DownloadTimeout)
	defer cancel()

	data, _, err := arc.downloadFile(dlCtx, req, result.Link, nil)
	if err != nil {
		return err
	}

	return m.SendDocument(ctx, req.ChatID, &File{
		Name:     createFileName(req.URL, "_full", ".html", arc.now()),
		MimeType: "text/html",
		Data:     data,
		Caption:  snapshotCaption(arc.BotName, req, data),
	})
}
