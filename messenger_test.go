package webzip

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

type sentMessage struct {
	kind     string // text, react, document or image
	chatID   string
	text     string
	quotedID string
	targetID string
	file     *File
}

// recordingMessenger records everything sent to it, in order.
type recordingMessenger struct {
	sync.Mutex
	sent   []sentMessage
	nextID int64

	failReaction string
	failDocument bool
	failText     string
}

func (m *recordingMessenger) SendText(_ context.Context, chatID, text, quotedID string) (string, error) {
	m.Lock()
	defer m.Unlock()

	if m.failText != "" && strings.Contains(text, m.failText) {
		return "", errors.New("text rejected")
	}

	id := fmt.Sprintf("msg-%d", atomic.AddInt64(&m.nextID, 1))
	m.sent = append(m.sent, sentMessage{kind: "text", chatID: chatID, text: text, quotedID: quotedID})
	return id, nil
}

func (m *recordingMessenger) React(_ context.Context, chatID, messageID, reaction string) error {
	m.Lock()
	defer m.Unlock()

	if reaction == m.failReaction {
		return errors.New("reaction rejected")
	}

	m.sent = append(m.sent, sentMessage{kind: "react", chatID: chatID, text: reaction, targetID: messageID})
	return nil
}

func (m *recordingMessenger) SendDocument(_ context.Context, chatID string, file *File) error {
	m.Lock()
	defer m.Unlock()

	if m.failDocument {
		return errors.New("document rejected")
	}

	m.sent = append(m.sent, sentMessage{kind: "document", chatID: chatID, file: file})
	return nil
}

func (m *recordingMessenger) SendImage(_ context.Context, chatID string, file *File) error {
	m.Lock()
	defer m.Unlock()

	m.sent = append(m.sent, sentMessage{kind: "image", chatID: chatID, file: file})
	return nil
}

func (m *recordingMessenger) ofKind(kind string) []sentMessage {
	m.Lock()
	defer m.Unlock()

	var result []sentMessage
	for _, msg := range m.sent {
		if msg.kind == kind {
			result = append(result, msg)
		}
	}
	return result
}

func (m *recordingMessenger) reactions() []string {
	var result []string
	for _, msg := range m.ofKind("react") {
		result = append(result, msg.text)
	}
	return result
}

func (m *recordingMessenger) lastText() string {
	texts := m.ofKind("text")
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1].text
}
