package matrixbot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-shiori/webzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

func TestIsCommand(t *testing.T) {
	assert.True(t, isCommand(".webzip https://example.com", ".webzip"))
	assert.True(t, isCommand("  .WebZip", ".webzip"))
	assert.False(t, isCommand("please .webzip https://example.com", ".webzip"))
	assert.False(t, isCommand(".webzipper https://example.com", ".webzip"))
	assert.False(t, isCommand("", ".webzip"))
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Config{Homeserver: "https://matrix.example.org"}, &webzip.Archiver{})
	assert.Error(t, err)
}

func newTestBot(t *testing.T) *Bot {
	t.Helper()

	arc := &webzip.Archiver{}
	arc.Validate()

	bot, err := New(Config{
		Homeserver:  "https://matrix.example.org",
		UserID:      "@webzip:example.org",
		AccessToken: "token",
	}, arc)
	require.NoError(t, err)
	return bot
}

func textEvent(sender id.UserID, content *event.MessageEventContent) *event.Event {
	return &event.Event{
		Sender:  sender,
		RoomID:  "!room:example.org",
		ID:      "$event",
		Type:    event.EventMessage,
		Content: event.Content{Parsed: content},
	}
}

func TestBot_CommandMessage(t *testing.T) {
	bot := newTestBot(t)
	assert.NotNil(t, bot.sem)

	t.Run("command", func(t *testing.T) {
		msg, ok := bot.commandMessage(textEvent("@alice:example.org", &event.MessageEventContent{
			MsgType: event.MsgText,
			Body:    ".webzip https://example.com",
		}))
		require.True(t, ok)
		assert.Equal(t, webzip.Message{
			ChatID:    "!room:example.org",
			MessageID: "$event",
			Sender:    "@alice:example.org",
			Text:      ".webzip https://example.com",
		}, msg)
	})

	t.Run("own message", func(t *testing.T) {
		_, ok := bot.commandMessage(textEvent("@webzip:example.org", &event.MessageEventContent{
			MsgType: event.MsgText,
			Body:    ".webzip https://example.com",
		}))
		assert.False(t, ok)
	})

	t.Run("notice", func(t *testing.T) {
		_, ok := bot.commandMessage(textEvent("@alice:example.org", &event.MessageEventContent{
			MsgType: event.MsgNotice,
			Body:    ".webzip https://example.com",
		}))
		assert.False(t, ok)
	})

	t.Run("other text", func(t *testing.T) {
		_, ok := bot.commandMessage(textEvent("@alice:example.org", &event.MessageEventContent{
			MsgType: event.MsgText,
			Body:    "hello",
		}))
		assert.False(t, ok)
	})

	t.Run("edit", func(t *testing.T) {
		content := &event.MessageEventContent{
			MsgType:   event.MsgText,
			Body:      ".webzip https://example.com",
			RelatesTo: &event.RelatesTo{Type: event.RelReplace, EventID: "$original"},
		}
		_, ok := bot.commandMessage(textEvent("@alice:example.org", content))
		assert.False(t, ok)
	})
}

// blockingMethod succeeds once it receives from release.
type blockingMethod struct {
	started chan string
	release chan struct{}
}

func newBlockingMethod() *blockingMethod {
	return &blockingMethod{
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
}

func (m *blockingMethod) Name() string { return "Blocking" }

func (m *blockingMethod) Description() string { return "Waiting for release..." }

func (m *blockingMethod) Archive(ctx context.Context, req *webzip.Request) (*webzip.Result, error) {
	m.started <- req.MessageID

	select {
	case <-m.release:
		return &webzip.Result{Kind: webzip.KindPDF, Data: []byte("%PDF-1.4")}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *blockingMethod) waitStarted(t *testing.T) string {
	t.Helper()

	select {
	case messageID := <-m.started:
		return messageID
	case <-time.After(2 * time.Second):
		t.Fatal("command never started")
		return ""
	}
}

func (m *blockingMethod) assertNotStarted(t *testing.T) {
	t.Helper()

	select {
	case messageID := <-m.started:
		t.Fatalf("%s started while no slot was free", messageID)
	case <-time.After(100 * time.Millisecond):
	}
}

// countingMessenger accepts everything and counts the delivered documents.
type countingMessenger struct {
	sync.Mutex
	documents int
}

func (m *countingMessenger) SendText(_ context.Context, _, _, _ string) (string, error) {
	return "$status", nil
}

func (m *countingMessenger) React(_ context.Context, _, _, _ string) error {
	return nil
}

func (m *countingMessenger) SendDocument(_ context.Context, _ string, _ *webzip.File) error {
	m.Lock()
	defer m.Unlock()
	m.documents++
	return nil
}

func (m *countingMessenger) SendImage(_ context.Context, _ string, _ *webzip.File) error {
	return nil
}

func (m *countingMessenger) documentCount() int {
	m.Lock()
	defer m.Unlock()
	return m.documents
}

func newBlockingBot(t *testing.T, cfg Config, method webzip.Method) (*Bot, *countingMessenger) {
	t.Helper()

	arc := &webzip.Archiver{Methods: []webzip.Method{method}}
	arc.Validate()

	cfg.Homeserver = "https://matrix.example.org"
	cfg.UserID = "@webzip:example.org"
	cfg.AccessToken = "token"
	bot, err := New(cfg, arc)
	require.NoError(t, err)

	m := &countingMessenger{}
	bot.messenger = m
	return bot, m
}

func commandFrom(messageID string) webzip.Message {
	return webzip.Message{
		ChatID:    "!room:example.org",
		MessageID: messageID,
		Sender:    "@alice:example.org",
		Text:      ".webzip https://example.com",
	}
}

func TestBot_HandleWaitsForFreeSlot(t *testing.T) {
	method := newBlockingMethod()
	bot, m := newBlockingBot(t, Config{MaxConcurrentRequests: 1}, method)
	ctx := context.Background()

	var wg sync.WaitGroup
	handle := func(messageID string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.handle(ctx, commandFrom(messageID))
		}()
	}

	handle("$first")
	assert.Equal(t, "$first", method.waitStarted(t))

	handle("$second")
	method.assertNotStarted(t)

	method.release <- struct{}{}
	assert.Equal(t, "$second", method.waitStarted(t))
	method.release <- struct{}{}

	wg.Wait()
	assert.Equal(t, 2, m.documentCount())
}

func TestBot_HandleGivesUpWhenCancelled(t *testing.T) {
	method := newBlockingMethod()
	bot, m := newBlockingBot(t, Config{MaxConcurrentRequests: 1}, method)

	require.True(t, bot.sem.TryAcquire(1))
	defer bot.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bot.handle(ctx, commandFrom("$first"))
	method.assertNotStarted(t)
	assert.Zero(t, m.documentCount())
}

func TestBot_DispatchDropsWhenQueueIsFull(t *testing.T) {
	method := newBlockingMethod()
	bot, m := newBlockingBot(t, Config{MaxConcurrentRequests: 1, MaxQueuedRequests: 1}, method)
	g, ctx := errgroup.WithContext(context.Background())

	assert.True(t, bot.dispatch(ctx, g, commandFrom("$first")))
	assert.Equal(t, "$first", method.waitStarted(t))

	assert.True(t, bot.dispatch(ctx, g, commandFrom("$second")))
	assert.False(t, bot.dispatch(ctx, g, commandFrom("$third")))

	method.release <- struct{}{}
	assert.Equal(t, "$second", method.waitStarted(t))
	method.release <- struct{}{}

	require.NoError(t, g.Wait())
	assert.Equal(t, 2, m.documentCount())
	method.assertNotStarted(t)

	// Every pending slot is free again
	assert.True(t, bot.pending.TryAcquire(2))
}

func memberEvent(stateKey string, membership event.Membership) *event.Event {
	return &event.Event{
		Type:     event.StateMember,
		RoomID:   "!room:example.org",
		Sender:   "@alice:example.org",
		StateKey: &stateKey,
		Content:  event.Content{Parsed: &event.MemberEventContent{Membership: membership}},
	}
}

func TestBot_HandleInvite(t *testing.T) {
	tests := []struct {
		name   string
		event  *event.Event
		joined bool
	}{
		{"invite for bot", memberEvent("@webzip:example.org", event.MembershipInvite), true},
		{"invite for someone else", memberEvent("@bob:example.org", event.MembershipInvite), false},
		{"bot left", memberEvent("@webzip:example.org", event.MembershipLeave), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs, _ := newHomeserver(t)

			arc := &webzip.Archiver{}
			arc.Validate()
			bot, err := New(Config{
				Homeserver:  hs.url,
				UserID:      "@webzip:example.org",
				AccessToken: "token",
				AutoJoin:    true,
			}, arc)
			require.NoError(t, err)

			bot.handleInvite(context.Background(), tt.event)
			if tt.joined {
				assert.Len(t, hs.joins, 1)
			} else {
				assert.Empty(t, hs.joins)
			}
		})
	}
}
