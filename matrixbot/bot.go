// Package matrixbot runs the webzip command as a Matrix bot.
package matrixbot

import (
	"context"
	"strings"

	"github.com/go-shiori/webzip"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

const (
	defaultMaxConcurrentRequests = 4
	defaultMaxQueuedRequests     = 16
)

// Config is the configuration of the Matrix bot.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string

	// AutoJoin makes the bot accept every room invite.
	AutoJoin bool

	MaxConcurrentRequests int64

	// MaxQueuedRequests is how many commands may wait for a free slot.
	// Commands beyond that are dropped.
	MaxQueuedRequests int64
}

// Bot listens to room messages and runs the archive command for the
// ones starting with the archiver's command word.
type Bot struct {
	client    *mautrix.Client
	archiver  *webzip.Archiver
	messenger webzip.Messenger
	autoJoin  bool
	sem       *semaphore.Weighted
	pending   *semaphore.Weighted
}

// New creates a bot logged in with the access token from cfg. The archiver
// must already be validated.
func New(cfg Config, arc *webzip.Archiver) (*Bot, error) {
	if cfg.Homeserver == "" || cfg.UserID == "" || cfg.AccessToken == "" {
		return nil, errors.New("homeserver, user id and access token are required")
	}

	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create matrix client")
	}
	client.Log = zerolog.Nop()

	maxConcurrent := cfg.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentRequests
	}

	maxQueued := cfg.MaxQueuedRequests
	if maxQueued <= 0 {
		maxQueued = defaultMaxQueuedRequests
	}

	return &Bot{
		client:    client,
		archiver:  arc,
		messenger: NewMessenger(client),
		autoJoin:  cfg.AutoJoin,
		sem:       semaphore.NewWeighted(maxConcurrent),
		pending:   semaphore.NewWeighted(maxConcurrent + maxQueued),
	}, nil
}

// Run syncs with the homeserver until ctx is cancelled, then waits for
// the commands in progress to return.
func (b *Bot) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	syncer, ok := b.client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return errors.New("unsupported matrix syncer")
	}

	syncer.OnSync(b.client.DontProcessOldEvents)
	syncer.OnEventType(event.EventMessage, func(_ context.Context, evt *event.Event) {
		msg, ok := b.commandMessage(evt)
		if !ok {
			return
		}

		b.dispatch(ctx, g, msg)
	})

	if b.autoJoin {
		syncer.OnEventType(event.StateMember, func(_ context.Context, evt *event.Event) {
			b.handleInvite(ctx, evt)
		})
	}

	g.Go(func() error {
		logrus.Printf("matrix bot started as %s\n", b.client.UserID)
		err := b.client.SyncWithContext(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return errors.Wrap(err, "sync failed")
		}
		return nil
	})

	return g.Wait()
}

// commandMessage converts a room message into a webzip message, if it
// is an archive command not sent by the bot itself.
func (b *Bot) commandMessage(evt *event.Event) (webzip.Message, bool) {
	if evt.Sender == b.client.UserID {
		return webzip.Message{}, false
	}

	content := evt.Content.AsMessage()
	if content == nil || content.MsgType != event.MsgText {
		return webzip.Message{}, false
	}

	// Ignore edits
	if content.RelatesTo != nil && content.RelatesTo.GetReplaceID() != "" {
		return webzip.Message{}, false
	}

	if !isCommand(content.Body, b.archiver.Command) {
		return webzip.Message{}, false
	}

	return webzip.Message{
		ChatID:    string(evt.RoomID),
		MessageID: string(evt.ID),
		Sender:    string(evt.Sender),
		Text:      content.Body,
	}, true
}

// dispatch runs msg in its own goroutine. The sync callback must never
// block, so when too many commands are already pending msg is dropped.
func (b *Bot) dispatch(ctx context.Context, g *errgroup.Group, msg webzip.Message) bool {
	if !b.pending.TryAcquire(1) {
		logrus.WithField("room", msg.ChatID).Warnf("too many pending commands, dropping %q", msg.Text)
		return false
	}

	g.Go(func() error {
		defer b.pending.Release(1)
		b.handle(ctx, msg)
		return nil
	})
	return true
}

func (b *Bot) handle(ctx context.Context, msg webzip.Message) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer b.sem.Release(1)

	entry := logrus.WithFields(logrus.Fields{
		"room":   msg.ChatID,
		"sender": msg.Sender,
	})
	entry.Debugf("handling %q", msg.Text)

	if err := b.archiver.HandleCommand(ctx, b.messenger, msg); err != nil {
		entry.WithError(err).Error("command failed")
	}
}

func (b *Bot) handleInvite(ctx context.Context, evt *event.Event) {
	if evt.GetStateKey() != string(b.client.UserID) {
		return
	}

	member := evt.Content.AsMember()
	if member == nil || member.Membership != event.MembershipInvite {
		return
	}

	if _, err := b.client.JoinRoomByID(ctx, evt.RoomID); err != nil {
		logrus.WithError(err).Warnf("failed to join %s", evt.RoomID)
		return
	}
	logrus.Printf("joined %s\n", evt.RoomID)
}

// isCommand reports whether body invokes command. The command word must
// be the first word of the message.
func isCommand(body, command string) bool {
	fields := strings.Fields(body)
	return len(fields) > 0 && strings.EqualFold(fields[0], command)
}
