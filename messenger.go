package webzip

import "context"

// Reactions used to mark the progress of a command on its originating message.
const (
	ReactionProcessing = "🔄"
	ReactionSuccess    = "✅"
	ReactionFailure    = "❌"
)

// File is an artifact delivered back to the chat, either as a document
// or as an image.
type File struct {
	Name     string
	MimeType string
	Data     []byte
	Caption  string
}

// Messenger is the chat surface a command talks to. Message IDs are opaque
// strings owned by the implementation.
type Messenger interface {
	// SendText sends a text message to the chat. If quotedID is not empty,
	// the message is sent as a reply to it. Returns the ID of the new message.
	SendText(ctx context.Context, chatID, text, quotedID string) (string, error)

	// React attaches a reaction to an existing message.
	React(ctx context.Context, chatID, messageID, reaction string) error

	SendDocument(ctx context.Context, chatID string, file *File) error
	SendImage(ctx context.Context, chatID string, file *File) error
}
