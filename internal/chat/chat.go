// Package chat defines the transport port between the bot's conversation
// logic and a chat network, plus the Telegram implementation. The session
// manager only speaks these types; swapping the network means swapping the
// Transport.
package chat

import (
	"context"
	"strings"
)

// Button is one inline keyboard button. Data is the opaque callback token
// delivered back when the button is pressed.
type Button struct {
	Text string
	Data string
}

// Keyboard is an inline keyboard: rows of buttons.
type Keyboard [][]Button

// Row appends one row of buttons.
func (k Keyboard) Row(buttons ...Button) Keyboard {
	return append(k, buttons)
}

// Rows lays buttons out left to right, perRow per row.
func Rows(buttons []Button, perRow int) Keyboard {
	if perRow < 1 {
		perRow = 1
	}
	var k Keyboard
	for start := 0; start < len(buttons); start += perRow {
		end := start + perRow
		if end > len(buttons) {
			end = len(buttons)
		}
		k = append(k, buttons[start:end])
	}
	return k
}

// Column lays every button out in a single column.
func Column(buttons []Button) Keyboard {
	return Rows(buttons, 1)
}

// Message is an inbound chat message.
type Message struct {
	ChatID    int64
	MessageID int64
	Text      string
}

// Command returns the bot command carried by the message ("start",
// "random", ...) or "" for plain text. A "@botname" suffix is stripped.
func (m Message) Command() string {
	if !strings.HasPrefix(m.Text, "/") {
		return ""
	}
	cmd := strings.Fields(m.Text)[0][1:]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd
}

// Callback is an inbound button press.
type Callback struct {
	ID        string
	ChatID    int64
	MessageID int64
	Data      string
}

// Update is one inbound event: exactly one of Message or Callback is set.
type Update struct {
	ID       int64
	Message  *Message
	Callback *Callback
}

// SendOptions parameterizes an outbound message.
type SendOptions struct {
	ChatID   int64
	Text     string
	Keyboard Keyboard
	HTML     bool
}

// EditOptions parameterizes an in-place edit of a previously sent message.
type EditOptions struct {
	ChatID    int64
	MessageID int64
	Text      string
	Keyboard  Keyboard
}

// Command describes one entry of the bot command menu.
type Command struct {
	Name        string
	Description string
}

// Transport is the chat network port. Implementations must be safe for
// concurrent use; the bot sends from many conversation workers at once.
type Transport interface {
	// GetUpdates long-polls for inbound events after offset.
	GetUpdates(ctx context.Context, offset int64) ([]Update, error)
	// SendMessage sends a new message and returns its message id.
	SendMessage(ctx context.Context, opts SendOptions) (int64, error)
	// EditMessage rewrites an existing message's text and keyboard.
	EditMessage(ctx context.Context, opts EditOptions) error
	// SendPhoto sends an image by URL or local path, best effort.
	SendPhoto(ctx context.Context, chatID int64, photo string) error
	// AnswerCallback acknowledges a button press so the client stops
	// showing a progress indicator.
	AnswerCallback(ctx context.Context, callbackID string) error
}
