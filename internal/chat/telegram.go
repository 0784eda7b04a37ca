package chat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/ppetrovna/povarenok/internal/config"
)

// Telegram implements Transport over the Telegram Bot API.
type Telegram struct {
	apiURL      string
	token       string
	pollTimeout time.Duration
	limiter     *rate.Limiter
	client      *http.Client
	pollClient  *http.Client
}

// NewTelegram creates the Telegram transport. The send rate limit applies
// to every outbound call; getUpdates polling is exempt.
func NewTelegram(cfg *config.BotConfig) *Telegram {
	return &Telegram{
		apiURL:      strings.TrimSuffix(cfg.APIURL, "/"),
		token:       cfg.Token,
		pollTimeout: cfg.PollTimeout,
		limiter:     rate.NewLimiter(rate.Limit(cfg.SendRate), 1),
		client:      &http.Client{Timeout: 30 * time.Second},
		// Long polls hold the connection open for the whole poll timeout.
		pollClient: &http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
	}
}

// APIError is a non-ok response from the Telegram API.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// Telegram wire types, limited to the fields the bot consumes.

type tgUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		ID      string `json:"id"`
		Data    string `json:"data"`
		Message *struct {
			MessageID int64 `json:"message_id"`
			Chat      struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

type tgKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type tgReplyMarkup struct {
	InlineKeyboard [][]tgKeyboardButton `json:"inline_keyboard"`
}

func toReplyMarkup(k Keyboard) *tgReplyMarkup {
	if len(k) == 0 {
		return nil
	}
	markup := &tgReplyMarkup{InlineKeyboard: make([][]tgKeyboardButton, 0, len(k))}
	for _, row := range k {
		buttons := make([]tgKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgKeyboardButton{Text: b.Text, CallbackData: b.Data})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	return markup
}

// GetUpdates long-polls for events after offset.
func (t *Telegram) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(t.pollTimeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query"},
	}

	var raw []tgUpdate
	if err := t.call(ctx, t.pollClient, "getUpdates", payload, &raw); err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		update := Update{ID: u.UpdateID}
		switch {
		case u.Message != nil:
			update.Message = &Message{
				ChatID:    u.Message.Chat.ID,
				MessageID: u.Message.MessageID,
				Text:      u.Message.Text,
			}
		case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
			update.Callback = &Callback{
				ID:        u.CallbackQuery.ID,
				ChatID:    u.CallbackQuery.Message.Chat.ID,
				MessageID: u.CallbackQuery.Message.MessageID,
				Data:      u.CallbackQuery.Data,
			}
		default:
			// Update kind we did not ask for; skip but still advance offset.
		}
		updates = append(updates, update)
	}
	return updates, nil
}

// SendMessage sends a message, returning the new message id.
func (t *Telegram) SendMessage(ctx context.Context, opts SendOptions) (int64, error) {
	payload := map[string]any{
		"chat_id": opts.ChatID,
		"text":    opts.Text,
	}
	if opts.HTML {
		payload["parse_mode"] = "HTML"
	}
	if markup := toReplyMarkup(opts.Keyboard); markup != nil {
		payload["reply_markup"] = markup
	}

	var sent struct {
		MessageID int64 `json:"message_id"`
	}
	if err := t.send(ctx, "sendMessage", payload, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessage rewrites a sent message's text and keyboard in place.
func (t *Telegram) EditMessage(ctx context.Context, opts EditOptions) error {
	payload := map[string]any{
		"chat_id":    opts.ChatID,
		"message_id": opts.MessageID,
		"text":       opts.Text,
	}
	if markup := toReplyMarkup(opts.Keyboard); markup != nil {
		payload["reply_markup"] = markup
	}
	return t.send(ctx, "editMessageText", payload, nil)
}

// SendPhoto sends an image. HTTP(S) references are passed through for
// Telegram to fetch; anything else is treated as a local file and uploaded.
func (t *Telegram) SendPhoto(ctx context.Context, chatID int64, photo string) error {
	if strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") {
		return t.send(ctx, "sendPhoto", map[string]any{
			"chat_id": chatID,
			"photo":   photo,
		}, nil)
	}
	return t.uploadPhoto(ctx, chatID, photo)
}

// AnswerCallback acknowledges a button press.
func (t *Telegram) AnswerCallback(ctx context.Context, callbackID string) error {
	return t.send(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	}, nil)
}

// SetCommands publishes the bot command menu.
func (t *Telegram) SetCommands(ctx context.Context, commands []Command) error {
	list := make([]map[string]string, 0, len(commands))
	for _, c := range commands {
		list = append(list, map[string]string{
			"command":     c.Name,
			"description": c.Description,
		})
	}
	return t.send(ctx, "setMyCommands", map[string]any{"commands": list}, nil)
}

// SetDescription publishes the bot description shown before /start.
func (t *Telegram) SetDescription(ctx context.Context, description string) error {
	return t.send(ctx, "setMyDescription", map[string]any{
		"description": description,
	}, nil)
}

// send is a rate-limited call for every outbound method except polling.
func (t *Telegram) send(ctx context.Context, method string, payload, result any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.call(ctx, t.client, method, payload, result)
}

// call POSTs one Bot API method and decodes the result envelope.
func (t *Telegram) call(ctx context.Context, client *http.Client, method string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: marshal payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(method, resp.Body, result)
}

// uploadPhoto sends a local file as multipart form data.
func (t *Telegram) uploadPhoto(ctx context.Context, chatID int64, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telegram sendPhoto: open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("telegram sendPhoto: %w", err)
	}
	part, err := mw.CreateFormFile("photo", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("telegram sendPhoto: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("telegram sendPhoto: read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("telegram sendPhoto: %w", err)
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.methodURL("sendPhoto"), &buf)
	if err != nil {
		return fmt.Errorf("telegram sendPhoto: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram sendPhoto: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope("sendPhoto", resp.Body, nil)
}

func (t *Telegram) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.apiURL, t.token, method)
}

// decodeEnvelope unwraps Telegram's {ok, result, ...} envelope.
func decodeEnvelope(method string, body io.Reader, result any) error {
	var envelope struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result"`
		ErrorCode   int             `json:"error_code"`
		Description string          `json:"description"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !envelope.OK {
		return &APIError{Method: method, Code: envelope.ErrorCode, Description: envelope.Description}
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}

var _ Transport = (*Telegram)(nil)
