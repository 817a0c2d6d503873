package notify

import (
	"encoding/json"
	"fmt"

	"shareit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the outbound Telegram surface; the bot API client satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes booking lifecycle messages to the configured chats. It only
// sends; there is no update loop.
type Notifier struct {
	sender  Sender
	chatIDs []int64
	logger  *zerolog.Logger
}

func New(token string, chatIDs []int64, logger *zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return NewWithSender(bot, chatIDs, logger), nil
}

func NewWithSender(sender Sender, chatIDs []int64, logger *zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, chatIDs: chatIDs, logger: logger}
}

// HandleBookingEvent formats and sends a booking event. Registered on the
// event bus for the booking event types.
func (n *Notifier) HandleBookingEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode booking event: %w", err)
	}

	text := formatBookingMessage(event.Type, payload)
	n.broadcast(text)
	return nil
}

// HandleCommentEvent formats and sends a comment event.
func (n *Notifier) HandleCommentEvent(event *events.Event) error {
	var payload events.CommentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decode comment event: %w", err)
	}

	text := fmt.Sprintf("New comment on item %d by %s:\n%s", payload.ItemID, payload.AuthorName, payload.Text)
	n.broadcast(text)
	return nil
}

func (n *Notifier) broadcast(text string) {
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send error")
		}
	}
}

func formatBookingMessage(eventType string, p events.BookingEventPayload) string {
	interval := fmt.Sprintf("%s — %s", p.Start.Format("2006-01-02 15:04"), p.End.Format("2006-01-02 15:04"))

	switch eventType {
	case events.EventBookingCreated:
		return fmt.Sprintf("New booking #%d: %s wants %q\n%s", p.BookingID, p.BookerName, p.ItemName, interval)
	case events.EventBookingApproved:
		return fmt.Sprintf("Booking #%d for %q approved\n%s", p.BookingID, p.ItemName, interval)
	case events.EventBookingRejected:
		return fmt.Sprintf("Booking #%d for %q rejected\n%s", p.BookingID, p.ItemName, interval)
	default:
		return fmt.Sprintf("Booking #%d (%s): %s", p.BookingID, p.Status, p.ItemName)
	}
}
