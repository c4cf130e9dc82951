package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrMalformedLink means a video link does not point into the source channel.
var ErrMalformedLink = errors.New("malformed video link")

// DeliveryService copies protected videos from the private source channel
// into user chats and schedules their cleanup.
type DeliveryService struct {
	api       API
	channelID int64
	scheduler *DeletionScheduler
	timeout   time.Duration
}

func NewDeliveryService(api API, channelID int64, scheduler *DeletionScheduler, timeout time.Duration) *DeliveryService {
	return &DeliveryService{api: api, channelID: channelID, scheduler: scheduler, timeout: timeout}
}

// Deliver copies the linked channel message into the chat with content
// protection on, tells the user about the auto-delete timeout and schedules
// the cleanup. Failures surface to the user as a short generic message and
// are returned for logging; nothing is scheduled on failure.
func (d *DeliveryService) Deliver(chatID int64, videoLink string, userID int64) error {
	messageID, err := parseChannelLink(videoLink)
	if err != nil {
		d.notify(chatID, "❌ Invalid video format.")
		return err
	}

	copiedID, err := d.copyProtected(chatID, messageID)
	if err != nil {
		d.notify(chatID, "❌ Error sending video.")
		return fmt.Errorf("copy message %d: %w", messageID, err)
	}

	noticeText := fmt.Sprintf("💕 Enjoy your video, darling!\n⏰ It will vanish in %d minutes~ ✨", int(d.timeout.Minutes()))
	notice, err := d.api.Send(tgbotapi.NewMessage(chatID, noticeText))
	if err != nil {
		d.notify(chatID, "❌ Error sending video.")
		return fmt.Errorf("send notification: %w", err)
	}

	d.scheduler.Schedule(chatID, copiedID, notice.MessageID)
	log.Printf("[info] protected video sent to user %d", userID)
	return nil
}

// copyProtected issues copyMessage with protect_content set. The pinned
// client release predates that parameter, so the request is built by hand.
func (d *DeliveryService) copyProtected(chatID int64, messageID int) (int, error) {
	params := make(tgbotapi.Params)
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero64("from_chat_id", d.channelID)
	params.AddNonZero("message_id", messageID)
	params.AddBool("protect_content", true)

	resp, err := d.api.MakeRequest("copyMessage", params)
	if err != nil {
		return 0, err
	}

	var copied tgbotapi.MessageID
	if err := json.Unmarshal(resp.Result, &copied); err != nil {
		return 0, fmt.Errorf("parse copyMessage response: %w", err)
	}
	return copied.MessageID, nil
}

func (d *DeliveryService) notify(chatID int64, text string) {
	if _, err := d.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("send error notice to chat %d: %v", chatID, err)
	}
}

// parseChannelLink extracts the message id from a private channel link of
// the form https://t.me/c/<channel>/<id>.
func parseChannelLink(link string) (int, error) {
	if !strings.Contains(link, "/c/") {
		return 0, fmt.Errorf("%w: %s", ErrMalformedLink, link)
	}
	parts := strings.Split(strings.TrimRight(link, "/"), "/")
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrMalformedLink, link)
	}
	return id, nil
}
