package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cute-videos/internal/config"
	"cute-videos/internal/repository"
	"cute-videos/internal/service"
)

const welcomeText = "🎬 Welcome Onii‑chan!\n\nHow cute are you feeling today? 💕"

const deepLinkPrefix = "video_"

// API is what the router needs from the Telegram client. It is satisfied
// by *tgbotapi.BotAPI; tests substitute a fake.
type API interface {
	service.API
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot routes incoming commands and callbacks to the catalog, the user
// tracker and the delivery service.
type Bot struct {
	api      API
	catalog  *repository.Catalog
	users    *repository.UserStore
	delivery *service.DeliveryService
	perPage  int
	timeout  time.Duration
}

func New(api API, catalog *repository.Catalog, users *repository.UserStore, delivery *service.DeliveryService, cfg *config.Config) *Bot {
	return &Bot{
		api:      api,
		catalog:  catalog,
		users:    users,
		delivery: delivery,
		perPage:  cfg.VideosPerPage,
		timeout:  cfg.DeleteTimeout,
	}
}

// Start begins polling updates until ctx is cancelled. Updates are
// independent and handled concurrently; no per-user ordering is provided.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			cb := update.CallbackQuery
			go func() {
				if err := b.handleCallback(cb); err != nil {
					log.Printf("handle callback: %v", err)
				}
			}()
		case update.Message != nil:
			msg := update.Message
			if msg.Chat == nil || !msg.Chat.IsPrivate() {
				continue
			}
			go func() {
				if err := b.handleMessage(msg); err != nil {
					log.Printf("handle message: %v", err)
				}
			}()
		}
	}

	return nil
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) error {
	if msg.From == nil || !msg.IsCommand() {
		return nil
	}

	b.users.RecordInteraction(msg.From.ID, msg.From.FirstName, msg.From.UserName)
	log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	default:
		return nil
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	payload := strings.TrimSpace(msg.CommandArguments())
	if strings.HasPrefix(payload, deepLinkPrefix) {
		category, number, err := ParseDeepLink(payload)
		if err != nil {
			return b.sendText(msg.Chat.ID, "❌ Invalid video link.")
		}
		return b.deliverVideo(msg.Chat.ID, msg.From.ID, category, number)
	}

	log.Printf("[info] user %d started the bot", msg.From.ID)
	reply := tgbotapi.NewMessage(msg.Chat.ID, welcomeText)
	reply.ReplyMarkup = categoriesKeyboard(b.catalog.Categories())
	_, err := b.api.Send(reply)
	return err
}

// ParseDeepLink splits a shortener payload of the form
// video_<category>_<number>. The category may itself contain underscores;
// the number is always the final segment.
func ParseDeepLink(payload string) (category, number string, err error) {
	rest := strings.TrimPrefix(payload, deepLinkPrefix)
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("malformed deep link %q", payload)
	}
	return rest[:idx], rest[idx+1:], nil
}

func (b *Bot) deliverVideo(chatID, userID int64, category, number string) error {
	video, err := b.catalog.Video(category, number)
	if err != nil {
		log.Printf("[info] video lookup failed for user %d: %v", userID, err)
		return b.sendText(chatID, "❌ Video not found.")
	}
	return b.delivery.Deliver(chatID, video.VideoLink, userID)
}

// handleCallback acknowledges the query first, whatever the outcome, and
// then dispatches by routing-key prefix.
func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}
	b.users.RecordInteraction(cb.From.ID, cb.From.FirstName, cb.From.UserName)

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, repository.CategoryKeyPrefix):
		category := strings.TrimPrefix(data, repository.CategoryKeyPrefix)
		log.Printf("[info] user %d selected category: %s", cb.From.ID, category)
		return b.showVideoMenu(chatID, messageID, category, 1)
	case strings.HasPrefix(data, cbPagePrefix):
		category, page, err := parsePageKey(data)
		if err != nil {
			log.Printf("callback from %d: %v", cb.From.ID, err)
			return b.editText(chatID, messageID, "❌ Unknown action.")
		}
		return b.showVideoMenu(chatID, messageID, category, page)
	case data == cbBackToCategories:
		return b.editMenu(chatID, messageID, welcomeText, categoriesKeyboard(b.catalog.Categories()))
	default:
		log.Printf("callback from %d: unknown routing key %q", cb.From.ID, data)
		return b.editText(chatID, messageID, "❌ Unknown action.")
	}
}

func (b *Bot) showVideoMenu(chatID int64, messageID int, category string, page int) error {
	markup, page := videosKeyboard(b.catalog.Videos(category), category, page, b.perPage)

	name := b.catalog.CategoryName(category)
	header := fmt.Sprintf("💕 %s", name)
	if page > 1 {
		header = fmt.Sprintf("💕 %s (Page %d)", name, page)
	}
	text := fmt.Sprintf("%s\n\nChoose your favorite video, my dear~ 💖\n⚠️ Videos will disappear in %d minutes ✨", header, int(b.timeout.Minutes()))

	return b.editMenu(chatID, messageID, text, markup)
}

func (b *Bot) sendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) editText(chatID int64, messageID int, text string) error {
	_, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (b *Bot) editMenu(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	_, err := b.api.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup))
	return err
}
