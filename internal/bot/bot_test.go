package bot

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cute-videos/internal/config"
	"cute-videos/internal/repository"
	"cute-videos/internal/service"
)

const testCategoriesJSON = `{
  "categories": [
    {"name": "🎀 Onii Chaan", "callback_data": "category_cute"},
    {"name": "🥺 Little Cute", "callback_data": "category_little_cute"}
  ]
}`

const testVideosJSON = `{
  "cute": {
    "1": {"video_link": "https://t.me/c/2890796928/1", "shortener_link": "https://short.example/a"},
    "2": {"video_link": "https://t.me/c/2890796928/2", "shortener_link": "https://short.example/b"}
  },
  "little_cute": {
    "1": {"video_link": "https://t.me/c/2890796928/11", "shortener_link": "https://short.example/c"}
  }
}`

type editCall struct {
	text   string
	markup *tgbotapi.InlineKeyboardMarkup
}

// fakeBotAPI records what the router sends, edits and acknowledges.
type fakeBotAPI struct {
	mu    sync.Mutex
	acks  int
	sent  []string
	edits []editCall
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch msg := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, msg.Text)
	case tgbotapi.EditMessageTextConfig:
		f.edits = append(f.edits, editCall{text: msg.Text, markup: msg.ReplyMarkup})
	}
	return tgbotapi.Message{MessageID: 1}, nil
}

func (f *fakeBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.CallbackConfig); ok {
		f.acks++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBotAPI) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true, Result: []byte(`{"message_id": 99}`)}, nil
}

func (f *fakeBotAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeBotAPI) StopReceivingUpdates() {}

func (f *fakeBotAPI) lastEdit(t *testing.T) editCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		t.Fatal("no message edit recorded")
	}
	return f.edits[len(f.edits)-1]
}

func newTestBot(t *testing.T, api *fakeBotAPI) (*Bot, *repository.UserStore) {
	t.Helper()
	dir := t.TempDir()
	catPath := filepath.Join(dir, "categories.json")
	vidPath := filepath.Join(dir, "videos.json")
	if err := os.WriteFile(catPath, []byte(testCategoriesJSON), 0o644); err != nil {
		t.Fatalf("write categories: %v", err)
	}
	if err := os.WriteFile(vidPath, []byte(testVideosJSON), 0o644); err != nil {
		t.Fatalf("write videos: %v", err)
	}

	catalog := repository.LoadCatalog(catPath, vidPath)
	users := repository.NewUserStore(repository.FileSink{Path: filepath.Join(dir, "user_logs.json")})
	scheduler := service.NewDeletionScheduler(api, 5*time.Minute, nil)
	delivery := service.NewDeliveryService(api, -1002890796928, scheduler, 5*time.Minute)
	cfg := &config.Config{VideosPerPage: 5, DeleteTimeout: 5 * time.Minute}

	return New(api, catalog, users, delivery, cfg), users
}

func callbackFrom(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 7, FirstName: "Alice", UserName: "alice"},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 42}},
		Data:    data,
	}
}

func TestHandleCallbackCategory(t *testing.T) {
	api := &fakeBotAPI{}
	b, users := newTestBot(t, api)

	if err := b.handleCallback(callbackFrom("category_cute")); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}

	if api.acks != 1 {
		t.Errorf("acks = %d, want 1", api.acks)
	}
	edit := api.lastEdit(t)
	if edit.markup == nil {
		t.Fatal("category edit carries no keyboard")
	}
	// 2 video rows + back-to-categories row, no nav on a single page.
	if len(edit.markup.InlineKeyboard) != 3 {
		t.Errorf("rows = %d, want 3", len(edit.markup.InlineKeyboard))
	}

	// The interaction is tracked before dispatching.
	rec, ok := users.Get(7)
	if !ok || rec.InteractionCount != 1 {
		t.Errorf("user record = %+v, ok=%v", rec, ok)
	}
}

func TestHandleCallbackPage(t *testing.T) {
	api := &fakeBotAPI{}
	b, _ := newTestBot(t, api)

	if err := b.handleCallback(callbackFrom("page:little_cute:1")); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}

	edit := api.lastEdit(t)
	if edit.markup == nil {
		t.Fatal("page edit carries no keyboard")
	}
	// 1 video row + back-to-categories row.
	if len(edit.markup.InlineKeyboard) != 2 {
		t.Errorf("rows = %d, want 2", len(edit.markup.InlineKeyboard))
	}
}

func TestHandleCallbackBackToCategories(t *testing.T) {
	api := &fakeBotAPI{}
	b, _ := newTestBot(t, api)

	if err := b.handleCallback(callbackFrom("back_to_categories")); err != nil {
		t.Fatalf("handleCallback: %v", err)
	}

	// Edit in place, not a new message.
	if len(api.sent) != 0 {
		t.Errorf("sent = %v, want edits only", api.sent)
	}
	edit := api.lastEdit(t)
	if edit.text != welcomeText {
		t.Errorf("edit text = %q, want the welcome text", edit.text)
	}
	if edit.markup == nil || len(edit.markup.InlineKeyboard) != 2 {
		t.Errorf("markup = %+v, want one row per category", edit.markup)
	}
}

func TestHandleCallbackUnknownKey(t *testing.T) {
	for _, data := range []string{"mystery_key", "page:oops"} {
		api := &fakeBotAPI{}
		b, users := newTestBot(t, api)

		if err := b.handleCallback(callbackFrom(data)); err != nil {
			t.Fatalf("handleCallback(%q): %v", data, err)
		}

		// Acknowledged regardless of outcome.
		if api.acks != 1 {
			t.Errorf("acks for %q = %d, want 1", data, api.acks)
		}
		edit := api.lastEdit(t)
		if edit.text != "❌ Unknown action." {
			t.Errorf("edit text for %q = %q", data, edit.text)
		}
		if _, ok := users.Get(7); !ok {
			t.Errorf("interaction for %q not tracked", data)
		}
	}
}

func TestParseDeepLink(t *testing.T) {
	tests := []struct {
		payload  string
		category string
		number   string
		wantErr  bool
	}{
		{"video_cute_3", "cute", "3", false},
		{"video_little_cute_12", "little_cute", "12", false},
		{"video_dark_cute_1", "dark_cute", "1", false},
		{"video_12", "", "", true},
		{"video_cute_", "", "", true},
		{"video__5", "", "", true},
		{"video_", "", "", true},
	}

	for _, tt := range tests {
		category, number, err := ParseDeepLink(tt.payload)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDeepLink(%q) succeeded, want error", tt.payload)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDeepLink(%q): %v", tt.payload, err)
			continue
		}
		if category != tt.category || number != tt.number {
			t.Errorf("ParseDeepLink(%q) = (%q, %q), want (%q, %q)", tt.payload, category, number, tt.category, tt.number)
		}
	}
}
