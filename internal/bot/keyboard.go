package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cute-videos/internal/model"
	"cute-videos/internal/repository"
)

const (
	cbPagePrefix       = "page:"
	cbBackToCategories = "back_to_categories"
)

const (
	btnPrev             = "◀️ Back"
	btnNext             = "Next ▶️"
	btnBackToCategories = "🔙 Back to Categories"
)

// categoriesKeyboard renders one category per row; each button carries the
// category's callback_data verbatim.
func categoriesKeyboard(categories []model.Category) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(cat.Name, cat.CallbackData),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// videosKeyboard renders one page of a category's videos and returns the
// page that was actually rendered. An out-of-range page is clamped into
// [1, totalPages] instead of rendering an empty slice; a category without
// videos yields only the return row.
func videosKeyboard(videos []repository.CatalogVideo, category string, page, perPage int) (tgbotapi.InlineKeyboardMarkup, int) {
	var rows [][]tgbotapi.InlineKeyboardButton

	totalPages := (len(videos) + perPage - 1) / perPage
	if totalPages > 0 {
		if page < 1 {
			page = 1
		}
		if page > totalPages {
			page = totalPages
		}

		start := (page - 1) * perPage
		end := start + perPage
		if end > len(videos) {
			end = len(videos)
		}
		for _, video := range videos[start:end] {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(fmt.Sprintf("Video %s", video.Number), video.ShortenerLink),
			))
		}

		var nav []tgbotapi.InlineKeyboardButton
		if page > 1 {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(btnPrev, pageKey(category, page-1)))
		}
		if page < totalPages {
			nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(btnNext, pageKey(category, page+1)))
		}
		if len(nav) > 0 {
			rows = append(rows, nav)
		}
	} else {
		page = 1
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(btnBackToCategories, cbBackToCategories),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...), page
}

// pageKey encodes category and page with a delimiter that never appears in
// category identifiers, so names with embedded underscores need no
// positional special-casing.
func pageKey(category string, page int) string {
	return fmt.Sprintf("%s%s:%d", cbPagePrefix, category, page)
}

// parsePageKey is the inverse of pageKey.
func parsePageKey(data string) (string, int, error) {
	rest := strings.TrimPrefix(data, cbPagePrefix)
	idx := strings.LastIndex(rest, ":")
	if idx <= 0 {
		return "", 0, fmt.Errorf("malformed page key %q", data)
	}
	page, err := strconv.Atoi(rest[idx+1:])
	if err != nil || page < 1 {
		return "", 0, fmt.Errorf("malformed page key %q", data)
	}
	return rest[:idx], page, nil
}
