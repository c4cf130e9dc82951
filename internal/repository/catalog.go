package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"cute-videos/internal/model"
)

// ErrNotFound is returned by lookups that miss the catalog.
var ErrNotFound = errors.New("not found")

// CategoryKeyPrefix prefixes every category routing key declared in
// categories.json; the identifier after it is the key into videos.json.
const CategoryKeyPrefix = "category_"

// CatalogVideo pairs a video with its number inside the category.
type CatalogVideo struct {
	Number string
	model.Video
}

// Catalog holds the static category/video configuration. It is read-only
// after LoadCatalog and safe for concurrent readers. Changes to the files
// require a restart.
type Catalog struct {
	categories []model.Category
	videos     map[string][]CatalogVideo
}

// LoadCatalog reads both configuration files. A missing or malformed file
// is logged and replaced with an empty section; the bot still starts and
// answers "not found" instead of crashing.
func LoadCatalog(categoriesPath, videosPath string) *Catalog {
	c := &Catalog{videos: make(map[string][]CatalogVideo)}

	if err := c.loadCategories(categoriesPath); err != nil {
		log.Printf("load %s: %v", categoriesPath, err)
		c.categories = nil
	}
	if err := c.loadVideos(videosPath); err != nil {
		log.Printf("load %s: %v", videosPath, err)
		c.videos = make(map[string][]CatalogVideo)
	}

	return c
}

func (c *Catalog) loadCategories(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var parsed struct {
		Categories []model.Category `json:"categories"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse categories: %w", err)
	}

	c.categories = parsed.Categories
	return nil
}

// loadVideos walks the JSON token stream by hand: videos must keep the
// declaration order of their numeric keys, which map decoding would lose.
func (c *Catalog) loadVideos(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := expectDelim(dec, json.Delim('{')); err != nil {
		return fmt.Errorf("parse videos: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parse videos: %w", err)
		}
		category, ok := tok.(string)
		if !ok {
			return fmt.Errorf("parse videos: unexpected token %v", tok)
		}
		videos, err := decodeCategoryVideos(dec)
		if err != nil {
			return fmt.Errorf("parse videos for %q: %w", category, err)
		}
		c.videos[category] = videos
	}

	return nil
}

func decodeCategoryVideos(dec *json.Decoder) ([]CatalogVideo, error) {
	if err := expectDelim(dec, json.Delim('{')); err != nil {
		return nil, err
	}

	var videos []CatalogVideo
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		number, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var video model.Video
		if err := dec.Decode(&video); err != nil {
			return nil, err
		}
		videos = append(videos, CatalogVideo{Number: number, Video: video})
	}

	// Consume the closing brace of the category object.
	_, err := dec.Token()
	return videos, err
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("unexpected token %v", tok)
	}
	return nil
}

// Categories returns the menu entries in declaration order.
func (c *Catalog) Categories() []model.Category {
	return c.categories
}

// CategoryName resolves a category identifier to its display name, falling
// back to the raw identifier when the catalog does not know it.
func (c *Catalog) CategoryName(category string) string {
	for _, cat := range c.categories {
		if cat.CallbackData == CategoryKeyPrefix+category {
			return cat.Name
		}
	}
	return category
}

// Videos returns the category's videos in declaration order. An unknown
// category yields nil, not an error.
func (c *Catalog) Videos(category string) []CatalogVideo {
	return c.videos[category]
}

// Video resolves a (category, number) pair to exactly one catalog entry.
func (c *Catalog) Video(category, number string) (model.Video, error) {
	for _, v := range c.videos[category] {
		if v.Number == number {
			return v.Video, nil
		}
	}
	return model.Video{}, fmt.Errorf("video %s/%s: %w", category, number, ErrNotFound)
}

// HasCategory reports whether the category exists in the video config.
func (c *Catalog) HasCategory(category string) bool {
	_, ok := c.videos[category]
	return ok
}
