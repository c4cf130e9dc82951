package model

// Video points at a message in the private source channel. ShortenerLink
// is the external URL the menu button opens; the shortener deep-links back
// into the bot with the category and number encoded.
type Video struct {
	VideoLink     string `json:"video_link"`
	ShortenerLink string `json:"shortener_link"`
}
