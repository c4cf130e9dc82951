package model

// Category is a single entry in the category menu. CallbackData must be
// unique and is carried verbatim as the routing key of the menu button.
type Category struct {
	Name         string `json:"name"`
	CallbackData string `json:"callback_data"`
}
