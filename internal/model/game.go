// Package model defines the records stored by the game store and the view
// structs the service layer hands to the handlers.
package model

// MainPhoto is the cover image every game photo directory must contain.
// It is shown on listings and excluded from the detail gallery.
const MainPhoto = "main.jpg"

// Game is a catalog entry. PhotoDir names a directory under the photo root
// holding MainPhoto plus the gallery images.
type Game struct {
	ID          int64  `json:"id"          db:"id"`
	Name        string `json:"name"        db:"name"`
	Price       int    `json:"price"       db:"price"`
	Description string `json:"description" db:"description"`
	Genre       string `json:"genre"       db:"genre"`
	Date        string `json:"date"        db:"date"`
	Platform    string `json:"platform"    db:"platform"`
	Author      string `json:"author"      db:"author"`
	Rating      int    `json:"rating"      db:"rating"`
	PhotoDir    string `json:"photoDir"    db:"dir_photo"`
}

// GameDetail is everything the detail page shows for one game.
// Rating is the visitor's own session-local star value, not Game.Rating.
type GameDetail struct {
	Game   Game
	Photos []string
	Rating int
}

// CartView is a cart resolved against the current catalog.
type CartView struct {
	Games []Game
	Total int
}
