package model

// News is a read-only announcement shown on the news page.
type News struct {
	ID      int64  `json:"id"      db:"id"`
	Title   string `json:"title"   db:"title"`
	Content string `json:"content" db:"content"`
}

// Message is an anonymous community post attached to one game.
// Name is the poster's per-session visitor number rendered as text.
type Message struct {
	ID     int64  `json:"id"     db:"id"`
	Name   string `json:"name"   db:"name"`
	Text   string `json:"text"   db:"text"`
	GameID int64  `json:"gameId" db:"game_id"`
}
