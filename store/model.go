package store

// Entry is a single posted note.
type Entry struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}
