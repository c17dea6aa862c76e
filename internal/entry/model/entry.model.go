package model

import (
	"net/http"
	"strconv"
)

// AddEntryRequest is the form posted to /add.
type AddEntryRequest struct {
	Title string
	Text  string
}

// AddEntryRequestFromForm reads the title and text fields. Missing fields
// are empty strings and fail validation later.
func AddEntryRequestFromForm(r *http.Request) AddEntryRequest {
	return AddEntryRequest{
		Title: r.PostFormValue("title"),
		Text:  r.PostFormValue("text"),
	}
}

// ParseEntryID parses the {id} path segment. Only unsigned decimal digits
// are accepted; signs and whitespace do not name an entry.
func ParseEntryID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
