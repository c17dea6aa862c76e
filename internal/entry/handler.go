package handler

import (
	"net/http"

	"notepost/config/database"
	"notepost/internal/entry/model"
	"notepost/internal/entry/service"
	"notepost/pkg/logger"
	"notepost/store"
	"notepost/views"
)

// Flasher queues one-shot messages for the next rendered page.
type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, msg string)
}

type EntryHandler struct {
	Service *service.EntryService
	Views   *views.Renderer
	Flash   Flasher
}

func NewEntryHandler(service *service.EntryService, views *views.Renderer, flash Flasher) *EntryHandler {
	return &EntryHandler{Service: service, Views: views, Flash: flash}
}

// ShowEntries renders the list. A storage failure is shown inline and the
// page renders with no entries.
func (h *EntryHandler) ShowEntries(w http.ResponseWriter, r *http.Request) {
	var (
		entries []store.Entry
		inline  []string
	)

	db, err := database.FromContext(r.Context())
	if err == nil {
		entries, err = h.Service.ListEntries(r.Context(), db)
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to list entries: %v", err)
		inline = append(inline, "Error retrieving entries: "+err.Error())
		entries = nil
	}

	h.Views.Render(w, r, views.ShowEntries, views.Page{Entries: entries}, inline...)
}

// AddEntry stores a posted entry. Every outcome redirects to the list.
func (h *EntryHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	req := model.AddEntryRequestFromForm(r)

	if err := service.ValidateEntry(req); err != nil {
		h.Flash.Add(w, r, err.Error())
		h.redirectToList(w, r)
		return
	}

	db, err := database.FromContext(r.Context())
	if err == nil {
		_, err = h.Service.AddEntry(r.Context(), db, req)
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to add entry: %v", err)
		h.Flash.Add(w, r, "Error adding entry: "+err.Error())
	} else {
		h.Flash.Add(w, r, "New entry was successfully posted")
	}
	h.redirectToList(w, r)
}

// DeleteEntry removes the entry named by the {id} path segment.
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := model.ParseEntryID(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	db, err := database.FromContext(r.Context())
	if err == nil {
		err = h.Service.DeleteEntry(r.Context(), db, id)
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to delete entry %d: %v", id, err)
		h.Flash.Add(w, r, "Error deleting entry: "+err.Error())
	} else {
		h.Flash.Add(w, r, "Entry was successfully deleted")
	}
	h.redirectToList(w, r)
}

func (h *EntryHandler) redirectToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}
