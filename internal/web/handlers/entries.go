package handlers

import (
	"fmt"
	"net/http"

	"github.com/saltyorg/microblog/internal/database"
)

// AllCategories is the category menu value meaning "no filter". A real
// category named "all" therefore cannot be selected on its own.
const AllCategories = "all"

// ListingData is the content of the entries listing page
type ListingData struct {
	Entries          []*database.Entry
	Categories       []string
	SelectedCategory string
}

// EditFormData is the content of the edit page
type EditFormData struct {
	ID       string
	Title    string
	Text     string
	Category string
}

// ShowEntries renders all entries with the category menu
func (h *Handlers) ShowEntries(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
	ctx := r.Context()
	conn, err := lease.Conn(ctx)
	if err != nil {
		return err
	}

	entries, err := conn.ListEntries(ctx)
	if err != nil {
		return err
	}
	categories, err := conn.ListCategories(ctx)
	if err != nil {
		return err
	}

	return h.render(w, r, "show_entries.html", ListingData{
		Entries:    entries,
		Categories: categories,
	}, "")
}

// AddEntry stores a new entry from the submitted form
func (h *Handlers) AddEntry(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
	fields, err := formFields(r, "title", "text", "category")
	if err != nil {
		return err
	}

	conn, err := lease.Conn(r.Context())
	if err != nil {
		return err
	}
	if _, err := conn.InsertEntry(r.Context(), fields[0], fields[1], fields[2]); err != nil {
		return err
	}

	if err := h.setFlash(w, "New entry was successfully posted"); err != nil {
		return err
	}
	h.redirect(w, r, "/")
	return nil
}

// ShowSelected renders the entries of one category. The empty selection and
// AllCategories redirect to the unfiltered listing instead.
func (h *Handlers) ShowSelected(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
	fields, err := formFields(r, "selected_category")
	if err != nil {
		return err
	}
	selected := fields[0]
	notice := fmt.Sprintf("Showing results for %s", selected)

	if selected == "" || selected == AllCategories {
		if err := h.setFlash(w, notice); err != nil {
			return err
		}
		h.redirect(w, r, "/")
		return nil
	}

	ctx := r.Context()
	conn, err := lease.Conn(ctx)
	if err != nil {
		return err
	}

	entries, err := conn.ListEntriesByCategory(ctx, selected)
	if err != nil {
		return err
	}
	categories, err := conn.ListCategories(ctx)
	if err != nil {
		return err
	}

	return h.render(w, r, "show_entries.html", ListingData{
		Entries:          entries,
		Categories:       categories,
		SelectedCategory: selected,
	}, notice)
}

// DeleteEntry removes the entry named by the deleted_post field
func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
	fields, err := formFields(r, "deleted_post")
	if err != nil {
		return err
	}
	id, err := parseEntryID("deleted_post", fields[0])
	if err != nil {
		return err
	}

	conn, err := lease.Conn(r.Context())
	if err != nil {
		return err
	}
	if err := conn.DeleteEntry(r.Context(), id); err != nil {
		return err
	}

	if err := h.setFlash(w, "Entry Deleted"); err != nil {
		return err
	}
	h.redirect(w, r, "/")
	return nil
}

// EditEntry renders the edit form filled with the values the client submitted.
// The entry is not re-read from the database.
func (h *Handlers) EditEntry(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
	fields, err := formFields(r, "old_title", "old_text", "old_category", "id")
	if err != nil {
		return err
	}

	return h.render(w, r, "edit_entry.html", EditFormData{
		Title:    fields[0],
		Text:     fields[1],
		Category: fields[2],
		ID:       fields[3],
	}, "")
}

// UpdateEditedEntry overwrites an entry with the submitted values
func (h *Handlers) UpdateEditedEntry(w http.ResponseWriter, r *http.Request, lease *database.Lease) error {
	fields, err := formFields(r, "updated_title", "updated_text", "updated_category", "id")
	if err != nil {
		return err
	}
	id, err := parseEntryID("id", fields[3])
	if err != nil {
		return err
	}

	conn, err := lease.Conn(r.Context())
	if err != nil {
		return err
	}
	if err := conn.UpdateEntry(r.Context(), id, fields[0], fields[1], fields[2]); err != nil {
		return err
	}

	if err := h.setFlash(w, "New entry was successfully updated."); err != nil {
		return err
	}
	h.redirect(w, r, "/")
	return nil
}
