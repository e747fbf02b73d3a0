package rest

import (
	"net/http"
	"time"

	"github.com/Alp4ka/quizhub/audit"
	"github.com/Alp4ka/quizhub/internal/models"
	"github.com/Alp4ka/quizhub/pager"
)

var changeSortColumns = pager.ColumnMapping{
	"createdAt": "created_at",
	"id":        "id",
}

var changeGetters = pager.Getters[audit.ChangeRecord]{
	"created_at": func(c audit.ChangeRecord) any { return c.CreatedAt },
	"id":         func(c audit.ChangeRecord) any { return c.ID },
}

// handleChanges lists the change log newest first unless sort says otherwise.
// Records are immutable, so keyset tokens stay valid while new changes arrive.
func (h *Handler) handleChanges(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	orderings, err := pageSort(r, changeSortColumns,
		pager.OrderBy{Column: "created_at", Direction: pager.SortDESC},
		pager.OrderBy{Column: "id", Direction: pager.SortDESC},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	pg, err := req.Keyset(orderings...)
	if err != nil {
		writeError(w, err)
		return
	}
	pg = pg.WithLookahead()

	q := h.db.WithContext(r.Context()).Model(&audit.ChangeRecord{})

	query := r.URL.Query()
	if kind := audit.Kind(query.Get("kind")); kind != "" {
		if !kind.Valid() {
			writeError(w, badRequest("unknown change kind %q", kind))
			return
		}
		q = q.Where("kind = ?", kind)
	}
	if name := query.Get("targetEntityName"); name != "" {
		q = q.Where("target_entity_name = ?", name)
	}
	if id := query.Get("targetId"); id != "" {
		q = q.Where("target_id = ?", id)
	}

	q, err = pg.Paginate(q)
	if err != nil {
		writeError(w, err)
		return
	}

	var rows []audit.ChangeRecord
	if err = q.Find(&rows).Error; err != nil {
		writeError(w, err)
		return
	}

	items, next, err := pager.NextPageKeysetCursor(pg, rows, changeGetters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pager.Page[audit.ChangeRecord]{
		Items:         nonNil(items),
		Limit:         pg.Limit(),
		NextPageToken: next.String(),
	})
}

var blogSortColumns = pager.ColumnMapping{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"story":     "story",
	"id":        "id",
}

type blogEntry struct {
	ID                 string    `json:"id"`
	Story              string    `json:"story"`
	Title              string    `json:"title"`
	Message            *string   `json:"message,omitempty"`
	ImageMimeType      *string   `json:"imageMimeType,omitempty"`
	ImageFileExtension *string   `json:"imageFileExtension,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toBlogEntry(e models.BlogEntry) blogEntry {
	return blogEntry{
		ID:                 e.ID,
		Story:              e.Story,
		Title:              e.Title,
		Message:            e.Message,
		ImageMimeType:      e.ImageMimeType,
		ImageFileExtension: e.ImageFileExtension,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

// handleBlogEntries lists blog entries newest first, optionally of one story.
// sort accepts createdAt, updatedAt, title, story and id.
func (h *Handler) handleBlogEntries(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	orderings, err := pageSort(r, blogSortColumns,
		pager.OrderBy{Column: "created_at", Direction: pager.SortDESC},
		pager.OrderBy{Column: "id", Direction: pager.SortASC},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	pg, err := req.Offset(orderings...)
	if err != nil {
		writeError(w, err)
		return
	}
	pg = pg.WithLookahead()

	q := h.db.WithContext(r.Context()).Model(&models.BlogEntry{})
	if story := r.URL.Query().Get("story"); story != "" {
		q = q.Where("story = ?", story)
	}

	q, err = pg.Paginate(q)
	if err != nil {
		writeError(w, err)
		return
	}

	var rows []models.BlogEntry
	if err = q.Find(&rows).Error; err != nil {
		writeError(w, err)
		return
	}

	rows, next, err := pager.NextPageOffsetCursor(pg, rows)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]blogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, toBlogEntry(row))
	}

	writeJSON(w, http.StatusOK, pager.Page[blogEntry]{
		Items:         items,
		Limit:         pg.Limit(),
		NextPageToken: next.String(),
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
