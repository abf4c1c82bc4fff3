package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/quillhq/quill/db"
)

// CategoryRecord is the client-visible projection of a category.
type CategoryRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Desc      string `json:"desc"`
	UpdatedBy string `json:"updated_by"`
}

func newCategoryRecord(c *db.Category) CategoryRecord {
	return CategoryRecord{
		ID:        c.ID,
		Title:     c.Title,
		Desc:      c.Desc,
		UpdatedBy: c.UpdatedBy,
	}
}

// CreateCategoryHandler creates a category.
// Endpoint: POST /api/v1/categories
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req struct {
		Title string `json:"title"`
		Desc  string `json:"desc"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	category, err := a.DbContent().CreateCategory(db.Category{
		Title:     req.Title,
		Desc:      req.Desc,
		UpdatedBy: user.ID,
	})
	if err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			writeJsonError(w, errorTitleConflict)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusCreated,
			Status:  true,
			Message: "Category created",
		},
		Data: map[string]any{"category": newCategoryRecord(category)},
	})
}

// UpdateCategoryHandler updates title and description of a category.
// Endpoint: PUT /api/v1/categories/:id
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req struct {
		Title string `json:"title"`
		Desc  string `json:"desc"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	id := r.PathValue("id")
	existing, err := a.DbContent().GetCategoryById(id)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if existing == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	err = a.DbContent().UpdateCategory(db.Category{
		ID:        id,
		Title:     req.Title,
		Desc:      req.Desc,
		UpdatedBy: user.ID,
	})
	if err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			writeJsonError(w, errorTitleConflict)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	existing.Title = req.Title
	existing.Desc = req.Desc
	existing.UpdatedBy = user.ID

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "Category updated",
		},
		Data: map[string]any{"category": newCategoryRecord(existing)},
	})
}

// DeleteCategoryHandler removes a category.
// Endpoint: DELETE /api/v1/categories/:id
// Authenticated: Yes
func (a *App) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	id := r.PathValue("id")
	existing, err := a.DbContent().GetCategoryById(id)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if existing == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	if err := a.DbContent().DeleteCategory(id); err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okDeleted)
}

// GetCategoryHandler returns a single category.
// Endpoint: GET /api/v1/categories/:id
// Authenticated: No
func (a *App) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, err := a.DbContent().GetCategoryById(r.PathValue("id"))
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if category == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "OK",
		},
		Data: map[string]any{"category": newCategoryRecord(category)},
	})
}

// ListCategoriesHandler lists categories with search and pagination.
// Endpoint: GET /api/v1/categories?q=&size=&page=
// Authenticated: No
func (a *App) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	page := a.paginationFromRequest(r)
	q := r.URL.Query().Get("q")

	categories, total, err := a.DbContent().ListCategories(q, page.Limit(), page.Offset())
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	records := make([]CategoryRecord, 0, len(categories))
	for _, c := range categories {
		records = append(records, newCategoryRecord(c))
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "OK",
		},
		Data: map[string]any{
			"categories": records,
			"total":      total,
			"page":       page.Page,
			"pages":      totalPages(total, page.Size),
		},
	})
}
