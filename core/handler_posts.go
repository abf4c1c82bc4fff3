package core

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quillhq/quill/db"
)

// PostRecord is the client-visible projection of a post. File and category
// stay as ids in listings; GetPostHandler resolves them into objects.
type PostRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Desc      string `json:"desc"`
	File      string `json:"file,omitempty"`
	Category  string `json:"category"`
	UpdatedBy string `json:"updated_by"`
}

func newPostRecord(p *db.Post) PostRecord {
	return PostRecord{
		ID:        p.ID,
		Title:     p.Title,
		Desc:      p.Desc,
		File:      p.File,
		Category:  p.Category,
		UpdatedBy: p.UpdatedBy,
	}
}

// postRequest is the shared create/update body.
type postRequest struct {
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	File     string `json:"file"`
	Category string `json:"category"`
}

// validatePostRefs checks that the referenced category exists and, when a
// file id is given, that the file exists. Returns the precomputed error
// response to write, or the zero response when the references hold.
func (a *App) validatePostRefs(req postRequest) (jsonResponse, bool) {
	category, err := a.DbContent().GetCategoryById(req.Category)
	if err != nil {
		return errorServiceUnavailable, false
	}
	if category == nil {
		return errorNotFound, false
	}

	if req.File != "" {
		file, err := a.DbFile().GetFileById(req.File)
		if err != nil {
			return errorServiceUnavailable, false
		}
		if file == nil {
			return errorNotFound, false
		}
	}

	return jsonResponse{}, true
}

// CreatePostHandler creates a post.
// Endpoint: POST /api/v1/posts
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Category == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if resp, ok := a.validatePostRefs(req); !ok {
		writeJsonError(w, resp)
		return
	}

	post, err := a.DbContent().CreatePost(db.Post{
		Title:     req.Title,
		Desc:      req.Desc,
		File:      req.File,
		Category:  req.Category,
		UpdatedBy: user.ID,
	})
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusCreated,
			Status:  true,
			Message: "Post created",
		},
		Data: map[string]any{"post": newPostRecord(post)},
	})
}

// UpdatePostHandler updates a post.
// Endpoint: PUT /api/v1/posts/:id
// Authenticated: Yes
// Allowed Mimetype: application/json
func (a *App) UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Category == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	id := r.PathValue("id")
	existing, err := a.DbContent().GetPostById(id)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if existing == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	if resp, ok := a.validatePostRefs(req); !ok {
		writeJsonError(w, resp)
		return
	}

	updated := db.Post{
		ID:        id,
		Title:     req.Title,
		Desc:      req.Desc,
		File:      req.File,
		Category:  req.Category,
		UpdatedBy: user.ID,
	}
	if err := a.DbContent().UpdatePost(updated); err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "Post updated",
		},
		Data: map[string]any{"post": newPostRecord(&updated)},
	})
}

// DeletePostHandler removes a post.
// Endpoint: DELETE /api/v1/posts/:id
// Authenticated: Yes
func (a *App) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserFromContext(r.Context()); !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	id := r.PathValue("id")
	existing, err := a.DbContent().GetPostById(id)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if existing == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	if err := a.DbContent().DeletePost(id); err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okDeleted)
}

// GetPostHandler returns a single post with its file, category and author
// resolved into objects. The author appears as a UserRecord, password hash
// and codes never leave the store layer.
// Endpoint: GET /api/v1/posts/:id
// Authenticated: No
func (a *App) GetPostHandler(w http.ResponseWriter, r *http.Request) {
	post, err := a.DbContent().GetPostById(r.PathValue("id"))
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if post == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	data := map[string]any{"post": newPostRecord(post)}

	if post.File != "" {
		data["file"] = newFileRecord(a.fileById(post.File))
	}
	if category, err := a.DbContent().GetCategoryById(post.Category); err == nil && category != nil {
		data["category"] = newCategoryRecord(category)
	}
	if author, err := a.DbAuth().GetUserById(post.UpdatedBy); err == nil && author != nil {
		data["author"] = NewUserRecord(author)
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "OK",
		},
		Data: data,
	})
}

// ListPostsHandler lists posts with search, category filter and pagination.
// Endpoint: GET /api/v1/posts?q=&category=&size=&page=
// Authenticated: No
func (a *App) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	page := a.paginationFromRequest(r)
	q := r.URL.Query().Get("q")
	categoryID := r.URL.Query().Get("category")

	posts, total, err := a.DbContent().ListPosts(q, categoryID, page.Limit(), page.Offset())
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	records := make([]PostRecord, 0, len(posts))
	for _, p := range posts {
		records = append(records, newPostRecord(p))
	}

	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "OK",
		},
		Data: map[string]any{
			"posts": records,
			"total": total,
			"page":  page.Page,
			"pages": totalPages(total, page.Size),
		},
	})
}
