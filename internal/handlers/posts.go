package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petbond/backend/internal/logging"
	"github.com/petbond/backend/internal/models"
)

// PostHandler provides the community feed endpoints.
type PostHandler struct {
	Posts    PostStore
	Users    UserStore
	Sessions SessionManager
	NowFunc  func() time.Time
}

// Handle dispatches /api/v1/posts by method.
func (h PostHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.Feed(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Feed handles GET /api/v1/posts requests, newest first.
func (h PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := identify(w, r, h.Sessions); !ok {
		return
	}

	if h.Posts == nil {
		logger.Error("post store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "feed unavailable"})
		return
	}

	posts, err := h.Posts.List(ctx)
	if err != nil {
		logger.Error("list posts failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load feed"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, feedResponse{Posts: postViews(posts)})
}

// Create handles POST /api/v1/posts requests. The author name is taken from
// the caller's profile, never from the payload.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID, ok := identify(w, r, h.Sessions)
	if !ok {
		return
	}

	if h.Posts == nil || h.Users == nil {
		logger.Error("post dependencies unavailable", "hasPosts", h.Posts != nil, "hasUsers", h.Users != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "feed unavailable"})
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid post payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && len(req.Images) == 0 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "post needs content or images"})
		return
	}

	author, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		logger.Error("post author lookup failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve author"})
		return
	}

	post := models.Post{
		ID:        uuid.NewString(),
		Author:    author.Name,
		Content:   req.Content,
		Images:    req.Images,
		CreatedAt: h.now(),
	}

	if err := h.Posts.Create(ctx, post); err != nil {
		logger.Error("create post failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create post"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, postView{
		ID:        post.ID,
		Author:    post.Author,
		Content:   post.Content,
		Images:    post.Images,
		CreatedAt: post.CreatedAt,
	})
}

func (h PostHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type createPostRequest struct {
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

type feedResponse struct {
	Posts []postView `json:"posts"`
}

type postView struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Images    []string  `json:"images,omitempty"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

func postViews(posts []models.Post) []postView {
	out := make([]postView, 0, len(posts))
	for _, post := range posts {
		out = append(out, postView{
			ID:        post.ID,
			Author:    post.Author,
			Content:   post.Content,
			Images:    post.Images,
			Likes:     post.Likes,
			Comments:  post.Comments,
			CreatedAt: post.CreatedAt,
		})
	}
	return out
}
