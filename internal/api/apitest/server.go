// Package apitest runs an in-memory blog service for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/routes"
)

const (
	Token    = "test-token"
	Password = "secret"
	Author   = "alice"
)

// Request is what the server saw, with the JSON body decoded when present.
type Request struct {
	Method    string
	Path      string
	Auth      string
	RequestID string
	Body      map[string]any
}

// HasID reports whether the body carried a non-null id.
func (r Request) HasID() bool {
	v, ok := r.Body["id"]
	return ok && v != nil
}

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	posts    map[int]*model.Post
	nextID   int
	requests []Request
	failures map[string][]failure
	onUpsert func(path string)
}

func NewServer() *Server {
	s := &Server{
		posts:    make(map[int]*model.Post),
		nextID:   1,
		failures: make(map[string][]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+routes.AuthLogin, s.handleLogin)
	mux.HandleFunc("POST "+routes.AuthSignup, s.handleSignup)
	mux.HandleFunc("GET "+routes.AuthUser, s.authed(s.handleUser))
	mux.HandleFunc("GET "+routes.APIBlogs, s.handleList)
	mux.HandleFunc("GET "+routes.APIBlogsMine, s.authed(s.handleMine))
	mux.HandleFunc("GET "+routes.APIBlog, s.handleGet)
	mux.HandleFunc("DELETE "+routes.APIBlog, s.authed(s.handleDelete))
	mux.HandleFunc("POST "+routes.APIBlogsSaveDraft, s.authed(s.handleUpsert(model.StatusDraft)))
	mux.HandleFunc("POST "+routes.APIBlogsPublish, s.authed(s.handleUpsert(model.StatusPublished)))

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// Fail makes the next request to path answer with status and body.
func (s *Server) Fail(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], failure{status: status, body: body})
}

// OnUpsert installs f to run inside save-draft and publish handlers before the post is stored.
func (s *Server) OnUpsert(f func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpsert = f
}

// AddPost stores a post owned by Author and returns its id.
func (s *Server) AddPost(title, content, tags string, status model.Status) model.PostID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(title, content, tags, status)
}

func (s *Server) Post(id model.PostID) (*model.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return nil, false
	}
	p, ok := s.posts[n]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo filters by method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) insert(title, content, tags string, status model.Status) model.PostID {
	id := s.nextID
	s.nextID++
	now := model.Timestamp{Time: time.Now().UTC()}
	s.posts[id] = &model.Post{
		ID:        model.PostID(strconv.Itoa(id)),
		Title:     title,
		Content:   content,
		Tags:      tags,
		Status:    status,
		Author:    Author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return model.PostID(strconv.Itoa(id))
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			dec := json.NewDecoder(r.Body)
			dec.UseNumber()
			if err := dec.Decode(&body); err == nil {
				req.Body = body
			}
		}
		r.Body = http.NoBody

		s.mu.Lock()
		s.requests = append(s.requests, req)
		var f *failure
		if queued := s.failures[r.URL.Path]; len(queued) > 0 {
			f = &queued[0]
			s.failures[r.URL.Path] = queued[1:]
		}
		s.mu.Unlock()

		if f != nil {
			w.WriteHeader(f.status)
			w.Write([]byte(f.body))
			return
		}

		ctx := r.Context()
		next.ServeHTTP(w, r.WithContext(withBody(ctx, req.Body)))
	})
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "Missing Authorization Header"})
			return
		}
		if auth != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "Token has expired"})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing email or password"})
		return
	}
	if password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   Token,
		"user":    map[string]any{"id": 1, "username": Author, "email": email},
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	username, _ := body["username"].(string)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if username == "" || email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing required fields"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Signup successful",
		"token":   Token,
		"user":    map[string]any{"id": 1, "username": username, "email": email},
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": Author, "email": Author + "@example.com"})
}

func (s *Server) sorted(keep func(*model.Post) bool) []model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.posts))
	for id := range s.posts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		if p := s.posts[id]; keep(p) {
			out = append(out, *p)
		}
	}
	return out
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sorted(func(p *model.Post) bool { return p.Status == model.StatusPublished }))
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sorted(func(*model.Post) bool { return true }))
}

func (s *Server) lookup(w http.ResponseWriter, raw string) (int, *model.Post, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Blog not found"})
		return 0, nil, false
	}
	p, ok := s.posts[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Blog not found"})
		return 0, nil, false
	}
	return id, p, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	_, p, ok := s.lookup(w, r.PathValue("id"))
	var cp model.Post
	if ok {
		cp = *p
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	if cp.Status == model.StatusDraft && r.Header.Get("Authorization") != "Bearer "+Token {
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, ok := s.lookup(w, r.PathValue("id"))
	if !ok {
		return
	}
	delete(s.posts, id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Blog deleted"})
}

func (s *Server) handleUpsert(status model.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := bodyFrom(r.Context())
		title, _ := body["title"].(string)
		content, _ := body["content"].(string)
		tags, _ := body["tags"].(string)

		if status == model.StatusDraft && title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Title is required"})
			return
		}
		if status == model.StatusPublished && (title == "" || content == "") {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Title and content are required"})
			return
		}

		s.mu.Lock()
		hook := s.onUpsert
		s.mu.Unlock()
		if hook != nil {
			hook(r.URL.Path)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if raw, ok := body["id"]; ok && raw != nil {
			idStr := strings.Trim(toString(raw), `"`)
			_, p, found := s.lookup(w, idStr)
			if !found {
				return
			}
			p.Title, p.Content, p.Tags, p.Status = title, content, tags, status
			p.UpdatedAt = model.Timestamp{Time: time.Now().UTC()}
			writeJSON(w, http.StatusOK, map[string]any{"message": upsertMessage(status, true), "blog": json.Number(idStr)})
			return
		}

		id := s.insert(title, content, tags, status)
		writeJSON(w, http.StatusCreated, map[string]any{"message": upsertMessage(status, false), "blog": json.Number(id)})
	}
}

func upsertMessage(status model.Status, updated bool) string {
	switch {
	case status == model.StatusPublished:
		return "Blog published"
	case updated:
		return "Draft updated"
	default:
		return "Draft saved"
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	case string:
		return t
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
