// Package routes lists the remote blog service endpoints.
package routes

import (
	"net/url"
	"strings"
)

// Auth
const (
	AuthLogin  = "/auth/login"
	AuthSignup = "/auth/signup"
	AuthUser   = "/auth/user"
)

// Blogs
const (
	APIBlogs          = "/api/blogs"
	APIBlogsMine      = "/api/blogs/my"
	APIBlogsSaveDraft = "/api/blogs/save-draft"
	APIBlogsPublish   = "/api/blogs/publish"
	APIBlog           = "/api/blogs/{id}"
)

// Blog fills APIBlog with an escaped id.
func Blog(id string) string {
	return strings.Replace(APIBlog, "{id}", url.PathEscape(id), 1)
}
