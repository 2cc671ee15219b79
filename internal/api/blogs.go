package api

import (
	"context"
	"net/http"

	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/routes"
)

// UpsertRequest creates a post when ID is zero and updates it otherwise.
type UpsertRequest struct {
	ID      model.PostID `json:"id"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Tags    string       `json:"tags"`
	Status  model.Status `json:"status"`
}

func NewUpsert(id model.PostID, f model.Fields, status model.Status) UpsertRequest {
	return UpsertRequest{ID: id, Title: f.Title, Content: f.Content, Tags: f.Tags, Status: status}
}

type UpsertResult struct {
	ID      model.PostID `json:"blog"`
	Message string       `json:"message"`
}

type messageResult struct {
	Message string `json:"message"`
}

func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := c.do(ctx, http.MethodGet, routes.APIBlogs, authOptional, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListMyPosts returns the caller's posts in any status.
func (c *Client) ListMyPosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := c.do(ctx, http.MethodGet, routes.APIBlogsMine, authRequired, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id model.PostID) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, http.MethodGet, routes.Blog(string(id)), authOptional, nil, &post); err != nil {
		return nil, err
	}
	if post.ID.IsZero() {
		post.ID = id
	}
	return &post, nil
}

func (c *Client) SaveDraft(ctx context.Context, req UpsertRequest) (*UpsertResult, error) {
	req.Status = model.StatusDraft
	return c.upsert(ctx, routes.APIBlogsSaveDraft, req)
}

func (c *Client) Publish(ctx context.Context, req UpsertRequest) (*UpsertResult, error) {
	req.Status = model.StatusPublished
	return c.upsert(ctx, routes.APIBlogsPublish, req)
}

func (c *Client) upsert(ctx context.Context, path string, req UpsertRequest) (*UpsertResult, error) {
	var res UpsertResult
	if err := c.do(ctx, http.MethodPost, path, authRequired, req, &res); err != nil {
		return nil, err
	}
	// An update may answer without echoing the id.
	if res.ID.IsZero() {
		res.ID = req.ID
	}
	return &res, nil
}

func (c *Client) DeletePost(ctx context.Context, id model.PostID) (string, error) {
	var res messageResult
	if err := c.do(ctx, http.MethodDelete, routes.Blog(string(id)), authRequired, nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}
