// Package view holds the listing, drafts and single-post flows shown by the CLI.
package view

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/debemdeboas/blogctl/internal/api"
	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/notify"
	"github.com/rs/zerolog"
)

var viewLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	viewLogger = l
}

// Status of a list.
type Status int

const (
	StatusLoading Status = iota
	StatusEmpty
	StatusFailed
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "ready"
	}
}

type Blogs interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	ListMyPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, id model.PostID) (*model.Post, error)
	DeletePost(ctx context.Context, id model.PostID) (string, error)
	Publish(ctx context.Context, req api.UpsertRequest) (*api.UpsertResult, error)
}

// Pointer forgets the draft pointer when it names a post that no longer exists as a draft.
type Pointer interface {
	HasToken() bool
	ClearDraftPointerIf(id model.PostID) (bool, error)
}

type list struct {
	mu     sync.Mutex
	status Status
	items  []model.Post
	err    error
}

func (l *list) begin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = StatusLoading
	l.err = nil
}

func (l *list) finish(items []model.Post, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.status = StatusFailed
		l.err = err
		return
	}
	l.items = items
	if len(items) == 0 {
		l.status = StatusEmpty
	} else {
		l.status = StatusReady
	}
}

func (l *list) remove(id model.PostID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = slices.DeleteFunc(l.items, func(p model.Post) bool { return p.ID == id })
	if len(l.items) == 0 {
		l.status = StatusEmpty
	}
}

func (l *list) find(id model.PostID) (model.Post, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.items {
		if p.ID == id {
			return p, true
		}
	}
	return model.Post{}, false
}

func (l *list) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *list) Items() []model.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Err is the last load failure.
func (l *list) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Posts is the public listing. Deletes are confirmed by reloading the list.
type Posts struct {
	list
	blogs    Blogs
	pointer  Pointer
	notifier notify.Notifier
}

func NewPosts(blogs Blogs, pointer Pointer, n notify.Notifier) *Posts {
	if n == nil {
		n = notify.Discard
	}
	return &Posts{blogs: blogs, pointer: pointer, notifier: n}
}

func (p *Posts) Load(ctx context.Context) error {
	p.begin()
	posts, err := p.blogs.ListPosts(ctx)
	p.finish(posts, err)
	if err != nil {
		viewLogger.Error().Err(err).Msg("Failed to load posts")
		p.notifier.Error(config.MsgLoadPostsFailed, err)
		return err
	}
	return nil
}

// Delete removes a post the user already confirmed and reloads the listing.
func (p *Posts) Delete(ctx context.Context, id model.PostID) error {
	if _, err := p.blogs.DeletePost(ctx, id); err != nil {
		viewLogger.Error().Err(err).Str("post_id", string(id)).Msg("Failed to delete post")
		p.notifier.Error(api.Message(err, config.MsgDeleteFailed), err)
		return err
	}
	clearPointer(p.pointer, id)
	p.notifier.Info(config.MsgDeleted)
	return p.Load(ctx)
}

// Drafts lists the user's own drafts. Deletes and publishes remove the item locally.
type Drafts struct {
	list
	blogs    Blogs
	pointer  Pointer
	notifier notify.Notifier
}

func NewDrafts(blogs Blogs, pointer Pointer, n notify.Notifier) *Drafts {
	if n == nil {
		n = notify.Discard
	}
	return &Drafts{blogs: blogs, pointer: pointer, notifier: n}
}

func (d *Drafts) Load(ctx context.Context) error {
	if !d.pointer.HasToken() {
		d.notifier.Error(config.MsgDraftsLoginRequired, api.ErrAuthRequired)
		return api.ErrAuthRequired
	}

	d.begin()
	posts, err := d.blogs.ListMyPosts(ctx)
	if err == nil {
		posts = slices.DeleteFunc(posts, func(p model.Post) bool { return !p.IsDraft() })
	}
	d.finish(posts, err)
	if err != nil {
		viewLogger.Error().Err(err).Msg("Failed to load drafts")
		d.notifier.Error(config.MsgLoadDraftsFailed, err)
		return err
	}
	return nil
}

func (d *Drafts) Delete(ctx context.Context, id model.PostID) error {
	if _, err := d.blogs.DeletePost(ctx, id); err != nil {
		viewLogger.Error().Err(err).Str("post_id", string(id)).Msg("Failed to delete draft")
		d.notifier.Error(config.MsgDraftDeleteFailed, err)
		return err
	}
	d.remove(id)
	clearPointer(d.pointer, id)
	d.notifier.Info(config.MsgDraftDeleted)
	return nil
}

var (
	ErrNotListed  = errors.New("draft is not in the list")
	ErrIncomplete = errors.New(config.MsgTitleContentRequired)
)

// Publish publishes a listed draft with the fields it was loaded with.
func (d *Drafts) Publish(ctx context.Context, id model.PostID) error {
	draft, ok := d.find(id)
	if !ok {
		return ErrNotListed
	}
	if !draft.Fields().Publishable() {
		d.notifier.Error(config.MsgTitleContentRequired, ErrIncomplete)
		return ErrIncomplete
	}

	req := api.NewUpsert(draft.ID, draft.Fields(), model.StatusPublished)
	if _, err := d.blogs.Publish(ctx, req); err != nil {
		viewLogger.Error().Err(err).Str("post_id", string(id)).Msg("Failed to publish draft")
		d.notifier.Error(config.MsgPublishFailed, err)
		return err
	}
	d.remove(id)
	clearPointer(d.pointer, id)
	d.notifier.Info(config.MsgDraftPublished)
	return nil
}

// Show fetches one post for display.
func Show(ctx context.Context, blogs Blogs, id model.PostID, n notify.Notifier) (*model.Post, error) {
	post, err := blogs.GetPost(ctx, id)
	if err != nil {
		if n != nil {
			n.Error(api.Message(err, config.MsgLoadPostFailed), err)
		}
		return nil, err
	}
	return post, nil
}

func clearPointer(p Pointer, id model.PostID) {
	cleared, err := p.ClearDraftPointerIf(id)
	if err != nil {
		viewLogger.Error().Err(err).Msg("Failed to clear draft pointer")
		return
	}
	if cleared {
		viewLogger.Debug().Str("post_id", string(id)).Msg("Cleared draft pointer")
	}
}
