// Package editor drives one post through loading, editing, auto-saving and publishing.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/blogctl/internal/api"
	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/debounce"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/notify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

type State int

const (
	StateLoading State = iota
	StateEditing
	StateSaving
	StatePublished
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StatePublished:
		return "published"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrNotEditable          = errors.New("post is not editable")
	ErrTitleRequired        = errors.New(config.MsgTitleRequired)
	ErrTitleContentRequired = errors.New(config.MsgTitleContentRequired)
	ErrAuthRequired         = api.ErrAuthRequired
	ErrLoadFailed           = errors.New(config.MsgLoadPostFailed)
	ErrClosed               = errors.New("editor closed")
)

// Blogs is the part of the remote service the controller needs.
type Blogs interface {
	GetPost(ctx context.Context, id model.PostID) (*model.Post, error)
	SaveDraft(ctx context.Context, req api.UpsertRequest) (*api.UpsertResult, error)
	Publish(ctx context.Context, req api.UpsertRequest) (*api.UpsertResult, error)
}

// Session is the part of the session store the controller needs.
type Session interface {
	HasToken() bool
	DraftPointer() (model.PostID, bool)
	SetDraftPointer(id model.PostID) error
	ClearDraftPointer() error
}

type Options struct {
	Clock debounce.Clock
	// Delay is the quiet period before an auto-save. Zero means five seconds.
	Delay    time.Duration
	Notifier notify.Notifier
	// SaveTimeout bounds each auto-save request. Zero leaves it to the client.
	SaveTimeout time.Duration
}

type Controller struct {
	blogs    Blogs
	session  Session
	notifier notify.Notifier
	timeout  time.Duration
	autosave *debounce.Debouncer
	log      zerolog.Logger

	mu       sync.Mutex
	state    State
	id       model.PostID
	fields   model.Fields
	saved    model.Fields
	inFlight int
	closed   bool
}

func New(blogs Blogs, session Session, opts Options) *Controller {
	if opts.Delay <= 0 {
		opts.Delay = 5 * time.Second
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}

	c := &Controller{
		blogs:    blogs,
		session:  session,
		notifier: opts.Notifier,
		timeout:  opts.SaveTimeout,
		state:    StateLoading,
		log:      editorLogger.With().Str("editor_session", uuid.NewString()).Logger(),
	}
	c.autosave = debounce.New(opts.Clock, opts.Delay, c.autoSave)
	return c
}

// Open loads the post to edit. With an empty id it resumes the stored draft pointer
// when that still names a draft, and otherwise starts blank.
func (c *Controller) Open(ctx context.Context, id model.PostID) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = StateLoading
	c.mu.Unlock()

	if !id.IsZero() {
		return c.openExplicit(ctx, id)
	}

	pointer, ok := c.session.DraftPointer()
	if !ok {
		c.startBlank()
		return nil
	}

	post, err := c.blogs.GetPost(ctx, pointer)
	if err != nil || !post.IsDraft() {
		c.log.Debug().Err(err).Str("draft_id", string(pointer)).Msg("Discarding stale draft pointer")
		if clearErr := c.session.ClearDraftPointer(); clearErr != nil {
			c.log.Error().Err(clearErr).Msg("Failed to clear draft pointer")
		}
		c.startBlank()
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.adoptLocked(post)
	c.log.Info().Str("draft_id", string(post.ID)).Msg("Resumed draft")
	return nil
}

func (c *Controller) openExplicit(ctx context.Context, id model.PostID) error {
	post, err := c.blogs.GetPost(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.adoptLocked(post)

	// A published post is never remembered as the draft to resume.
	if post.IsDraft() {
		if err := c.session.SetDraftPointer(post.ID); err != nil {
			c.log.Error().Err(err).Msg("Failed to store draft pointer")
		}
	}
	return nil
}

func (c *Controller) adoptLocked(post *model.Post) {
	c.id = post.ID
	c.fields = post.Fields()
	c.saved = c.fields
	c.state = StateEditing
}

func (c *Controller) startBlank() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.id = ""
	c.fields = model.Fields{}
	c.saved = model.Fields{}
	c.state = StateEditing
}

func (c *Controller) SetTitle(v string) error {
	return c.edit(func(f *model.Fields) { f.Title = v })
}

func (c *Controller) SetContent(v string) error {
	return c.edit(func(f *model.Fields) { f.Content = v })
}

func (c *Controller) SetTags(v string) error {
	return c.edit(func(f *model.Fields) { f.Tags = v })
}

// edit applies change and restarts the auto-save quiet period.
func (c *Controller) edit(change func(*model.Fields)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateEditing && c.state != StateSaving {
		c.mu.Unlock()
		return ErrNotEditable
	}
	change(&c.fields)
	c.mu.Unlock()

	c.autosave.Trigger()
	return nil
}

func (c *Controller) autoSave() {
	c.mu.Lock()
	if c.closed || (c.state != StateEditing && c.state != StateSaving) {
		c.mu.Unlock()
		return
	}
	if c.inFlight > 0 {
		c.mu.Unlock()
		c.log.Debug().Msg("Save in flight, postponing auto-save")
		c.autosave.Trigger()
		return
	}
	if !c.session.HasToken() || !c.fields.HasTitle() || c.fields.Equal(c.saved) {
		c.mu.Unlock()
		return
	}
	req := c.beginSaveLocked(model.StatusDraft)
	c.mu.Unlock()

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.blogs.SaveDraft(ctx, req)
	if discarded := c.finishSave(req, res, err); discarded {
		return
	}
	if err != nil {
		c.log.Error().Err(err).Msg("Auto-save failed")
		c.notifier.Error(api.Message(err, config.MsgAutosaveFailed), err)
		return
	}
	c.notifier.Info(config.MsgDraftAutosaved)
}

// SaveDraft stores the current fields as a draft right away.
func (c *Controller) SaveDraft(ctx context.Context) (*api.UpsertResult, error) {
	c.mu.Lock()
	if err := c.checkActionLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if !c.fields.HasTitle() {
		c.mu.Unlock()
		return nil, ErrTitleRequired
	}
	if !c.session.HasToken() {
		c.mu.Unlock()
		return nil, ErrAuthRequired
	}
	req := c.beginSaveLocked(model.StatusDraft)
	c.mu.Unlock()

	res, err := c.blogs.SaveDraft(ctx, req)
	if discarded := c.finishSave(req, res, err); discarded {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Publish makes the post public and ends the editing session.
func (c *Controller) Publish(ctx context.Context) (model.PostID, error) {
	c.mu.Lock()
	if err := c.checkActionLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	if !c.fields.Publishable() {
		c.mu.Unlock()
		return "", ErrTitleContentRequired
	}
	if !c.session.HasToken() {
		c.mu.Unlock()
		return "", ErrAuthRequired
	}
	req := c.beginSaveLocked(model.StatusPublished)
	c.mu.Unlock()

	res, err := c.blogs.Publish(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if c.closed {
		return "", ErrClosed
	}
	if err != nil {
		if c.inFlight == 0 && c.state == StateSaving {
			c.state = StateEditing
		}
		return "", err
	}

	c.autosave.Cancel()
	c.id = res.ID
	c.saved = model.Fields{Title: req.Title, Content: req.Content, Tags: req.Tags}
	c.state = StatePublished
	if err := c.session.ClearDraftPointer(); err != nil {
		c.log.Error().Err(err).Msg("Failed to clear draft pointer")
	}
	c.log.Info().Str("post_id", string(res.ID)).Msg("Published")
	return res.ID, nil
}

func (c *Controller) checkActionLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.state != StateEditing && c.state != StateSaving {
		return ErrNotEditable
	}
	return nil
}

func (c *Controller) beginSaveLocked(status model.Status) api.UpsertRequest {
	c.inFlight++
	c.state = StateSaving
	return api.NewUpsert(c.id, c.fields, status)
}

// finishSave applies a draft upsert result. It reports true when the controller was
// closed meanwhile and the result was dropped.
func (c *Controller) finishSave(req api.UpsertRequest, res *api.UpsertResult, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight--
	if c.closed {
		c.log.Debug().Msg("Dropping save result after close")
		return true
	}
	if c.state == StateSaving && c.inFlight == 0 {
		c.state = StateEditing
	}
	if err != nil || c.state == StatePublished {
		return false
	}

	c.saved = model.Fields{Title: req.Title, Content: req.Content, Tags: req.Tags}
	if !res.ID.IsZero() && res.ID != c.id {
		c.id = res.ID
		if err := c.session.SetDraftPointer(res.ID); err != nil {
			c.log.Error().Err(err).Msg("Failed to store draft pointer")
		}
		c.log.Info().Str("draft_id", string(res.ID)).Msg("Draft created")
	}
	return false
}

// Close stops auto-saving. Results of requests still in flight are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.autosave.Close()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ID is zero until the service assigns one.
func (c *Controller) ID() model.PostID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller) Fields() model.Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// Dirty reports unsaved changes since the last successful save or load.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.fields.Equal(c.saved)
}

// AutosavePending reports whether an auto-save is scheduled.
func (c *Controller) AutosavePending() bool {
	return c.autosave.Pending()
}
