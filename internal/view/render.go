package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/render"
	"github.com/debemdeboas/blogctl/internal/theme"
)

// Renderer draws posts as styled terminal text.
type Renderer struct {
	Theme         *theme.Theme
	ExcerptLength int
	SyntaxStyle   string
}

func NewRenderer(th *theme.Theme, excerptLength int, syntaxStyle string) *Renderer {
	if excerptLength <= 0 {
		excerptLength = 150
	}
	if syntaxStyle == "" {
		syntaxStyle = theme.DefaultSyntaxStyle(th.Name)
	}
	return &Renderer{Theme: th, ExcerptLength: excerptLength, SyntaxStyle: syntaxStyle}
}

// Card is the listing entry for a post: title, author, excerpt and tags.
func (r *Renderer) Card(p model.Post) string {
	lines := []string{
		r.Theme.Title.Render(p.DisplayTitle()) + " " + r.Theme.Muted.Render("#"+string(p.ID)),
	}
	if meta := r.meta(&p); meta != "" {
		lines = append(lines, meta)
	}
	lines = append(lines, r.Theme.Body.Render(render.Excerpt(p.Content, r.ExcerptLength)))
	if tags := r.tags(&p); tags != "" {
		lines = append(lines, tags)
	}
	return r.Theme.Card.Render(strings.Join(lines, "\n"))
}

// List renders the list in its current status.
func (r *Renderer) List(status Status, posts []model.Post, loading, empty string, err error) string {
	switch status {
	case StatusLoading:
		return r.Theme.Muted.Render(loading)
	case StatusFailed:
		msg := config.HTTPErrFallback
		if err != nil {
			msg = err.Error()
		}
		return r.Theme.Error.Render(msg)
	case StatusEmpty:
		return r.Theme.Muted.Render(empty)
	}

	cards := make([]string, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, r.Card(p))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (r *Renderer) Posts(p *Posts) string {
	return r.List(p.Status(), p.Items(), config.MsgLoadingPosts, config.MsgNoPosts, p.Err())
}

func (r *Renderer) Drafts(d *Drafts) string {
	return r.List(d.Status(), d.Items(), config.MsgLoadingDrafts, config.MsgNoDrafts, d.Err())
}

// Post is the full view of one post.
func (r *Renderer) Post(p *model.Post) string {
	var b strings.Builder
	b.WriteString(r.Theme.Title.Render(p.DisplayTitle()))
	b.WriteByte('\n')
	if meta := r.meta(p); meta != "" {
		b.WriteString(meta)
		b.WriteByte('\n')
	}
	if tags := r.tags(p); tags != "" {
		b.WriteString(tags)
		b.WriteByte('\n')
	}
	if img := render.FirstImageURL(p.Content); img != "" {
		b.WriteString(r.Theme.Muted.Render("cover: " + img))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(r.Theme.Body.Render(render.PlainText(p.Content)))
	return b.String()
}

// Source shows the stored markup highlighted.
func (r *Renderer) Source(p *model.Post) (string, error) {
	return render.HighlightSource(p.Content, r.SyntaxStyle)
}

func (r *Renderer) meta(p *model.Post) string {
	var parts []string
	if p.Author != "" {
		parts = append(parts, "by "+p.Author)
	}
	if p.IsDraft() {
		parts = append(parts, string(model.StatusDraft))
	}
	if !p.UpdatedAt.IsZero() {
		parts = append(parts, p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if len(parts) == 0 {
		return ""
	}
	return r.Theme.Meta.Render(strings.Join(parts, " · "))
}

func (r *Renderer) tags(p *model.Post) string {
	tags := p.TagList()
	if len(tags) == 0 {
		return ""
	}
	rendered := make([]string, len(tags))
	for i, t := range tags {
		rendered[i] = r.Theme.Tag.Render(t)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Notice formats a notification line.
func (r *Renderer) Notice(msg string, err error) string {
	if err != nil {
		return r.Theme.Error.Render(fmt.Sprintf("✗ %s", msg))
	}
	return r.Theme.Success.Render(fmt.Sprintf("✓ %s", msg))
}
