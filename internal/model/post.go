// Package model defines the blog records exchanged with the remote service.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PostID is assigned by the remote service. The zero value means "never saved".
type PostID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *PostID) UnmarshalJSON(b []byte) error {
	s, err := decodeID(b)
	if err != nil {
		return fmt.Errorf("post id: %w", err)
	}
	*id = PostID(s)
	return nil
}

// MarshalJSON writes numeric ids as numbers and the zero id as null.
func (id PostID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id PostID) String() string {
	return string(id)
}

func (id PostID) IsZero() bool {
	return id == ""
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

var ErrPublishedIncomplete = errors.New("published post requires title and content")

type Post struct {
	ID      PostID `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
	Status  Status `json:"status"`
	Author  string `json:"author,omitempty"`

	CreatedAt Timestamp `json:"created_at,omitempty"`
	UpdatedAt Timestamp `json:"updated_at,omitempty"`
}

func (p *Post) IsDraft() bool {
	return p.Status == StatusDraft
}

// DisplayTitle is what listings show for the post.
func (p *Post) DisplayTitle() string {
	if strings.TrimSpace(p.Title) == "" {
		return "Untitled"
	}
	return p.Title
}

func (p *Post) TagList() []string {
	return ParseTags(p.Tags)
}

func (p *Post) Fields() Fields {
	return Fields{Title: p.Title, Content: p.Content, Tags: p.Tags}
}

// Validate enforces that a published post has both a title and content.
func (p *Post) Validate() error {
	if p.Status == StatusPublished && (p.Title == "" || p.Content == "") {
		return ErrPublishedIncomplete
	}
	return nil
}

// Timestamp decodes the service's ISO-8601 times, which may lack a zone.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func decodeID(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
