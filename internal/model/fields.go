package model

import "strings"

// Fields is the editable part of a post.
type Fields struct {
	Title   string
	Content string
	Tags    string
}

func (f Fields) Equal(o Fields) bool {
	return f.Title == o.Title && f.Content == o.Content && f.Tags == o.Tags
}

// HasTitle ignores whitespace-only titles.
func (f Fields) HasTitle() bool {
	return strings.TrimSpace(f.Title) != ""
}

func (f Fields) Publishable() bool {
	return f.HasTitle() && strings.TrimSpace(f.Content) != ""
}

// ParseTags splits comma-separated tags, trimming and dropping empty and repeated names.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

func JoinTags(tags []string) string {
	return strings.Join(ParseTags(strings.Join(tags, ",")), ", ")
}
