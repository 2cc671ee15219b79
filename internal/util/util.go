// Package util holds content hashing and front matter helpers shared by the importer and backups.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
	"github.com/mmarkdown/mmark/v2/mast"
)

var ErrNoFrontMatter = errors.New("invalid front matter format")

var frontMatterDelimiter = []byte("%%%")

// FrontMatter is the Mmark title block of an imported document plus the blog-specific keys.
type FrontMatter struct {
	*mast.TitleData
	Tags  []string `toml:"tags"`
	Draft *bool    `toml:"draft"`
}

// TagString prefers explicit tags and falls back to the Mmark keywords.
func (f *FrontMatter) TagString() string {
	tags := f.Tags
	if len(tags) == 0 && f.TitleData != nil {
		tags = f.Keyword
	}
	return strings.Join(tags, ", ")
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// SplitFrontMatter decodes a leading %%% block and returns the remaining markdown.
func SplitFrontMatter(md []byte) (*FrontMatter, []byte, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	d := len(frontMatterDelimiter)
	if len(md) < 2*d || !bytes.HasPrefix(md, frontMatterDelimiter) {
		return nil, nil, ErrNoFrontMatter
	}

	closing := bytes.Index(md[d:], frontMatterDelimiter)
	if closing == -1 {
		return nil, nil, ErrNoFrontMatter
	}
	closing += d

	// The closing delimiter has to sit on its own line.
	if md[closing-1] != '\n' {
		return nil, nil, ErrNoFrontMatter
	}

	info := &FrontMatter{TitleData: &mast.TitleData{}}
	if _, err := toml.Decode(string(md[d:closing]), info); err != nil {
		return nil, nil, fmt.Errorf("failed to decode front matter: %w", err)
	}
	if info.Language == "" {
		info.Language = "en"
	}

	body := bytes.TrimLeft(md[closing+d:], "\n")
	return info, body, nil
}
