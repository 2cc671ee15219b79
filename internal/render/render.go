// Package render turns stored post markup into terminal text and editor markdown into markup.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/debemdeboas/blogctl/internal/cache"
	"github.com/debemdeboas/blogctl/internal/util"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

const ellipsis = "..."

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// Sanitize strips anything from post markup that is not safe user content.
func Sanitize(markup string) string {
	return ugcPolicy().Sanitize(markup)
}

var blockTags = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "ul": true, "ol": true, "table": true, "tr": true, "hr": true,
	"section": true, "article": true, "header": true, "footer": true, "figure": true,
}

// ToText flattens markup into readable lines. Block elements start new lines, list items are
// dashed and images are shown by their source.
func ToText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var b strings.Builder
	skip, pre := 0, 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tidy(b.String())

		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := string(z.Text())
			if pre == 0 {
				text = collapseSpace(text)
			}
			b.WriteString(text)

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if tt == html.StartTagToken {
					skip++
				}
			case tag == "br":
				b.WriteByte('\n')
			case tag == "li":
				b.WriteString("\n- ")
			case tag == "img":
				if src := attr(z, hasAttr, "src"); src != "" {
					fmt.Fprintf(&b, "[image: %s]", src)
				}
			case blockTags[tag]:
				if tag == "pre" {
					pre++
				}
				b.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "script" || tag == "style":
				if skip > 0 {
					skip--
				}
			case blockTags[tag]:
				if tag == "pre" && pre > 0 {
					pre--
				}
				b.WriteByte('\n')
			}
		}
	}
}

// PlainText is ToText over sanitized markup.
func PlainText(markup string) string {
	return ToText(Sanitize(markup))
}

// Excerpt returns the first n characters of the post text with whitespace collapsed,
// always followed by an ellipsis.
func Excerpt(markup string, n int) string {
	hash := util.ContentHashString(markup)
	variant := "excerpt:" + strconv.Itoa(n)
	if out, ok := cache.GetRendered(hash, variant); ok {
		return out
	}

	text := strings.Join(strings.Fields(PlainText(markup)), " ")
	if runes := []rune(text); n >= 0 && len(runes) > n {
		text = strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace)
	}
	out := text + ellipsis

	cache.SetRendered(hash, variant, out)
	return out
}

// FirstImageURL is the src of the first image in the markup, or empty.
func FirstImageURL(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" {
				continue
			}
			if src := attr(z, hasAttr, "src"); src != "" {
				return src
			}
		}
	}
}

func attr(z *html.Tokenizer, hasAttr bool, key string) string {
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = z.TagAttr()
		if string(k) == key {
			return string(v)
		}
	}
	return ""
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// tidy trims every line and keeps at most one blank line between paragraphs.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
