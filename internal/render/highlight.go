package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/debemdeboas/blogctl/internal/cache"
	"github.com/debemdeboas/blogctl/internal/theme"
	"github.com/debemdeboas/blogctl/internal/util"
)

// HighlightSource colors raw post markup for a 256-color terminal.
func HighlightSource(markup, style string) (string, error) {
	hash := util.ContentHashString(markup)
	variant := "source:" + style
	if out, ok := cache.GetRendered(hash, variant); ok {
		renderLogger.Debug().Str("contentHash", hash).Str("style", style).Msg("Cache hit for highlighted source")
		return out, nil
	}

	lexer := lexers.Get("html")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, markup)
	if err != nil {
		return markup, err
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, theme.SyntaxStyle(style), iterator); err != nil {
		return markup, err
	}

	out := buf.String()
	cache.SetRendered(hash, variant, out)
	return out, nil
}
