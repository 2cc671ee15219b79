package render

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
)

// MarkdownToHTML converts editor input into the markup stored as post content.
func MarkdownToHTML(md []byte) []byte {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions(
		parser.CommonExtensions | parser.AutoHeadingIDs | parser.Footnotes |
			parser.SuperSubscript | parser.NoEmptyLineBeforeBlock,
	)
	r := md_html.NewRenderer(md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks,
	})

	return markdown.ToHTML(md, p, r)
}

// MmarkToHTML renders a full Mmark document, title block included, and returns its title data.
// Documents without a title block get an "Untitled" English title.
func MmarkToHTML(md []byte) ([]byte, *mast.TitleData) {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions(mparser.Extensions | parser.NoIntraEmphasis)
	init := mparser.NewInitial("")
	var info *mast.TitleData

	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		ReadIncludeFn: init.ReadInclude,
		Flags:         parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)
	mparser.AddIndex(doc)

	if info == nil {
		info = &mast.TitleData{Title: "Untitled", Language: "en"}
	}
	if info.Language == "" {
		info.Language = "en"
	}

	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(info.Language),
	}
	opts := md_html.RendererOptions{
		RenderNodeHook: mhtmlOpts.RenderHook,
		Flags:          md_html.CommonFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	renderLogger.Debug().Str("title", info.Title).Msg("Rendered mmark document")
	return markdown.Render(doc, md_html.NewRenderer(opts)), info
}
