package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/editor"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/render"
)

const editorHelp = `Commands:
  title <text>        set the title
  content <markdown>  replace the content
  append <markdown>   add a paragraph to the content
  raw <html>          replace the content with markup as-is
  image <url>         append an image
  tags <a, b>         set the tags
  save                save the draft now
  publish             publish and leave the editor
  preview             show the post as it would be listed
  status              show the editor state
  quit                leave the editor`

// edit runs the interactive editor. Without an id it resumes the remembered draft.
func (a *App) edit(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	var id model.PostID
	if len(args) == 1 {
		id = model.PostID(args[0])
	}

	ctrl := editor.New(a.client, a.session, editor.Options{
		Clock:       a.clock,
		Delay:       a.cfg.AutosaveDelay(),
		Notifier:    a.notifier,
		SaveTimeout: a.cfg.APITimeout(),
	})
	defer ctrl.Close()

	if err := ctrl.Open(ctx, id); err != nil {
		a.report(err, config.MsgLoadPostFailed)
		// Back to the listing, as the editor never opened.
		if listErr := a.list(ctx, nil); listErr != nil {
			appLogger.Debug().Err(listErr).Msg("Listing after failed open")
		}
		return err
	}

	if cur := ctrl.ID(); !cur.IsZero() {
		fields := ctrl.Fields()
		fmt.Fprintln(a.out, a.renderer.Theme.Muted.Render(fmt.Sprintf("Editing #%s %q", cur, fields.Title)))
	} else {
		fmt.Fprintln(a.out, a.renderer.Theme.Muted.Render("New post"))
	}
	fmt.Fprintln(a.out, a.renderer.Theme.Muted.Render("Type 'help' for commands."))

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, err := a.prompt(a.editPrompt(ctrl))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		done, err := a.editCommand(ctx, ctrl, cmd, rest)
		if err != nil {
			appLogger.Debug().Err(err).Str("command", cmd).Msg("Editor command failed")
		}
		if done {
			return nil
		}
	}
}

func (a *App) editPrompt(ctrl *editor.Controller) string {
	p := "edit"
	if ctrl.Dirty() {
		p += "*"
	}
	if !a.Authenticated() {
		p += " (logged out)"
	}
	return p + "> "
}

// editCommand applies one editor command and reports whether the session is over.
func (a *App) editCommand(ctx context.Context, ctrl *editor.Controller, cmd, arg string) (bool, error) {
	var err error
	fallback := config.MsgSaveDraftFailed
	switch cmd {
	case "title":
		err = ctrl.SetTitle(arg)
	case "content":
		err = ctrl.SetContent(string(render.MarkdownToHTML([]byte(arg))))
	case "append":
		err = ctrl.SetContent(ctrl.Fields().Content + string(render.MarkdownToHTML([]byte(arg))))
	case "raw":
		err = ctrl.SetContent(arg)
	case "image":
		if arg == "" {
			fmt.Fprintln(a.out, "usage: image <url>")
			return false, nil
		}
		img := fmt.Sprintf(`<p><img src="%s"></p>`, html.EscapeString(arg))
		err = ctrl.SetContent(ctrl.Fields().Content + img)
	case "tags":
		err = ctrl.SetTags(arg)

	case "save":
		if _, err = ctrl.SaveDraft(ctx); err == nil {
			a.notifier.Info(config.MsgDraftSaved)
		}
	case "publish":
		fallback = config.MsgPublishFailed
		var id model.PostID
		if id, err = ctrl.Publish(ctx); err == nil {
			a.notifier.Info(config.MsgPublished)
			fmt.Fprintln(a.out, a.renderer.Theme.Muted.Render("Published as #"+string(id)))
			return true, nil
		}

	case "preview":
		f := ctrl.Fields()
		post := model.Post{ID: ctrl.ID(), Title: f.Title, Content: f.Content, Tags: f.Tags, Status: model.StatusDraft}
		fmt.Fprintln(a.out, a.renderer.Card(post))
		return false, nil
	case "status":
		id := ctrl.ID()
		if id.IsZero() {
			id = "-"
		}
		fmt.Fprintln(a.out, a.renderer.Theme.Status.Render(fmt.Sprintf(
			"state=%s id=%s dirty=%t autosave=%t authenticated=%t",
			ctrl.State(), id, ctrl.Dirty(), ctrl.AutosavePending(), a.Authenticated(),
		)))
		return false, nil
	case "help":
		fmt.Fprintln(a.out, editorHelp)
		return false, nil
	case "quit", "exit":
		if ctrl.Dirty() {
			fmt.Fprintln(a.out, a.renderer.Theme.Muted.Render("Unsaved changes were discarded"))
		}
		return true, nil
	default:
		fmt.Fprintf(a.out, "unknown command %q, type 'help'\n", cmd)
		return false, nil
	}

	if err != nil {
		a.reportEdit(err, fallback)
	}
	return false, err
}

func (a *App) reportEdit(err error, fallback string) {
	switch {
	case errors.Is(err, editor.ErrTitleRequired),
		errors.Is(err, editor.ErrTitleContentRequired),
		errors.Is(err, editor.ErrNotEditable):
		a.notifier.Error(err.Error(), err)
	default:
		a.report(err, fallback)
	}
}
