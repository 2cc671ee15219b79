package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/debemdeboas/blogctl/internal/api"
	"github.com/debemdeboas/blogctl/internal/backup"
	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/util/compression"
	"github.com/debemdeboas/blogctl/internal/view"
	"golang.org/x/term"
)

func (a *App) readPassword() (string, error) {
	fmt.Fprint(a.out, a.renderer.Theme.Prompt.Render("Password: "))
	if a.password != nil {
		pw, err := a.password()
		fmt.Fprintln(a.out)
		return pw, err
	}
	if f, ok := a.rawIn.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.out)
		return string(pw), err
	}
	return a.readLine()
}

func (a *App) signup(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	res, err := a.client.Signup(ctx, args[0], args[1], password)
	if err != nil {
		a.report(err, "Signup failed")
		return err
	}
	if err := a.session.SaveSignup(res.Token); err != nil {
		return err
	}
	a.notifier.Info(config.MsgSignedUp)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}

	res, err := a.client.Login(ctx, args[0], password)
	if err != nil {
		a.report(err, "Login failed")
		return err
	}
	user := model.User{Email: args[0]}
	if res.User != nil {
		user = *res.User
	}
	if err := a.session.SaveLogin(res.Token, user); err != nil {
		return err
	}

	msg := res.Notice()
	if msg == "" {
		msg = config.MsgLoggedIn
	}
	a.notifier.Info(msg)
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	a.notifier.Info(config.MsgLoggedOut)
	return nil
}

func (a *App) whoami(ctx context.Context, args []string) error {
	if !a.session.HasToken() {
		a.notifier.Error(config.MsgLoginRequired, api.ErrAuthRequired)
		return api.ErrAuthRequired
	}

	user, err := a.session.User()
	if err != nil || user == nil {
		user, err = a.client.CurrentUser(ctx)
		if err != nil {
			a.report(err, config.HTTPErrFallback)
			return err
		}
	}

	line := a.renderer.Theme.Title.Render(user.DisplayName())
	if user.Email != "" && user.Email != user.DisplayName() {
		line += " " + a.renderer.Theme.Muted.Render("<"+user.Email+">")
	}
	fmt.Fprintln(a.out, line)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	posts := view.NewPosts(a.client, a.session, a.notifier)
	fmt.Fprintln(a.out, a.renderer.Posts(posts))
	err := posts.Load(ctx)
	if err == nil {
		fmt.Fprintln(a.out, a.renderer.Posts(posts))
	}
	return err
}

func (a *App) drafts(ctx context.Context, args []string) error {
	drafts := view.NewDrafts(a.client, a.session, a.notifier)
	if err := drafts.Load(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.renderer.Drafts(drafts))
	return nil
}

func (a *App) mine(ctx context.Context, args []string) error {
	posts, err := a.client.ListMyPosts(ctx)
	if err != nil {
		a.report(err, config.MsgLoadPostsFailed)
		return err
	}
	status := view.StatusReady
	if len(posts) == 0 {
		status = view.StatusEmpty
	}
	fmt.Fprintln(a.out, a.renderer.List(status, posts, config.MsgLoadingPosts, config.MsgNoPosts, nil))
	return nil
}

func (a *App) show(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	source := fs.Bool("source", false, "print the stored markup highlighted")
	args, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return ErrUsage
	}

	post, err := view.Show(ctx, a.client, model.PostID(args[0]), nil)
	if err != nil {
		a.report(err, config.MsgLoadPostFailed)
		return err
	}

	if *source {
		out, err := a.renderer.Source(post)
		if err != nil {
			appLogger.Warn().Err(err).Msg("Highlighting failed, printing raw markup")
		}
		fmt.Fprintln(a.out, out)
		return nil
	}
	fmt.Fprintln(a.out, a.renderer.Post(post))
	return nil
}

func (a *App) confirm(question string) bool {
	answer, err := a.prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (a *App) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip the confirmation")
	args, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return ErrUsage
	}
	if !a.session.HasToken() {
		a.notifier.Error(config.MsgLoginRequired, api.ErrAuthRequired)
		return api.ErrAuthRequired
	}
	if !*yes && !a.confirm("Are you sure you want to delete this blog?") {
		fmt.Fprintln(a.out, a.renderer.Theme.Muted.Render("Cancelled"))
		return nil
	}

	posts := view.NewPosts(a.client, a.session, a.notifier)
	if err := posts.Delete(ctx, model.PostID(args[0])); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.renderer.Posts(posts))
	return nil
}

func (a *App) publishDraft(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	drafts := view.NewDrafts(a.client, a.session, a.notifier)
	if err := drafts.Load(ctx); err != nil {
		return err
	}
	err := drafts.Publish(ctx, model.PostID(args[0]))
	if errors.Is(err, view.ErrNotListed) {
		a.notifier.Error(fmt.Sprintf("No draft with id %s", args[0]), err)
	}
	return err
}

func (a *App) backup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	force := fs.Bool("force", false, "upload even when nothing changed")
	if _, err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg := a.cfg.Backup
	if cfg.Bucket == "" {
		err := fmt.Errorf(config.ErrMissingSettingFmt, "backup.bucket")
		a.notifier.Error(err.Error(), err)
		return err
	}
	if !a.session.HasToken() {
		a.notifier.Error(config.MsgLoginRequired, api.ErrAuthRequired)
		return api.ErrAuthRequired
	}

	uploader := a.uploader
	if uploader == nil {
		client, err := backup.NewS3Client(ctx,
			os.Getenv(config.EnvS3AccessKeyID), os.Getenv(config.EnvS3SecretAccessKey),
			cfg.Region, cfg.Endpoint)
		if err != nil {
			return err
		}
		uploader = client
	}
	codec, err := compression.ByName(cfg.Compression)
	if err != nil {
		return err
	}

	b := backup.New(a.client, uploader, a.database, backup.Options{
		Bucket:     cfg.Bucket,
		Prefix:     cfg.Prefix,
		Compressor: codec,
		Force:      *force,
	})
	rec, err := b.Run(ctx)
	switch {
	case errors.Is(err, backup.ErrUnchanged):
		a.notifier.Info(fmt.Sprintf("Nothing changed since %s", rec.ObjectKey))
		return nil
	case err != nil:
		a.report(err, "Backup failed")
		return err
	}
	a.notifier.Info(fmt.Sprintf("Backed up %d posts to %s", rec.PostCount, rec.ObjectKey))
	return nil
}
