// Command import uploads a directory of Markdown files as posts through the blog API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/debemdeboas/blogctl/internal/api"
	"github.com/debemdeboas/blogctl/internal/config"
	"github.com/debemdeboas/blogctl/internal/db"
	"github.com/debemdeboas/blogctl/internal/logger"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/render"
	"github.com/debemdeboas/blogctl/internal/session"
	"github.com/debemdeboas/blogctl/internal/store"
	"github.com/debemdeboas/blogctl/internal/util"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var importLogger zerolog.Logger

type Blogs interface {
	SaveDraft(ctx context.Context, req api.UpsertRequest) (*api.UpsertResult, error)
	Publish(ctx context.Context, req api.UpsertRequest) (*api.UpsertResult, error)
}

type importer struct {
	blogs   Blogs
	limiter *rate.Limiter
	// publish sends files whose front matter does not mark them as drafts straight to publish.
	publish bool
}

func main() {
	path := flag.String("path", "", "Path to the directory containing .md files")
	publish := flag.Bool("publish", false, "Publish files not marked draft = true")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "The --path flag is required")
		os.Exit(2)
	}

	_ = godotenv.Load()
	configPath := os.Getenv(config.EnvConfigPath)
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	if err := config.LoadConfig(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.AppConfig

	importLogger = logger.New(cfg.Logging.Level)
	db.SetLogger(importLogger)
	store.SetLogger(importLogger)
	session.SetLogger(importLogger)
	api.SetLogger(importLogger)
	render.SetLogger(importLogger)

	database := db.NewSQLite(cfg.Store.Path)
	if err := database.InitDB(); err != nil {
		importLogger.Fatal().Err(err).Msg("Error opening local store")
	}
	defer database.Close()

	kv, err := store.NewSQLiteStore(database)
	if err != nil {
		importLogger.Fatal().Err(err).Msg("Error loading local store")
	}
	sess := session.New(kv)
	if !sess.HasToken() {
		importLogger.Fatal().Msg(config.MsgLoginRequired)
	}

	client := api.NewClient(cfg.API.BaseURL, nil, sess,
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithTimeout(cfg.APITimeout()),
		api.WithUnauthorizedHandler(func() {
			if err := sess.Expire(); err != nil {
				importLogger.Error().Err(err).Msg("Failed to clear expired session")
			}
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	imp := &importer{
		blogs:   client,
		limiter: rate.NewLimiter(rate.Limit(cfg.Import.RequestsPerSecond), cfg.Import.Burst),
		publish: *publish,
	}
	ok, failed := imp.importDir(ctx, *path)
	importLogger.Info().Int("imported", ok).Int("failed", failed).Msg("Import finished")
	if failed > 0 {
		os.Exit(1)
	}
}

// importDir imports every .md file in dir and returns how many succeeded and failed.
func (imp *importer) importDir(ctx context.Context, dir string) (int, int) {
	files, err := os.ReadDir(dir)
	if err != nil {
		importLogger.Error().Err(err).Str("path", dir).Msg("Error reading directory")
		return 0, 1
	}

	ok, failed := 0, 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".md") {
			continue
		}
		id, err := imp.importFile(ctx, filepath.Join(dir, file.Name()))
		if errors.Is(err, context.Canceled) {
			break
		}
		if err != nil {
			importLogger.Error().Err(err).Str("file", file.Name()).Msg(api.Message(err, "Error importing file"))
			failed++
			if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrAuthRequired) {
				break
			}
			continue
		}
		importLogger.Info().Str("file", file.Name()).Str("post_id", string(id)).Msg("Imported post")
		ok++
	}
	return ok, failed
}

// importFile uploads one file. Files with a %%% title block are rendered as Mmark,
// everything else as plain Markdown titled after the file name.
func (imp *importer) importFile(ctx context.Context, path string) (model.PostID, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	fields, status, err := imp.prepare(filepath.Base(path), content)
	if err != nil {
		return "", err
	}

	if err := imp.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req := api.NewUpsert("", fields, status)
	var res *api.UpsertResult
	if status == model.StatusPublished {
		res, err = imp.blogs.Publish(ctx, req)
	} else {
		res, err = imp.blogs.SaveDraft(ctx, req)
	}
	if err != nil {
		return "", err
	}
	return res.ID, nil
}

func (imp *importer) prepare(name string, content []byte) (model.Fields, model.Status, error) {
	title := strings.TrimSuffix(name, ".md")
	status := model.StatusDraft

	fm, _, err := util.SplitFrontMatter(content)
	switch {
	case errors.Is(err, util.ErrNoFrontMatter):
		return model.Fields{Title: title, Content: string(render.MarkdownToHTML(content))}, status, nil
	case err != nil:
		return model.Fields{}, "", err
	}

	markup, info := render.MmarkToHTML(content)
	if fm.Title != "" {
		title = fm.Title
	} else if info.Title != "" && info.Title != "Untitled" {
		title = info.Title
	}
	if imp.publish && (fm.Draft == nil || !*fm.Draft) {
		status = model.StatusPublished
	}

	fields := model.Fields{Title: title, Content: string(markup), Tags: fm.TagString()}
	if status == model.StatusPublished && !fields.Publishable() {
		status = model.StatusDraft
	}
	return fields, status, nil
}
