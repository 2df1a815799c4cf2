package cmd

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Abduluthman/quail/internal/config"
	"github.com/Abduluthman/quail/internal/export"
	"github.com/Abduluthman/quail/internal/model"
	"github.com/Abduluthman/quail/internal/web"
)

const debounceDuration = 500 * time.Millisecond

var watchBuild bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Exports the blog as a static site",
	Long: `The build command renders the index, every post, and every tag and category
page into the output directory (default './public/') and copies static assets.
Search needs a server and is not exported. With --watch it rebuilds whenever
posts, layouts or static files change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runBuildProcess(cmd.Context(), appConfig, siteData); err != nil {
			return err
		}
		if !watchBuild {
			return nil
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchAndRebuild(ctx, appConfig, siteData)
	},
}

func runBuildProcess(ctx context.Context, cfg config.Config, site model.SiteData) error {
	start := time.Now()
	slog.Info("starting build", "posts", cfg.PostsDir, "output", cfg.OutputDir)

	// Layouts are reparsed on every build so edits are picked up while watching.
	tpl, err := newTemplates(cfg)
	if err != nil {
		return err
	}

	exp := export.New(newRepository(cfg), site, tpl, web.StaticFS(cfg.StaticDir), cfg.OutputDir)
	stats, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("build completed",
		"posts", stats.Posts,
		"tags", stats.Tags,
		"categories", stats.Categories,
		"skipped", stats.Skipped,
		"took", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func watchAndRebuild(ctx context.Context, cfg config.Config, site model.SiteData) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range []string{cfg.PostsDir, cfg.LayoutsDir, cfg.StaticDir} {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			slog.Debug("directory not found, not watching", "dir", root)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				slog.Warn("error walking directory", "path", path, "error", err)
				return nil
			}
			if d.IsDir() {
				if err := watcher.Add(path); err != nil {
					slog.Warn("failed to watch directory", "path", path, "error", err)
				}
			}
			return nil
		})
		if err != nil {
			slog.Warn("error setting up watch", "dir", root, "error", err)
		}
	}

	slog.Info("watching for changes, press Ctrl+C to stop")

	rebuild := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("change detected", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})
		case <-rebuild:
			slog.Info("rebuilding site due to changes")
			if err := runBuildProcess(ctx, cfg, site); err != nil {
				slog.Error("rebuild failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func init() {
	buildCmd.Flags().BoolVarP(&watchBuild, "watch", "w", false, "rebuild when sources change")
	buildCmd.Flags().String("posts-dir", "", "directory containing the posts")
	buildCmd.Flags().String("output-dir", "", "directory to write the site into")
	rootCmd.AddCommand(buildCmd)
}
