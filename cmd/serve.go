package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Abduluthman/quail/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the blog over HTTP",
	Long: `The serve command renders every page on request straight from the posts
directory, so edits to posts show up on the next reload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func runServer(ctx context.Context) error {
	tpl, err := newTemplates(appConfig)
	if err != nil {
		return err
	}
	site := web.NewSite(newRepository(appConfig), siteData)

	srv := &http.Server{
		Addr:         appConfig.Addr,
		Handler:      web.NewServer(site, tpl, appConfig.StaticDir).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving blog", "addr", appConfig.Addr, "posts", appConfig.PostsDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func init() {
	serveCmd.Flags().String("addr", "", "address to listen on (default from config, :5000)")
	serveCmd.Flags().String("posts-dir", "", "directory containing the posts")
	rootCmd.AddCommand(serveCmd)
}
