package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aiwriter/internal/lifecycle"
	"aiwriter/internal/server"
	"aiwriter/internal/services"
	"aiwriter/internal/tui"
)

type writeOptions struct {
	issueID    uint
	login      string
	serverURL  string
	userID     uint
	accessible bool
	plain      bool
}

func writeCmd(g *globals) *cobra.Command {
	opts := writeOptions{}
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Generate, review and apply a draft for an issue in the terminal",
		Long: `Write opens the AI writer for one issue.

Without --server the draft is generated against the local database as the
user named by --user. With --server the terminal talks to a running
"aiwriter serve" as the user with id --user-id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.issueID == 0 {
				return errors.New("--issue is required")
			}
			if opts.serverURL != "" {
				return runRemoteWrite(cmd, g, opts)
			}
			return g.withApp(cmd, func(ctx context.Context, app *App) error {
				return runLocalWrite(ctx, cmd, app, opts)
			})
		},
	}
	cmd.Flags().UintVar(&opts.issueID, "issue", 0, "issue id")
	cmd.Flags().StringVar(&opts.login, "user", "", "login of the acting user (local mode)")
	cmd.Flags().StringVar(&opts.serverURL, "server", "", "base URL of a running aiwriter server")
	cmd.Flags().UintVar(&opts.userID, "user-id", 0, "id of the acting user (server mode)")
	cmd.Flags().BoolVar(&opts.accessible, "accessible", false, "use plain line prompts instead of the form UI")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "disable colors and borders")
	return cmd
}

func runLocalWrite(ctx context.Context, cmd *cobra.Command, app *App, opts writeOptions) error {
	if strings.TrimSpace(opts.login) == "" {
		return errors.New("--user is required without --server")
	}
	user, err := app.Services.Users.FindByLogin(ctx, opts.login)
	if err != nil {
		return err
	}
	issue, err := app.Services.Issues.Get(ctx, opts.issueID)
	if err != nil {
		return err
	}
	ok, err := app.Services.Permissions.WriterAvailable(ctx, user, issue)
	if err != nil {
		return err
	}
	settings, err := app.Services.Settings.Get(ctx)
	if err != nil {
		return err
	}
	if !ok || settings.PromptCustomFieldID == 0 {
		return fmt.Errorf("the AI writer is not available to %s on issue #%d", user.Login, issue.ID)
	}

	cfg := server.WriterConfig(issue.ID, settings.PromptCustomFieldID, "")
	writer := services.NewLocalWriter(app.Services.Drafts, user, issue.ID)
	return runSession(ctx, cmd, app.logger, cfg, writer, writer, opts, issue.Subject, issue.CustomValue(settings.PromptCustomFieldID))
}

func runRemoteWrite(cmd *cobra.Command, g *globals, opts writeOptions) error {
	if opts.userID == 0 {
		return errors.New("--user-id is required with --server")
	}
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())
	ctx := cmd.Context()

	base := strings.TrimRight(opts.serverURL, "/")
	userID := strconv.FormatUint(uint64(opts.userID), 10)
	headers := http.Header{}
	headers.Set(server.UserHeader, userID)
	client := &http.Client{Timeout: cfg.WriteTimeout + 10*time.Second}

	writerCfg, err := lifecycle.FetchConfig(ctx, client, fmt.Sprintf("%s/issues/%d/ai_writer/config", base, opts.issueID), headers)
	if err != nil {
		return fmt.Errorf("load writer config: %w", err)
	}
	hc := lifecycle.NewHTTPClient(writerCfg, client,
		lifecycle.WithBaseURL(base),
		lifecycle.WithHeader(server.UserHeader, userID),
	)
	return runSession(ctx, cmd, logger, writerCfg, hc, hc, opts, "", "")
}

func runSession(ctx context.Context, cmd *cobra.Command, logger *slog.Logger, cfg lifecycle.Config, gw lifecycle.Gateway, store lifecycle.Store, opts writeOptions, title, prompt string) error {
	styles := tui.DefaultStyles()
	if opts.plain {
		styles = tui.PlainStyles()
	}
	page := tui.NewPage(cfg, cmd.OutOrStdout(), styles)
	page.SetInput(title, prompt)

	ctrl, err := lifecycle.New(cfg, gw, store, page, lifecycle.WithLogger(logger))
	if err != nil {
		return err
	}
	return tui.NewSession(ctrl, page, tui.NewFormPrompter(opts.accessible)).Run(ctx)
}
