package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spysage/monitor-cli/internal/config"
	"github.com/spysage/monitor-cli/internal/digest"
	"github.com/spysage/monitor-cli/internal/enrich"
	"github.com/spysage/monitor-cli/internal/notify"
	"github.com/spysage/monitor-cli/internal/runner"
	"github.com/spysage/monitor-cli/internal/screenshot"
	"github.com/spysage/monitor-cli/internal/scrape"
	"github.com/spysage/monitor-cli/internal/store"
	"github.com/spysage/monitor-cli/pkg/anthropic"
	"github.com/spysage/monitor-cli/pkg/notion"
	"github.com/spysage/monitor-cli/pkg/openrouter"
	"github.com/spysage/monitor-cli/pkg/slack"
	"github.com/spysage/monitor-cli/pkg/twitter"
)

// env wires the configured store, pipeline, and notification channels
// for a command invocation.
type env struct {
	store    store.Store
	runner   *runner.Runner
	capturer screenshot.Capturer
	digest   *digest.Sender
	admin    *digest.AdminNotifier
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// resolveKey layers a per-invocation override over the configured
// system value and logs which one is in use, so "your key" and "the
// shared fallback" are distinguishable in the logs.
func resolveKey(name, override, system string) string {
	k := config.ResolveKey(override, system)
	if !k.IsSet() {
		zap.L().Debug("credential not configured", zap.String("credential", name))
		return ""
	}
	zap.L().Debug("credential resolved",
		zap.String("credential", name),
		zap.String("source", k.Source.String()))
	return k.Value
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	e := &env{store: st}

	var capturer screenshot.Capturer
	if cfg.Screenshot.Enabled {
		rc := screenshot.NewRodCapturer(cfg.Screenshot.Dir)
		e.capturer = rc
		capturer = rc
	}

	anthropicKey := resolveKey("anthropic", anthropicKeyFlag, cfg.Anthropic.Key)
	openrouterKey := resolveKey("openrouter", openrouterKeyFlag, cfg.OpenRouter.Key)
	notionToken := resolveKey("notion", notionTokenFlag, cfg.Notion.Token)
	slackToken := resolveKey("slack", slackTokenFlag, cfg.Slack.BotToken)
	twitterToken := resolveKey("twitter", twitterTokenFlag, cfg.Twitter.BearerToken)

	summarizer := enrich.NewAnthropicSummarizer(anthropic.NewClient(anthropicKey), cfg.Anthropic.Model)
	categorizer := enrich.NewOpenRouterCategorizer(openrouter.NewClient(openrouterKey,
		openrouter.WithBaseURL(cfg.OpenRouter.BaseURL),
		openrouter.WithModel(cfg.OpenRouter.Model)))
	enricher := enrich.NewPipeline(summarizer, categorizer)

	var notifiers []notify.Notifier
	if notionToken != "" && cfg.Notion.DatabaseID != "" {
		notifiers = append(notifiers, notify.NewNotionNotifier(notion.NewClient(notionToken), cfg.Notion.DatabaseID))
	}
	if slackToken != "" && cfg.Slack.ChannelID != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(slack.NewClient(slackToken), cfg.Slack.ChannelID))
	}
	if len(notifiers) == 0 {
		zap.L().Warn("no notification channels configured")
	}

	var mentions runner.MentionCounter
	if twitterToken != "" {
		mentions = twitter.NewClient(twitterToken)
	}

	e.runner = runner.New(st, scrape.NewFetcher(), capturer, enricher, notify.NewDispatcher(notifiers...), mentions)

	if cfg.Email.SMTPHost != "" {
		mailer, err := digest.NewSMTPMailer(digest.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
		if err != nil {
			e.Close()
			return nil, err
		}
		e.digest = digest.NewSender(st, mailer, cfg.Email.DigestTo)
		e.admin = digest.NewAdminNotifier(mailer, cfg.Email.AdminEmail)
	}

	return e, nil
}

func (e *env) Close() {
	if e.capturer != nil {
		if err := e.capturer.Close(); err != nil {
			zap.L().Warn("closing browser", zap.Error(err))
		}
	}
	if err := e.store.Close(); err != nil {
		zap.L().Warn("closing store", zap.Error(err))
	}
}
