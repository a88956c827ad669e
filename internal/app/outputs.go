package app

import (
	"context"
	"fmt"

	"go-jss-crawler/internal/config"
	"go-jss-crawler/internal/database"
	"go-jss-crawler/internal/logger"
	"go-jss-crawler/internal/reporter"
	"go-jss-crawler/internal/telegram"
)

// Outputs holds the long-lived destinations of crawled listings. Database
// and Telegram are optional and only wired when configured.
type Outputs struct {
	Repo *database.Repository
	Bot  *telegram.Bot
	dir  string
}

// OpenOutputs connects whatever cfg enables.
func OpenOutputs(ctx context.Context, cfg *config.Config, log logger.Logger) (*Outputs, error) {
	out := &Outputs{dir: cfg.OutputDir}

	if cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		out.Repo = repo
		log.Info("🗄️ Database connected")
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("telegram: %w", err)
		}
		out.Bot = bot
		log.Info("🤖 Telegram Bot initialized.")
	}
	return out, nil
}

// Sink returns a fresh sink for one run over day: the JSON results file plus
// every connected destination.
func (o *Outputs) Sink(day string) reporter.Sink {
	sinks := reporter.Multi{reporter.NewJSONFile(o.dir, day)}
	if o.Repo != nil {
		sinks = append(sinks, reporter.Database(o.Repo))
	}
	if o.Bot != nil {
		sinks = append(sinks, reporter.Telegram(o.Bot))
	}
	return sinks
}

// Notifier is the Telegram bot, or nil when it is not configured.
func (o *Outputs) Notifier() Notifier {
	if o.Bot == nil {
		return nil
	}
	return o.Bot
}

func (o *Outputs) Close() {
	if o.Repo != nil {
		o.Repo.Close()
	}
}
