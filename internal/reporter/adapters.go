package reporter

import (
	"context"

	"go-jss-crawler/internal/database"
	"go-jss-crawler/internal/scraper"
	"go-jss-crawler/internal/telegram"
)

// Telegram sends every listing as a chat message.
func Telegram(bot *telegram.Bot) Sink {
	return SinkFunc(func(_ context.Context, l scraper.Listing) error {
		return bot.SendListing(l)
	})
}

// Database stores every listing.
func Database(repo *database.Repository) Sink {
	return SinkFunc(func(ctx context.Context, l scraper.Listing) error {
		_, err := repo.SaveListing(ctx, l)
		return err
	})
}
