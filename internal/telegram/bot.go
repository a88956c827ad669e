package telegram

import (
	"fmt"
	"strings"

	"go-jss-crawler/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

var markdownReplacer = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownReplacer.Replace(text)
}

// FormatListing renders a listing as a MarkdownV2 message.
func FormatListing(l scraper.Listing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏢 *%s*\n", escapeMarkdown(l.CompanyName))
	fmt.Fprintf(&sb, "📌 %s\n", escapeMarkdown(l.PostingTitle))

	period := escapeMarkdown(l.StartDate)
	if l.EndDate != nil {
		period += " ~ " + escapeMarkdown(*l.EndDate)
	}
	fmt.Fprintf(&sb, "📅 %s\n", period)

	for _, j := range l.Jobs {
		title := scraper.Deref(j.Title)
		if title == "" {
			title = "N/A"
		}
		line := "💼 " + escapeMarkdown(title)
		if j.PostingType != nil {
			line += " \\(" + escapeMarkdown(*j.PostingType) + "\\)"
		}
		if n := len(j.EssayQuestions); n > 0 {
			line += fmt.Sprintf(" 📝 %d", n)
		}
		sb.WriteString(line + "\n")
	}

	if id := scraper.Deref(l.ExternalID); id != "" {
		fmt.Fprintf(&sb, "🔖 %s\n", escapeMarkdown(id))
	}
	return sb.String()
}

func (b *Bot) SendListing(l scraper.Listing) error {
	buttons := []tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardButtonURL("🔗 자소설", l.Link)}
	if apply := scraper.Deref(l.ApplyLink); apply != "" {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL("✍️ 지원하기", apply))
	}

	msg := tgbotapi.NewMessage(b.chatID, FormatListing(l))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(buttons...))
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send listing %s: %w", l.CompanyName, err)
	}
	return nil
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}
