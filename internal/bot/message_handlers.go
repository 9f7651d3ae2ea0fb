package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tldrgram/internal/markdown"
	"tldrgram/internal/pipeline"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once, safe for concurrent use.
var urlRe = xurls.Strict()

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		return b.handleStartCommand(message.Chat.ID)
	case strings.HasPrefix(text, "/help"):
		return b.handleHelpCommand(message.Chat.ID)
	}

	// Outside private chats only messages with a link are for the bot.
	rawURL, found := pickURL(text)
	if !found && !message.Chat.IsPrivate() {
		b.log.DebugContext(ctx, "Ignoring group message without URL",
			"chatID", message.Chat.ID,
			"chatType", message.Chat.Type,
			"messageID", message.MessageID)

		return nil
	}

	return b.withSpinner(ctx, message.Chat.ID, func() error {
		return b.handleURL(ctx, rawURL, message)
	})
}

// handleURL summarizes rawURL. In private chats text without a URL gets here
// as is so the user sees the invalid URL reply.
func (b *Bot) handleURL(ctx context.Context, rawURL string, message *tgbotapi.Message) error {
	summary, err := b.runner.Run(ctx, rawURL)
	if err != nil {
		var errs []error

		var pipelineErr *pipeline.Error
		if !errors.As(err, &pipelineErr) || pipelineErr.Kind != pipeline.KindInvalidURL {
			errs = append(errs, fmt.Errorf("run pipeline: %w", err))
		}

		reply := "❌ " + markdown.EscapeV2(pipeline.UserMessage(err))
		if sendErr := b.sendReply(message.Chat.ID, message.MessageID, reply); sendErr != nil {
			errs = append(errs, fmt.Errorf("send reply: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	reply := "📝 *Summary*\n\n" + markdown.EscapeV2(string(summary))
	if err = b.sendReply(message.Chat.ID, message.MessageID, reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	return nil
}

// pickURL returns the first URL in text, or text itself when there is none.
func pickURL(text string) (string, bool) {
	if u := urlRe.FindString(text); u != "" {
		return u, true
	}

	return text, false
}
