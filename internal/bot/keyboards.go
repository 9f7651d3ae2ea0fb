package bot

import (
	"fmt"
	"strings"
	"tldrgram/internal/markdown"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) sendMessage(chatID int64, text string) error {
	return b.sendMessageWithKeyboard(chatID, text, nil)
}

func (b *Bot) sendMessageWithKeyboard(
	chatID int64,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	message := b.newMessage(chatID, text)
	if len(keyboard) > 0 {
		message.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	}

	_, err := b.sender.Send(message)
	return err
}

// sendReply answers a message, splitting text that does not fit into one message.
func (b *Bot) sendReply(chatID int64, replyTo int, text string) error {
	for i, chunk := range markdown.Split(text, markdown.MaxMessageLength) {
		message := b.newMessage(chatID, chunk)
		if i == 0 {
			message.ReplyToMessageID = replyTo
		}

		if _, err := b.sender.Send(message); err != nil {
			return fmt.Errorf("send chunk %d: %w", i, err)
		}
	}

	return nil
}

func (b *Bot) newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.Warn("Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	message := tgbotapi.NewMessage(chatID, normalizedText)

	// See https://core.telegram.org/bots/api#markdownv2-style.
	message.ParseMode = tgbotapi.ModeMarkdownV2

	message.DisableWebPagePreview = true

	return message
}

func getHelpKeyboard() [][]tgbotapi.InlineKeyboardButton {
	return [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("❓ Help", helpCallbackData)},
	}
}
