package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpCallbackData = "help"

func (b *Bot) handleCallbackQuery(_ context.Context, callback *tgbotapi.CallbackQuery) error {
	chatID := callbackChatID(callback)

	switch strings.TrimSpace(callback.Data) {
	case helpCallbackData:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return b.handleHelpCommand(chatID)
		})
	default:
		return b.withEmptyCallbackAnswer(callback, func() error {
			return nil
		})
	}
}

func (b *Bot) withEmptyCallbackAnswer(callback *tgbotapi.CallbackQuery, fn func() error) error {
	var errs []error

	if err := fn(); err != nil {
		errs = append(errs, err)
	}

	if _, err := b.sender.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		errs = append(errs, fmt.Errorf("answer callback query: %w", err))
	}

	return errors.Join(errs...)
}
