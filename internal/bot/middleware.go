package bot

import (
	"context"

	"github.com/novayshop/shopbot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// withUserCheck registers or refreshes the sender before handing the update
// to the actual handler, so every handler can assume the user row exists.
func (b *Bot) withUserCheck(handler func(context.Context, tgbotapi.Update, *models.User)) func(tgbotapi.Update) {
	return func(update tgbotapi.Update) {
		ctx := context.Background()
		from := update.Message.From

		user := &models.User{
			TelegramID: from.ID,
			FirstName:  from.FirstName,
			Username:   from.UserName,
		}
		if err := b.service.UpsertUser(ctx, user); err != nil {
			b.logger.Errorf("Failed to upsert user %d: %v", from.ID, err)
			b.sendMessage(update.Message.Chat.ID, "Une erreur est survenue. Réessaie plus tard.", nil)
			return
		}

		handler(ctx, update, user)
	}
}
