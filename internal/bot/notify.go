package bot

import (
	"github.com/novayshop/shopbot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier implements service.Notifier over the bot API. Operator
// notices go to the admin channel when one is configured, otherwise to the
// admin's DM. Failures are logged and swallowed.
type TelegramNotifier struct {
	api            *tgbotapi.BotAPI
	logger         *utils.Logger
	adminChatID    int64
	adminChannelID int64
}

func NewTelegramNotifier(api *tgbotapi.BotAPI, logger *utils.Logger, adminChatID, adminChannelID int64) *TelegramNotifier {
	return &TelegramNotifier{
		api:            api,
		logger:         logger,
		adminChatID:    adminChatID,
		adminChannelID: adminChannelID,
	}
}

func (n *TelegramNotifier) NotifyOperator(text string) {
	target := n.adminChannelID
	if target == 0 {
		target = n.adminChatID
	}
	n.send(target, text)
}

func (n *TelegramNotifier) NotifyUser(telegramID int64, text string) {
	n.send(telegramID, text)
}

func (n *TelegramNotifier) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Errorf("Failed to notify chat %d: %v", chatID, err)
	}
}
