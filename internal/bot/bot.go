package bot

import (
	"github.com/novayshop/shopbot/config"
	"github.com/novayshop/shopbot/internal/service"
	"github.com/novayshop/shopbot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	service *service.Service
	logger  *utils.Logger
	states  *StateStore
	config  *config.Config
}

func NewBot(
	api *tgbotapi.BotAPI,
	svc *service.Service,
	logger *utils.Logger,
	cfg *config.Config,
) *Bot {
	return &Bot{
		api:     api,
		service: svc,
		logger:  logger,
		states:  NewStateStore(),
		config:  cfg,
	}
}

// Start consumes the long-polling update channel until Stop is called.
func (b *Bot) Start() {
	b.logger.Info("Starting bot...")
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	for update := range updates {
		b.logger.Debugf("Received update: %+v", update.UpdateID)
		if update.CallbackQuery != nil {
			b.handleCallbackQuery(update.CallbackQuery)
			continue
		}
		if update.Message != nil {
			b.HandleUpdate(update)
		}
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

func mainMenuKb() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Dépôt", "deposit"),
			tgbotapi.NewInlineKeyboardButtonData("🛒 Boutique", "shop"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📦 Achats", "orders"),
			tgbotapi.NewInlineKeyboardButtonData("💰 Solde", "balance"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛟 Support", "support"),
		),
	)
}

func backHomeKb() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", "home"),
		),
	)
}

func backToKb(target string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", target),
		),
	)
}

func (b *Bot) supportLink() string {
	if b.config.SupportURL != "" {
		return b.config.SupportURL
	}
	if b.config.SupportHandle != "" {
		return "https://t.me/" + b.config.SupportHandle
	}
	return ""
}

func (b *Bot) supportKb() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if url := b.supportLink(); url != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🎧 Contacter le support", url),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", "home"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("Failed to send message: %v", err)
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Errorf("Failed to edit message: %v", err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) alertCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		b.logger.Errorf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return userID == b.config.AdminChatID
}
