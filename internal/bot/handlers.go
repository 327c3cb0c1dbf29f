package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/models"
	"github.com/novayshop/shopbot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = "⚡️ *NOVAYSHOP* ⚡️\n" +
	"*le bot préféré de ton calleur préféré*\n\n" +
	"Bienvenue sur l’interface la plus clean du game.\n" +
	"Ici tu peux :\n" +
	"💳 Créditer ton solde (Crypto)\n" +
	"🛒 Acheter Formations / Fiches / CC\n" +
	"🎧 Avoir le support direct\n" +
	"💰 Gérer ton solde instantanément\n\n" +
	"Sélectionne une action ci-dessous ↓"

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	b.withUserCheck(func(ctx context.Context, update tgbotapi.Update, user *models.User) {
		text := strings.TrimSpace(update.Message.Text)
		chatID := update.Message.Chat.ID
		userID := user.TelegramID

		b.logger.Infof("Processing message from user %d", userID)

		// Commands interrupt whatever flow is active; only plain text is
		// fed to the step that awaits it.
		if strings.HasPrefix(text, "/") {
			b.states.Clear(userID)
		} else {
			switch b.states.Step(userID) {
			case stepDepositAmount:
				b.handleDepositAmount(ctx, chatID, userID, text)
				return
			case stepCustomAmount:
				b.handleCustomSpendAmount(ctx, chatID, user, text)
				return
			case stepAdjustTarget:
				b.handleAdjustTarget(chatID, userID, text)
				return
			case stepAdjustDelta:
				b.handleAdjustDelta(ctx, chatID, userID, text)
				return
			}
		}

		switch text {
		case "/start":
			b.sendMessage(chatID, welcomeText, mainMenuKb())
		case "/admin":
			b.handleAdminPanel(chatID, userID)
		default:
			b.sendMessage(chatID, "Choisis une action :", mainMenuKb())
		}
	})(update)
}

func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	ctx := context.Background()
	data := callback.Data
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	b.logger.Debugf("Callback %q from user %d", data, userID)

	switch {
	case data == "home":
		b.states.Clear(userID)
		b.editMessage(chatID, messageID, "Choisis une action :", mainMenuKb())
		b.answerCallback(callback.ID, "")
	case data == "balance":
		b.showBalance(ctx, callback)
	case data == "deposit":
		b.states.Begin(userID, stepDepositAmount)
		b.editMessage(chatID, messageID, fmt.Sprintf(
			"⚡ *Dépôt*\nMin: *%d€* — entre le *montant EUR* à créditer.",
			b.config.MinDepositEUR,
		), backHomeKb())
		b.answerCallback(callback.ID, "")
	case data == "shop":
		b.showShop(ctx, callback)
	case data == "orders":
		b.showOrders(ctx, callback)
	case data == "support":
		b.showSupport(callback)
	case data == "cat:cc":
		b.showCardTiers(callback)
	case data == "cat:fiches":
		b.showBanks(callback)
	case strings.HasPrefix(data, "cclevel:"):
		b.handleCardTierChoice(callback)
	case strings.HasPrefix(data, "bank:"):
		b.handleBankChoice(callback)
	case strings.HasPrefix(data, "buy:"):
		b.showProduct(ctx, callback)
	case strings.HasPrefix(data, "pay:"):
		b.handlePay(ctx, callback)
	case strings.HasPrefix(data, "admin:"):
		b.handleAdminCallback(ctx, callback)
	default:
		b.answerCallback(callback.ID, "")
	}
}

func (b *Bot) showBalance(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	balance, err := b.service.GetBalance(ctx, callback.From.ID)
	if err != nil {
		b.logger.Errorf("Failed to get balance for user %d: %v", callback.From.ID, err)
		b.alertCallback(callback.ID, "Une erreur est survenue. Réessaie plus tard.")
		return
	}
	b.editMessage(
		callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("💰 Solde: *%s*", utils.EuroFmt(balance)),
		mainMenuKb(),
	)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) showSupport(callback *tgbotapi.CallbackQuery) {
	text := "Support disponible ci-dessous."
	if b.supportLink() == "" {
		text = "Support indisponible pour le moment."
	}
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, text, b.supportKb())
	b.answerCallback(callback.ID, "")
}

func (b *Bot) showOrders(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	purchases, err := b.service.ListPurchases(ctx, callback.From.ID, 10)
	if err != nil {
		b.logger.Errorf("Failed to list purchases for user %d: %v", callback.From.ID, err)
		b.alertCallback(callback.ID, "Une erreur est survenue. Réessaie plus tard.")
		return
	}
	if len(purchases) == 0 {
		b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, "Aucun achat.", backHomeKb())
		b.answerCallback(callback.ID, "")
		return
	}

	lines := make([]string, 0, len(purchases))
	for _, p := range purchases {
		lines = append(lines, fmt.Sprintf(
			"• %s — %s — %s",
			p.Product.Title, utils.EuroFmt(p.PaidEURCents), p.CreatedAt.Format("2006-01-02 15:04"),
		))
	}
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, strings.Join(lines, "\n"), backHomeKb())
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handleDepositAmount(ctx context.Context, chatID, userID int64, text string) {
	cents, err := utils.ParseAmountCents(text)
	if err != nil {
		b.sendMessage(chatID, "Montant EUR ? ex: 250", nil)
		return
	}

	invoiceURL, err := b.service.OpenDeposit(ctx, userID, cents)
	switch {
	case errors.Is(err, apperrors.ErrBelowMinimum) || errors.Is(err, apperrors.ErrAmountNotPositive):
		b.sendMessage(chatID, fmt.Sprintf("Min %d€.", b.config.MinDepositEUR), nil)
		return
	case errors.Is(err, apperrors.ErrInvoiceCreation):
		b.states.Clear(userID)
		b.sendMessage(chatID, "Désolé, création de la facture impossible pour le moment. Réessaie plus tard.", mainMenuKb())
		return
	case err != nil:
		b.logger.Errorf("Failed to open deposit for user %d: %v", userID, err)
		b.states.Clear(userID)
		b.sendMessage(chatID, "Une erreur est survenue. Réessaie plus tard.", mainMenuKb())
		return
	}

	b.states.Clear(userID)
	b.sendMessage(chatID, fmt.Sprintf(
		"✅ *Facture générée*\nPaye en BTC via ce lien sécurisé :\n%s\n\n"+
			"_Le solde sera crédité automatiquement après confirmation._",
		invoiceURL,
	), mainMenuKb())
}
