package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var digitsOnly = regexp.MustCompile(`\D`)

func (b *Bot) handleAdminPanel(chatID, userID int64) {
	if !b.isAdmin(userID) {
		b.sendMessage(chatID, "Accès refusé.", nil)
		return
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Dépôts en attente", "admin:pending"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Ajuster solde", "admin:adjust"),
		),
	)
	b.sendMessage(chatID, "⚡ *Admin*", kb)
}

func (b *Bot) handleAdminCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if !b.isAdmin(callback.From.ID) {
		b.answerCallback(callback.ID, "Non.")
		return
	}

	switch callback.Data {
	case "admin:pending":
		b.showPendingDeposits(ctx, callback)
	case "admin:adjust":
		b.states.Begin(callback.From.ID, stepAdjustTarget)
		b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, "ID utilisateur ?", backHomeKb())
		b.answerCallback(callback.ID, "")
	default:
		b.answerCallback(callback.ID, "")
	}
}

func (b *Bot) showPendingDeposits(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	deposits, err := b.service.ListPendingDeposits(ctx, callback.From.ID, 15)
	if errors.Is(err, apperrors.ErrUnauthorized) {
		b.answerCallback(callback.ID, "Non.")
		return
	}
	if err != nil {
		b.logger.Errorf("Failed to list pending deposits: %v", err)
		b.alertCallback(callback.ID, "Une erreur est survenue. Réessaie plus tard.")
		return
	}
	if len(deposits) == 0 {
		b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, "Aucun dépôt en attente.", backHomeKb())
		b.answerCallback(callback.ID, "")
		return
	}

	lines := []string{"Dépôts en attente:"}
	for _, d := range deposits {
		lines = append(lines, fmt.Sprintf(
			"• %d | %s | ref:%s | %s | %s",
			d.UserID, utils.EuroFmt(d.AmountEURCents), d.Ref, d.CreatedAt.Format("2006-01-02 15:04"), d.Status,
		))
	}
	b.editMessage(callback.Message.Chat.ID, callback.Message.MessageID, strings.Join(lines, "\n"), backHomeKb())
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handleAdjustTarget(chatID, adminID int64, text string) {
	if !b.isAdmin(adminID) {
		return
	}

	digits := digitsOnly.ReplaceAllString(text, "")
	if digits == "" {
		b.sendMessage(chatID, "ID invalide", nil)
		return
	}
	if _, err := strconv.ParseInt(digits, 10, 64); err != nil {
		b.sendMessage(chatID, "ID invalide", nil)
		return
	}

	b.states.Put(adminID, "target", digits)
	b.states.Advance(adminID, stepAdjustDelta)
	b.sendMessage(chatID, "Montant en EUR (ex: +50 ou -10) ?", nil)
}

func (b *Bot) handleAdjustDelta(ctx context.Context, chatID, adminID int64, text string) {
	if !b.isAdmin(adminID) {
		return
	}

	deltaCents, err := utils.ParseSignedAmountCents(text)
	if err != nil {
		b.sendMessage(chatID, "Montant invalide", nil)
		return
	}

	targetID, err := strconv.ParseInt(b.states.Get(adminID, "target"), 10, 64)
	if err != nil {
		b.logger.Errorf("Lost adjust target for admin %d: %v", adminID, err)
		b.states.Clear(adminID)
		b.sendMessage(chatID, "Une erreur est survenue. Réessaie plus tard.", nil)
		return
	}

	err = b.service.AdjustBalance(ctx, adminID, targetID, deltaCents)
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		b.states.Clear(adminID)
		b.sendMessage(chatID, "Accès refusé.", nil)
		return
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		b.states.Clear(adminID)
		b.sendMessage(chatID, "Solde insuffisant pour ce retrait, ajustement refusé.", nil)
		return
	case errors.Is(err, apperrors.ErrAmountNotPositive):
		b.sendMessage(chatID, "Montant invalide", nil)
		return
	case err != nil:
		b.logger.Errorf("Failed to adjust balance of user %d: %v", targetID, err)
		b.states.Clear(adminID)
		b.sendMessage(chatID, "Une erreur est survenue. Réessaie plus tard.", nil)
		return
	}

	b.states.Clear(adminID)
	b.sendMessage(chatID, "Solde ajusté.", nil)
}
