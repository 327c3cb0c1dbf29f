package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/novayshop/shopbot/internal/apperrors"
	"github.com/novayshop/shopbot/internal/models"
	"github.com/novayshop/shopbot/internal/service"
	"github.com/novayshop/shopbot/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const productsDir = "storage/products"

var cardTiers = []string{"Classic", "Gold", "Platinum", "Premier", "Infinite"}

var frenchBanks = []struct {
	Name string
	Code string
}{
	{"BNP Paribas", "bnp"},
	{"Crédit Agricole", "ca"},
	{"Société Générale", "sg"},
	{"LCL", "lcl"},
	{"Crédit Mutuel", "cm"},
	{"CIC", "cic"},
	{"Banque Populaire", "bp"},
	{"Caisse d'Épargne", "cde"},
	{"La Banque Postale", "lbp"},
	{"Boursorama", "brs"},
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func bankName(code string) string {
	for _, bank := range frenchBanks {
		if bank.Code == code {
			return bank.Name
		}
	}
	return strings.ToUpper(code)
}

func (b *Bot) showShop(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	products, err := b.service.ListProducts(ctx)
	if err != nil {
		b.logger.Errorf("Failed to list products: %v", err)
		b.alertCallback(callback.ID, "Une erreur est survenue. Réessaie plus tard.")
		return
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData("📚 Fiches — Catégorie", "cat:fiches")},
		{tgbotapi.NewInlineKeyboardButtonData("💳 CC — Catégorie", "cat:cc")},
	}
	for _, p := range products {
		if p.IsCustomPlaceholder() {
			continue
		}
		icon := "🧩"
		if strings.Contains(strings.ToUpper(p.Title), "FORMA") {
			icon = "📘"
		}
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s — %s", icon, p.Title, utils.EuroFmt(p.PriceEURCents)),
				fmt.Sprintf("buy:%d", p.ID),
			),
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", "home"),
	})

	b.editMessage(
		callback.Message.Chat.ID, callback.Message.MessageID,
		"*Boutique* — sélectionne une option :",
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) showCardTiers(callback *tgbotapi.CallbackQuery) {
	var buttons []tgbotapi.InlineKeyboardButton
	for _, tier := range cardTiers {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
			"💳 "+tier, "cclevel:"+strings.ToLower(tier),
		))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(buttons); i += 2 {
		end := i + 2
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", "shop"),
	})

	b.editMessage(
		callback.Message.Chat.ID, callback.Message.MessageID,
		"💳 *CC* — choisis un *niveau* :",
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handleCardTierChoice(callback *tgbotapi.CallbackQuery) {
	tier := strings.TrimPrefix(callback.Data, "cclevel:")
	userID := callback.From.ID

	b.states.Begin(userID, stepCustomAmount)
	b.states.Put(userID, "category", "CC")
	b.states.Put(userID, "tier", tier)

	b.editMessage(
		callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("💳 *CC* — niveau *%s* sélectionné.\n💶 Entre combien d’€ tu veux dépenser.", capitalize(tier)),
		backToKb("cat:cc"),
	)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) showBanks(callback *tgbotapi.CallbackQuery) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, bank := range frenchBanks {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📚 "+bank.Name, "bank:"+bank.Code),
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", "shop"),
	})

	b.editMessage(
		callback.Message.Chat.ID, callback.Message.MessageID,
		"📚 *Fiches* — choisis une *banque française* :",
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handleBankChoice(callback *tgbotapi.CallbackQuery) {
	name := bankName(strings.TrimPrefix(callback.Data, "bank:"))
	userID := callback.From.ID

	b.states.Begin(userID, stepCustomAmount)
	b.states.Put(userID, "category", "FICHES")
	b.states.Put(userID, "bank", name)

	b.editMessage(
		callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf("📚 *Fiches* — *%s* sélectionnée.\n💶 Entre combien d’€ tu veux dépenser.", name),
		backToKb("cat:fiches"),
	)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handleCustomSpendAmount(ctx context.Context, chatID int64, user *models.User, text string) {
	userID := user.TelegramID

	cents, err := utils.ParseAmountCents(text)
	if err != nil {
		b.sendMessage(chatID, "Montant EUR ? ex: 50", nil)
		return
	}

	req := service.CustomSpendRequest{
		TelegramID:  userID,
		Username:    user.Username,
		Category:    b.states.Get(userID, "category"),
		Bank:        b.states.Get(userID, "bank"),
		Tier:        b.states.Get(userID, "tier"),
		AmountCents: cents,
	}

	err = b.service.CustomSpend(ctx, req)
	switch {
	case errors.Is(err, apperrors.ErrBelowMinimum) || errors.Is(err, apperrors.ErrAmountNotPositive):
		b.sendMessage(chatID, fmt.Sprintf("Min %d€.", b.config.CustomMinEUR), nil)
		return
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		balance, balErr := b.service.GetBalance(ctx, userID)
		if balErr != nil {
			b.logger.Errorf("Failed to get balance for user %d: %v", userID, balErr)
		}
		b.sendMessage(chatID, fmt.Sprintf("Solde insuffisant (solde actuel %s). Fais un dépôt.", utils.EuroFmt(balance)), nil)
		return
	case err != nil:
		b.logger.Errorf("Custom spend failed for user %d: %v", userID, err)
		b.states.Clear(userID)
		b.sendMessage(chatID, "Une erreur est survenue. Réessaie plus tard.", mainMenuKb())
		return
	}

	b.states.Clear(userID)

	var markup interface{}
	if url := b.supportLink(); url != "" {
		markup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🎧 Ouvrir le support", url),
		))
	}
	b.sendMessage(chatID, fmt.Sprintf(
		"✅ %s crédité(s) pour *%s*.\nPasse en privé avec le *support* pour préciser exactement ce que tu veux.",
		req.Category, utils.EuroFmt(cents),
	), markup)
}

func (b *Bot) showProduct(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	productID, err := strconv.ParseUint(strings.TrimPrefix(callback.Data, "buy:"), 10, 32)
	if err != nil {
		b.alertCallback(callback.ID, "Produit introuvable")
		return
	}

	product, err := b.service.GetProduct(ctx, uint(productID))
	if err != nil || product == nil {
		b.alertCallback(callback.ID, "Produit introuvable")
		return
	}

	balance, err := b.service.GetBalance(ctx, callback.From.ID)
	if err != nil {
		b.logger.Errorf("Failed to get balance for user %d: %v", callback.From.ID, err)
		b.alertCallback(callback.ID, "Une erreur est survenue. Réessaie plus tard.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	verdict := "Solde insuffisant."
	if balance >= product.PriceEURCents {
		verdict = "OK pour payer."
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Payer", fmt.Sprintf("pay:%d", product.ID)),
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Retour", "shop"),
	})

	b.editMessage(
		callback.Message.Chat.ID, callback.Message.MessageID,
		fmt.Sprintf(
			"*%s*\nPrix: %s\nSolde: %s\n%s",
			product.Title, utils.EuroFmt(product.PriceEURCents), utils.EuroFmt(balance), verdict,
		),
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	b.answerCallback(callback.ID, "")
}

func (b *Bot) handlePay(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	productID, err := strconv.ParseUint(strings.TrimPrefix(callback.Data, "pay:"), 10, 32)
	if err != nil {
		b.alertCallback(callback.ID, "Produit introuvable")
		return
	}

	product, err := b.service.BuyProduct(ctx, callback.From.ID, uint(productID))
	switch {
	case errors.Is(err, apperrors.ErrProductNotFound):
		b.alertCallback(callback.ID, "Produit introuvable")
		return
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		b.alertCallback(callback.ID, "Solde insuffisant")
		return
	case err != nil:
		b.logger.Errorf("Purchase failed for user %d: %v", callback.From.ID, err)
		b.alertCallback(callback.ID, "Une erreur est survenue. Réessaie plus tard.")
		return
	}

	b.deliverProduct(callback.From.ID, product)

	b.editMessage(
		callback.Message.Chat.ID, callback.Message.MessageID,
		"✅ Achat confirmé. Regarde tes messages.",
		mainMenuKb(),
	)
	b.answerCallback(callback.ID, "")
}

// deliverProduct sends the bought item: the attached file when there is one,
// the delivery text otherwise. Formations additionally point to the support.
func (b *Bot) deliverProduct(userID int64, product *models.Product) {
	delivered := false
	if product.FilePath != "" {
		path := product.FilePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(productsDir, path)
		}
		if _, err := os.Stat(path); err == nil {
			doc := tgbotapi.NewDocument(userID, tgbotapi.FilePath(path))
			doc.Caption = fmt.Sprintf("Merci — %s", product.Title)
			if _, err := b.api.Send(doc); err != nil {
				b.logger.Errorf("Failed to send product file to user %d: %v", userID, err)
			} else {
				delivered = true
			}
		}
	}
	if product.DeliveryText != "" && !delivered {
		b.sendMessage(userID, product.DeliveryText, nil)
	}

	if strings.Contains(strings.ToUpper(product.Title), "FORMA") {
		var markup interface{}
		if url := b.supportLink(); url != "" {
			markup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("🎧 Ouvrir le support", url),
			))
		}
		b.sendMessage(userID, "🎓 Ta *formation* est prête. Contacte le *support* pour la réception et l'accès.", markup)
	}
}
