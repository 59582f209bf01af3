package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avagyan/atelier_orders/internal/orderflow"
)

// OrderNote carries everything the operator sees about a new order.
type OrderNote struct {
	OrderID      string
	ProductType  string
	OrderDate    string
	DeliveryDate string
	Username     string
	Email        string
	Phone        string
	Location     string
	City         string
	Address      string
	Comment      string
	Size         string
	Price        string
	PromoCode    string
}

func (n OrderNote) Caption() string {
	promo := n.PromoCode
	if promo == "" {
		promo = "none"
	}
	return fmt.Sprintf(`📦 *New order!*
🆔 *Order ID:* %s
🎨 *Product type:* %s
📅 *Order date:* %s
📦 *Delivery date:* %s
👤 *Customer:* %s (%s)
📞 *Phone:* %s
📍 *Location:* %s
🏙 *City:* %s
🏠 *Address:* %s
💬 *Comment:* %s
🎁 *Size:* %s
💰 *Price:* %s
🎟 *Promo code:* %s`,
		n.OrderID, n.ProductType, n.OrderDate, n.DeliveryDate,
		n.Username, n.Email, n.Phone, n.Location, n.City, n.Address,
		n.Comment, n.Size, n.Price, promo)
}

// Notifier delivers order notifications and operator acks to the
// admin chat.
type Notifier struct {
	Bot    Sender
	ChatID int64
}

func actionKeyboard(orderID string) tgbotapi.InlineKeyboardMarkup {
	row := func(text string, action orderflow.Action) []tgbotapi.InlineKeyboardButton {
		data := encodeCallback(Callback{Action: action, OrderID: orderID})
		return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row("✅ Confirm", orderflow.ActionConfirm),
		row("❌ Reject", orderflow.ActionReject),
		row("🚚 Shipped", orderflow.ActionShipped),
		row("📦 Completed", orderflow.ActionComplete),
	)
}

// SendOrder delivers the order photo with its caption and the four
// action buttons.
func (n *Notifier) SendOrder(note OrderNote, imgPath string) error {
	photo := tgbotapi.NewPhoto(n.ChatID, tgbotapi.FilePath(imgPath))
	photo.Caption = note.Caption()
	photo.ParseMode = tgbotapi.ModeMarkdown
	photo.ReplyMarkup = actionKeyboard(note.OrderID)

	if _, err := n.Bot.Send(photo); err != nil {
		return fmt.Errorf("telegram: send order %s: %w", note.OrderID, err)
	}
	return nil
}

func (n *Notifier) SendText(text string) error {
	if _, err := n.Bot.Send(tgbotapi.NewMessage(n.ChatID, text)); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}
