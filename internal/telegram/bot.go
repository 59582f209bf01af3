package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avagyan/atelier_orders/internal/orderflow"
)

// Sender is the subset of the bot API the notifier and the callback
// handler use. Tests substitute a fake.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return bot, nil
}

// Callback is the structured payload carried by an inline keyboard
// button. Short keys: callback_data is limited to 64 bytes.
type Callback struct {
	Action  orderflow.Action `json:"a"`
	OrderID string           `json:"id"`
}

func encodeCallback(cb Callback) string {
	data, _ := json.Marshal(cb)
	return string(data)
}

func decodeCallback(raw string) (Callback, error) {
	var cb Callback
	if err := json.Unmarshal([]byte(raw), &cb); err != nil {
		return Callback{}, fmt.Errorf("telegram: bad callback payload %q: %w", raw, err)
	}
	if cb.OrderID == "" {
		return Callback{}, fmt.Errorf("telegram: callback payload %q missing order id", raw)
	}
	return cb, nil
}
