package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/avagyan/atelier_orders/internal/models"
	"github.com/avagyan/atelier_orders/internal/mykafka"
	"github.com/avagyan/atelier_orders/internal/orderflow"
)

// Handler reacts to operator button presses: it applies the status
// transition (or deletion) to the order and acks into the admin chat.
type Handler struct {
	DB       *gorm.DB
	Notifier *Notifier
	Producer *mykafka.Producer
	Log      *slog.Logger
}

// Run consumes updates until the context is cancelled or the channel
// closes. Errors are reported to the operator and never stop the loop.
func (h *Handler) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if upd.CallbackQuery == nil {
				continue
			}
			h.HandleCallback(ctx, upd.CallbackQuery)
		}
	}
}

func (h *Handler) HandleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := h.Notifier.Bot.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		h.Log.Warn("answer callback failed", "error", err)
	}

	cb, err := decodeCallback(q.Data)
	if err != nil {
		h.Log.Error("bad callback payload", "data", q.Data, "error", err)
		return
	}

	if err := h.apply(ctx, cb); err != nil {
		h.Log.Error("order action failed", "order_id", cb.OrderID, "action", cb.Action, "error", err)
		if err := h.Notifier.SendText(fmt.Sprintf("⚠️ Could not process order %s", cb.OrderID)); err != nil {
			h.Log.Error("failure ack not delivered", "order_id", cb.OrderID, "error", err)
		}
		return
	}

	h.publish(ctx, cb)

	if err := h.Notifier.SendText(ackText(cb)); err != nil {
		h.Log.Error("ack not delivered", "order_id", cb.OrderID, "error", err)
	}
}

func (h *Handler) apply(ctx context.Context, cb Callback) error {
	var order models.Order
	if err := h.DB.WithContext(ctx).Where("order_id = ?", cb.OrderID).First(&order).Error; err != nil {
		return err
	}

	out, err := orderflow.Apply(order.Status, cb.Action)
	if err != nil {
		return err
	}

	if out.Delete {
		return h.DB.WithContext(ctx).Where("order_id = ?", cb.OrderID).Delete(&models.Order{}).Error
	}
	return h.DB.WithContext(ctx).Model(&order).Update("status", out.Status).Error
}

func (h *Handler) publish(ctx context.Context, cb Callback) {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event := map[string]interface{}{
		"type":    "order_" + string(actionEventName(cb.Action)),
		"orderID": cb.OrderID,
	}
	if err := h.Producer.PublishEvent(pctx, "order_events", cb.OrderID, event); err != nil {
		h.Log.Error("kafka publish error", "error", err)
	}
}

func actionEventName(a orderflow.Action) orderflow.Action {
	if a == orderflow.ActionConfirm {
		return "confirmed"
	}
	if a == orderflow.ActionReject {
		return "rejected"
	}
	return a
}

func ackText(cb Callback) string {
	switch cb.Action {
	case orderflow.ActionConfirm:
		return fmt.Sprintf("✅ Order %s confirmed.", cb.OrderID)
	case orderflow.ActionReject:
		return fmt.Sprintf("❌ Order %s rejected and deleted.", cb.OrderID)
	case orderflow.ActionShipped:
		return fmt.Sprintf("🚚 Order %s shipped.", cb.OrderID)
	default:
		return fmt.Sprintf("📦 Order %s completed and deleted.", cb.OrderID)
	}
}
