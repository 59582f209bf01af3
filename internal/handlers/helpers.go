package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avagyan/atelier_orders/internal/mykafka"
)

func userID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "no token, no access")
	}
	return id, nil
}

func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
