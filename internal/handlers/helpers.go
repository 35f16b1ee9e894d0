package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velmark/storefront/internal/logging"
	"github.com/velmark/storefront/internal/mykafka"
)

// publishEvent fires a domain event and only logs on failure; no handler
// outcome depends on the broker.
func publishEvent(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_error", "topic", topic, "error", err)
	}
}
