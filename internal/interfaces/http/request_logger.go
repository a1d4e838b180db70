package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agrocampo/agro-inventario/pkg/logger"
)

// RequestLogger registra cada petición con método, ruta, estado y latencia.
// Las peticiones autenticadas llevan además la empresa del token.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		ev := log.Info()
		if err != nil || c.Response().StatusCode() >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start))
		if companyID := GetCompanyID(c); companyID != "" {
			ev.Str("company_id", companyID)
		}
		if err != nil {
			ev.Err(err)
		}
		ev.Msg("request")
		return err
	}
}
