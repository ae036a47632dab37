package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/observability"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

const headerRequestID = "X-Request-ID"

// RegisterMiddlewares installs, outermost first: request id, request
// deadline, access log and the error envelope. The access log sits outside
// the error envelope so it sees the final status.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestID)
	if timeout > 0 {
		app.Use(withDeadline(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorEnvelope(logger, metrics))
}

// requestID propagates the caller's X-Request-ID or mints one.
func requestID(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Get(headerRequestID))
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	c.Locals("request_id", id)
	c.Set(headerRequestID, id)
	return c.Next()
}

// withDeadline bounds the store and relay calls made while serving a
// request. Streaming responses outlive it and use their own context.
func withDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelope renders any returned error, or recovered panic, as
// {"error": {"code", "message", "details"}}.
func errorEnvelope(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := nextRecovering(c, logger)
		if err == nil {
			return nil
		}
		de := toDomainError(err)
		metrics.RecordError(c.Path(), c.Method(), de.Code)
		if de.HTTPStatus >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", c.Path()),
				zap.String("code", de.Code),
				zap.Any("request_id", c.Locals("request_id")),
				zap.Error(de))
		}
		body := fiber.Map{"code": de.Code, "message": de.Message}
		if len(de.Details) > 0 {
			body["details"] = de.Details
		}
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": body})
	}
}

func nextRecovering(c *fiber.Ctx, logger *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = apperrors.NewInternalError(nil)
		}
	}()
	return c.Next()
}

// toDomainError also maps fiber's own errors, such as unmatched routes and
// oversized bodies, onto the envelope.
func toDomainError(err error) *apperrors.DomainError {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_"))
		if code == "" {
			code = "HTTP_ERROR"
		}
		return apperrors.NewDomainError(code, fe.Message, fe.Code, nil)
	}
	return apperrors.ToDomainError(err)
}
