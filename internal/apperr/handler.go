package apperr

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const CtxRequestIDKey = "request_id"

// ErrorHandler renders every error returned by a handler as
// {"code": ..., "message": ...}. Internal errors are logged with their cause
// and answered with a generic body. An expired request deadline is a 503.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if errors.Is(err, context.DeadlineExceeded) {
			logInternal(logger, c, "request deadline exceeded", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"code":    "TIMEOUT",
				"message": "the request took too long, please retry",
			})
		}

		var appErr *Error
		if errors.As(err, &appErr) {
			if appErr.Kind == KindInternal {
				logInternal(logger, c, appErr.Message, appErr.Err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"code":    "INTERNAL_ERROR",
					"message": "unexpected server error",
				})
			}
			return c.Status(appErr.Kind.Status()).JSON(fiber.Map{
				"code":    appErr.Code,
				"message": appErr.Message,
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"code":    codeForStatus(fe.Code),
				"message": fe.Message,
			})
		}

		logInternal(logger, c, "unhandled error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":    "INTERNAL_ERROR",
			"message": "unexpected server error",
		})
	}
}

func logInternal(logger *zap.Logger, c *fiber.Ctx, msg string, cause error) {
	logger.Error(msg,
		zap.Any(CtxRequestIDKey, c.Locals(CtxRequestIDKey)),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(cause),
	)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	}
	return "ERROR"
}
