package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"wallapi/internal/http/middleware"
	"wallapi/internal/i18n"
	"wallapi/internal/service"
)

var messages = i18n.MustDefault()

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeError writes a standardized JSON error response. key names the
// localized message; params fill its placeholders.
func writeError(c *fiber.Ctx, status int, code, key string, params ...string) error {
	return writeFieldError(c, status, code, "", key, params...)
}

func writeFieldError(c *fiber.Ctx, status int, code, field, key string, params ...string) error {
	res := errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: messages.Localizer(middleware.Lang(c)).T(key, params...),
			Field:   field,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	err    error
	status int
	code   string
	key    string
}

// Order matters: derived errors come before the sentinels they wrap.
var errorMappings = []errorMapping{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "error.invalid_id"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "error.invalid_credentials"},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "error.unauthorized"},
	{service.ErrAccountInactive, fiber.StatusForbidden, "ACCOUNT_INACTIVE", "error.account_inactive"},
	{service.ErrCannotDeleteSelf, fiber.StatusForbidden, "CANNOT_DELETE_SELF", "error.cannot_delete_self"},
	{service.ErrRootUndeletable, fiber.StatusForbidden, "ROOT_UNDELETABLE", "error.root_undeletable"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "error.forbidden"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "error.not_found"},
	{service.ErrEmailTaken, fiber.StatusConflict, "EMAIL_TAKEN", "error.email_taken"},
	{service.ErrSlugTaken, fiber.StatusConflict, "SLUG_TAKEN", "error.slug_taken"},
	{service.ErrLastAdmin, fiber.StatusConflict, "LAST_ADMIN", "error.last_admin"},
	{service.ErrConflict, fiber.StatusConflict, "CONFLICT", "error.conflict"},
	{service.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "error.insufficient_stock"},
	{service.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION", "error.invalid_transition"},
	{service.ErrWrongPassword, fiber.StatusBadRequest, "WRONG_PASSWORD", "error.wrong_password"},
	{service.ErrInvalidPath, fiber.StatusBadRequest, "INVALID_PATH", "error.invalid_path"},
	{service.ErrFileType, fiber.StatusUnsupportedMediaType, "FILE_TYPE_NOT_ALLOWED", "error.file_type_not_allowed"},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "error.payload_too_large"},
	{service.ErrInvalidInput, fiber.StatusBadRequest, "BAD_REQUEST", "error.bad_request"},
}

// respondError translates service errors into the error envelope. Unknown
// errors are handed to the global ErrorHandler so the request logger records them.
func respondError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return writeFieldError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", ve.Field,
			"validation."+ve.Reason, "field", ve.Field)
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, m.key)
		}
	}
	return err
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "error.bad_request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "error.unauthorized")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "error.forbidden")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "error.route_not_found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "error.method_not_allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "error.payload_too_large")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "TOO_MANY_REQUESTS", "error.too_many_requests")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "error.service_unavailable")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "error.internal")
		}
	}
}

// parseBody decodes a JSON request body into v.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_JSON", "error.invalid_json")
	}
	return nil
}

// paramID reads the :id route parameter. ok is false when the error
// response has already been written.
func paramID(c *fiber.Ctx) (string, bool, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", false, writeError(c, fiber.StatusBadRequest, "INVALID_ID", "error.invalid_id")
	}
	return id.String(), true, nil
}

// queryInt reads an optional integer query parameter. ok is false when the
// error response has already been written.
func queryInt(c *fiber.Ctx, name string, def int) (int, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, true, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, writeFieldError(c, fiber.StatusBadRequest, "INVALID_"+strings.ToUpper(name), name,
			"validation.invalid", "field", name)
	}
	return v, true, nil
}

// pagination reads limit and offset; zero values select the service defaults.
func pagination(c *fiber.Ctx) (limit, offset int, ok bool, err error) {
	if limit, ok, err = queryInt(c, "limit", 0); !ok {
		return 0, 0, false, err
	}
	if offset, ok, err = queryInt(c, "offset", 0); !ok {
		return 0, 0, false, err
	}
	return limit, offset, true, nil
}
