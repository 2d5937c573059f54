package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/apperr"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/logger"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/middleware"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/models"
)

// ok writes {"success": true, <key>: v, ...extra}.
func ok(c *fiber.Ctx, status int, key string, v any, extra ...fiber.Map) error {
	body := fiber.Map{"success": true}
	if key != "" {
		body[key] = v
	}
	for _, m := range extra {
		for k, val := range m {
			body[k] = val
		}
	}
	return c.Status(status).JSON(body)
}

// fail maps err onto the failure envelope. Unknown errors are logged and
// reported as 500.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	if status >= fiber.StatusInternalServerError {
		logger.FromCtx(c.UserContext()).Error("request failed",
			"method", c.Method(), "path", c.Path(), "err", err)
	}
	body := fiber.Map{
		"success": false,
		"error":   apperr.Message(err),
	}
	if fe := apperr.Fields(err); len(fe) > 0 {
		body["errors"] = fe
	}
	return c.Status(status).JSON(body)
}

func invalidBody(c *fiber.Ctx) error {
	return fail(c, apperr.Invalid("Invalid request body"))
}

func actor(c *fiber.Ctx) (models.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return models.Actor{}, apperr.Unauthorized("Authentication required")
	}
	return a, nil
}

func paramID(c *fiber.Ctx, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.NotFound(what)
	}
	return id, nil
}

// optionalUUID parses s, treating blanks as uuid.Nil.
func optionalUUID(field, s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		fe := apperr.FieldErrors{}
		fe.Add(field, field+" must be a valid id")
		return uuid.Nil, apperr.Validation(fe)
	}
	return id, nil
}

// stringList accepts either a JSON array of strings or a single string, which
// becomes a one-item list.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = stringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = flexInt(int(v))
	return nil
}
