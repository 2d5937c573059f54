package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/services/profiles"
)

type ClientHandler struct {
	Profiles *profiles.Service
}

type UpdateClientReq struct {
	Name        *string `json:"name"`
	CompanyName *string `json:"companyName"`
	Country     *string `json:"country"`
	Industry    *string `json:"industry"`
}

func (h *ClientHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "Client")
	if err != nil {
		return fail(c, err)
	}
	cl, err := h.Profiles.Client(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "client", cl)
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Client")
	if err != nil {
		return fail(c, err)
	}
	var req UpdateClientReq
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	cl, err := h.Profiles.UpdateClient(c.UserContext(), a, id, profiles.ClientUpdate{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Country:     req.Country,
		Industry:    req.Industry,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "client", cl)
}

func (h *ClientHandler) Dashboard(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := paramID(c, "id", "Client")
	if err != nil {
		return fail(c, err)
	}
	d, err := h.Profiles.ClientDashboard(c.UserContext(), a, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.StatusOK, "dashboard", d)
}
