package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/domain"
	applog "tienda/internal/log"
	"tienda/internal/repos"
	"tienda/internal/validate"
)

type CartHandler struct {
	Carts    *repos.CartRepo
	Products *repos.ProductRepo
}

// ExpandedLine carries the full referenced product where it still exists.
// Lines whose product was deleted keep the bare id: stale references stay
// retrievable.
type ExpandedLine struct {
	Product  any `json:"product"`
	Quantity int `json:"quantity"`
}

func (h *CartHandler) expand(lines []domain.CartLine) []ExpandedLine {
	out := make([]ExpandedLine, 0, len(lines))
	for _, line := range lines {
		el := ExpandedLine{Product: line.ProductID, Quantity: line.Quantity}
		if p, err := h.Products.Get(line.ProductID); err == nil {
			el.Product = p
		}
		out = append(out, el)
	}
	return out
}

func (h *CartHandler) Create(c *fiber.Ctx) error {
	cart, err := h.Carts.Create()
	if err != nil {
		return failFrom(c, err)
	}
	applog.Info(c, "cart.create", map[string]any{"id": cart.ID})
	return success(c, fiber.StatusCreated, cart)
}

// Get returns the cart's lines with each referenced product expanded.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("cid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "cart not found")
	}
	cart, err := h.Carts.Get(id)
	if err != nil {
		return failFrom(c, err)
	}
	return success(c, fiber.StatusOK, h.expand(cart.Lines))
}

// AddItem handles POST /api/carts/:cid/product/:pid with an optional
// quantity in the body, defaulting to 1.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	cid, ok := validate.ID(c.Params("cid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "cart not found")
	}
	pid, ok := validate.ID(c.Params("pid"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}

	qty := 1
	var body struct {
		Quantity *domain.Number `json:"quantity"`
	}
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err == nil && body.Quantity != nil && *body.Quantity >= 1 {
			qty = int(*body.Quantity)
		}
	}

	cart, err := h.Carts.AddItem(cid, pid, qty)
	if err != nil {
		return failFrom(c, err)
	}
	applog.Info(c, "cart.add", map[string]any{"cart": cid, "product": pid, "qty": qty})
	return success(c, fiber.StatusCreated, cart)
}

// SetQty handles PUT /api/carts/:cid/products/:pid overwriting one line's
// quantity.
func (h *CartHandler) SetQty(c *fiber.Ctx) error {
	cid, ok := validate.ID(c.Params("cid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "cart not found")
	}
	pid, ok := validate.ID(c.Params("pid"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}

	var body struct {
		Quantity *domain.Number `json:"quantity"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.Quantity == nil || *body.Quantity < 0 {
		return fail(c, fiber.StatusBadRequest, "invalid quantity")
	}

	cart, err := h.Carts.SetItemQty(cid, pid, int(*body.Quantity))
	if err != nil {
		return failFrom(c, err)
	}
	applog.Info(c, "cart.setqty", map[string]any{"cart": cid, "product": pid, "qty": int(*body.Quantity)})
	return success(c, fiber.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	cid, ok := validate.ID(c.Params("cid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "cart not found")
	}
	pid, ok := validate.ID(c.Params("pid"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	cart, err := h.Carts.RemoveItem(cid, pid)
	if err != nil {
		return failFrom(c, err)
	}
	applog.Info(c, "cart.remove", map[string]any{"cart": cid, "product": pid})
	return success(c, fiber.StatusOK, cart)
}

// Replace handles PUT /api/carts/:cid, swapping the whole line set.
func (h *CartHandler) Replace(c *fiber.Ctx) error {
	cid, ok := validate.ID(c.Params("cid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "cart not found")
	}

	var body struct {
		Products []domain.LineInput `json:"products"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}

	lines := make([]domain.CartLine, 0, len(body.Products))
	for _, in := range body.Products {
		if in.ProductID == nil || *in.ProductID < 1 || float64(*in.ProductID) != float64(int(*in.ProductID)) {
			return fail(c, fiber.StatusBadRequest, "invalid product id in body")
		}
		if in.Quantity == nil || *in.Quantity < 0 {
			return fail(c, fiber.StatusBadRequest, "invalid quantity in body")
		}
		lines = append(lines, domain.CartLine{ProductID: int(*in.ProductID), Quantity: int(*in.Quantity)})
	}

	cart, err := h.Carts.ReplaceItems(cid, lines)
	if err != nil {
		return failFrom(c, err)
	}
	applog.Info(c, "cart.replace", map[string]any{"cart": cid, "lines": len(lines)})
	return success(c, fiber.StatusOK, cart)
}

// Clear handles DELETE /api/carts/:cid, emptying the cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cid, ok := validate.ID(c.Params("cid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "cart not found")
	}
	cart, err := h.Carts.Clear(cid)
	if err != nil {
		return failFrom(c, err)
	}
	applog.Info(c, "cart.clear", map[string]any{"cart": cid})
	return success(c, fiber.StatusOK, cart)
}
