package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/repos"
	"tienda/internal/validate"
)

type ViewsHandler struct {
	ProductRepo *repos.ProductRepo
	Carts    *repos.CartRepo
}

func (h *ViewsHandler) Home(c *fiber.Ctx) error {
	return c.Redirect("/products")
}

func (h *ViewsHandler) NewProduct(c *fiber.Ctx) error {
	return c.Render("new_product", fiber.Map{"Title": "New product"})
}

func (h *ViewsHandler) Products(c *fiber.Ctx) error {
	list, err := h.ProductRepo.List()
	if err != nil {
		return err
	}
	limit := validate.Page(c.Query("limit"), 10)
	pg := validate.Page(c.Query("page"), 1)
	p := paginate(list, limit, pg, c.Query("sort"), c.Query("query"))

	return c.Render("products", fiber.Map{
		"Title":       "Products",
		"Products":    p.Items,
		"Page":        p.Page,
		"TotalPages":  p.TotalPages,
		"HasPrevPage": p.HasPrevPage,
		"HasNextPage": p.HasNextPage,
		"PrevPage":    p.PrevPage,
		"NextPage":    p.NextPage,
		"Query":       c.Query("query"),
		"Sort":        c.Query("sort"),
		"Limit":       p.Limit,
	})
}

func (h *ViewsHandler) ProductDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("pid"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	p, err := h.ProductRepo.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Product not found"})
	}
	return c.Render("product_detail", fiber.Map{"Title": p.Title, "Product": p})
}

func (h *ViewsHandler) Cart(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("cid"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Cart not found"})
	}
	cart, err := h.Carts.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Cart not found"})
	}

	type row struct {
		Label    string
		Quantity int
	}
	rows := make([]row, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		r := row{Label: fmt.Sprintf("#%d (no longer available)", line.ProductID), Quantity: line.Quantity}
		if p, perr := h.ProductRepo.Get(line.ProductID); perr == nil {
			r.Label = p.Title
		}
		rows = append(rows, r)
	}
	return c.Render("cart", fiber.Map{
		"Title": "My cart",
		"Cart":  cart,
		"Lines": rows,
	})
}

// Realtime renders the live product list; updates arrive over the
// websocket.
func (h *ViewsHandler) Realtime(c *fiber.Ctx) error {
	list, err := h.ProductRepo.List()
	if err != nil {
		return err
	}
	return c.Render("realtime_products", fiber.Map{"Title": "Real-Time Products", "Products": list})
}
