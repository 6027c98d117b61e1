package handlers

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/domain"
	applog "tienda/internal/log"
	"tienda/internal/repos"
	"tienda/internal/validate"
)

type ProductHandler struct {
	Products *repos.ProductRepo
}

// page is one page of the catalog plus the navigation the clients expect.
type page struct {
	Items       []domain.Product
	Page        int
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
	Limit       int
}

// paginate filters, sorts and slices the product list.
//
//	query: "key:value" where key is status:true/false, category:X, or another field
//	       matched as text (title:..., code:...)
//	sort:  "asc"/"desc" orders by price; anything else keeps insertion order
func paginate(list []domain.Product, limit, pg int, sortDir, query string) page {
	if query != "" {
		key, val, ok := strings.Cut(query, ":")
		if ok {
			list = filterProducts(list, key, val)
		}
	}

	switch sortDir {
	case "asc":
		sort.SliceStable(list, func(i, j int) bool { return list[i].Price < list[j].Price })
	case "desc":
		sort.SliceStable(list, func(i, j int) bool { return list[i].Price > list[j].Price })
	}

	totalPages := (len(list) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	if pg > totalPages {
		pg = totalPages
	}

	start := (pg - 1) * limit
	end := start + limit
	if start > len(list) {
		start = len(list)
	}
	if end > len(list) {
		end = len(list)
	}

	p := page{
		Items:       list[start:end],
		Page:        pg,
		TotalPages:  totalPages,
		HasPrevPage: pg > 1,
		HasNextPage: pg < totalPages,
		Limit:       limit,
	}
	if p.HasPrevPage {
		p.PrevPage = pg - 1
	}
	if p.HasNextPage {
		p.NextPage = pg + 1
	}
	return p
}

func filterProducts(list []domain.Product, key, val string) []domain.Product {
	out := list[:0:0]
	for _, p := range list {
		switch key {
		case "status":
			if strconv.FormatBool(p.Status) == val {
				out = append(out, p)
			}
		case "category":
			if p.Category == val {
				out = append(out, p)
			}
		case "title":
			if p.Title == val {
				out = append(out, p)
			}
		case "code":
			if p.Code == val {
				out = append(out, p)
			}
		}
	}
	return out
}

// List handles GET /api/products with limit/page/sort/query params.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.Products.List()
	if err != nil {
		return failFrom(c, err)
	}

	limit := validate.Page(c.Query("limit"), 10)
	pg := validate.Page(c.Query("page"), 1)
	p := paginate(list, limit, pg, c.Query("sort"), c.Query("query"))

	link := func(target int) *string {
		q := url.Values{}
		if s := c.Query("sort"); s != "" {
			q.Set("sort", s)
		}
		if s := c.Query("query"); s != "" {
			q.Set("query", s)
		}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("page", strconv.Itoa(target))
		u := fmt.Sprintf("%s://%s%s?%s", c.Protocol(), c.Hostname(), c.Path(), q.Encode())
		return &u
	}

	resp := fiber.Map{
		"status":      "success",
		"payload":     p.Items,
		"totalPages":  p.TotalPages,
		"page":        p.Page,
		"hasPrevPage": p.HasPrevPage,
		"hasNextPage": p.HasNextPage,
		"prevPage":    nil,
		"nextPage":    nil,
		"prevLink":    nil,
		"nextLink":    nil,
	}
	if p.HasPrevPage {
		resp["prevPage"] = p.PrevPage
		resp["prevLink"] = link(p.PrevPage)
	}
	if p.HasNextPage {
		resp["nextPage"] = p.NextPage
		resp["nextLink"] = link(p.NextPage)
	}
	return c.JSON(resp)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("pid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	p, err := h.Products.Get(id)
	if err != nil {
		return failFrom(c, err)
	}
	return success(c, fiber.StatusOK, p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in domain.ProductInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	created, err := h.Products.Create(in)
	if err != nil {
		return failFrom(c, err)
	}
	applog.Info(c, "product.create", map[string]any{"id": created.ID, "code": created.Code})
	return success(c, fiber.StatusCreated, created)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("pid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	var in domain.ProductInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return fail(c, fiber.StatusBadRequest, "malformed request body")
	}
	updated, err := h.Products.Update(id, in)
	if err != nil {
		return failFrom(c, err)
	}
	applog.Info(c, "product.update", map[string]any{"id": id})
	return success(c, fiber.StatusOK, updated)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("pid"))
	if !ok {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	removed, err := h.Products.Delete(id)
	if err != nil {
		return failFrom(c, err)
	}
	if !removed {
		return fail(c, fiber.StatusNotFound, "product not found")
	}
	applog.Info(c, "product.delete", map[string]any{"id": id})
	return success(c, fiber.StatusOK, true)
}
