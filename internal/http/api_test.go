package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tienda/internal/http/handlers"
	"tienda/internal/store"
)

// Minimal app with the API surface wired over a file store in a temp dir.
func newAPIApp(t *testing.T) *fiber.App {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	deps := handlers.NewDeps(st, nil)

	app := fiber.New()
	app.Use(requestid.New())

	products := app.Group("/api/products")
	products.Get("/", deps.ProductHandler.List)
	products.Get("/:pid", deps.ProductHandler.Get)
	products.Post("/", deps.ProductHandler.Create)
	products.Put("/:pid", deps.ProductHandler.Update)
	products.Delete("/:pid", deps.ProductHandler.Delete)

	carts := app.Group("/api/carts")
	carts.Post("/", deps.CartHandler.Create)
	carts.Get("/:cid", deps.CartHandler.Get)
	carts.Post("/:cid/product/:pid", deps.CartHandler.AddItem)
	carts.Put("/:cid", deps.CartHandler.Replace)
	carts.Put("/:cid/products/:pid", deps.CartHandler.SetQty)
	carts.Delete("/:cid/products/:pid", deps.CartHandler.RemoveItem)
	carts.Delete("/:cid", deps.CartHandler.Clear)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode response %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

const mateBody = `{"title":"Mate","description":"Calabash mate","code":"MATE-001","price":45.5,"status":true,"stock":12,"category":"drinkware"}`

func TestProductCRUDOverHTTP(t *testing.T) {
	app := newAPIApp(t)

	// create
	code, body := doJSON(t, app, "POST", "/api/products/", mateBody)
	if code != 201 {
		t.Fatalf("create: expected 201, got %d (%v)", code, body)
	}
	if body["status"] != "success" {
		t.Fatalf("create: unexpected envelope %v", body)
	}
	payload := body["payload"].(map[string]any)
	id := int(payload["id"].(float64))
	if id != 1 {
		t.Fatalf("create: expected id 1, got %d", id)
	}

	// get
	code, body = doJSON(t, app, "GET", fmt.Sprintf("/api/products/%d", id), "")
	if code != 200 {
		t.Fatalf("get: expected 200, got %d", code)
	}
	payload = body["payload"].(map[string]any)
	if payload["title"] != "Mate" || payload["code"] != "MATE-001" {
		t.Fatalf("get: unexpected payload %v", payload)
	}

	// update merges
	code, body = doJSON(t, app, "PUT", fmt.Sprintf("/api/products/%d", id), `{"price":"39.99","id":999}`)
	if code != 200 {
		t.Fatalf("update: expected 200, got %d (%v)", code, body)
	}
	payload = body["payload"].(map[string]any)
	if payload["price"] != 39.99 {
		t.Fatalf("update: price not applied: %v", payload)
	}
	if int(payload["id"].(float64)) != id {
		t.Fatalf("update: id must be immutable, got %v", payload["id"])
	}
	if payload["title"] != "Mate" {
		t.Fatalf("update: untouched fields must survive, got %v", payload)
	}

	// delete
	code, body = doJSON(t, app, "DELETE", fmt.Sprintf("/api/products/%d", id), "")
	if code != 200 || body["payload"] != true {
		t.Fatalf("delete: expected 200/true, got %d (%v)", code, body)
	}
	code, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/products/%d", id), "")
	if code != 404 {
		t.Fatalf("second delete: expected 404, got %d", code)
	}
	code, _ = doJSON(t, app, "GET", fmt.Sprintf("/api/products/%d", id), "")
	if code != 404 {
		t.Fatalf("get after delete: expected 404, got %d", code)
	}
}

func TestProductCreateValidation(t *testing.T) {
	app := newAPIApp(t)

	code, body := doJSON(t, app, "POST", "/api/products/", `{"title":"Mate"}`)
	if code != 400 {
		t.Fatalf("expected 400 for missing fields, got %d", code)
	}
	if body["status"] != "error" {
		t.Fatalf("expected error envelope, got %v", body)
	}

	// duplicate code
	code, _ = doJSON(t, app, "POST", "/api/products/", mateBody)
	if code != 201 {
		t.Fatalf("seed create failed: %d", code)
	}
	code, body = doJSON(t, app, "POST", "/api/products/", mateBody)
	if code != 400 {
		t.Fatalf("expected 400 for duplicate code, got %d (%v)", code, body)
	}
}

func TestProductListPaginationEnvelope(t *testing.T) {
	app := newAPIApp(t)

	for i := 1; i <= 12; i++ {
		body := fmt.Sprintf(`{"title":"P%d","description":"d","code":"C-%d","price":%d,"status":true,"stock":1,"category":"cat"}`, i, i, i)
		if code, resp := doJSON(t, app, "POST", "/api/products/", body); code != 201 {
			t.Fatalf("seed %d failed: %d (%v)", i, code, resp)
		}
	}

	code, body := doJSON(t, app, "GET", "/api/products/?limit=5&page=2&sort=asc", "")
	if code != 200 {
		t.Fatalf("list: expected 200, got %d", code)
	}
	if body["totalPages"] != float64(3) || body["page"] != float64(2) {
		t.Fatalf("pagination: got totalPages=%v page=%v", body["totalPages"], body["page"])
	}
	if body["hasPrevPage"] != true || body["hasNextPage"] != true {
		t.Fatalf("pagination flags wrong: %v", body)
	}
	if body["prevLink"] == nil || body["nextLink"] == nil {
		t.Fatalf("expected prev/next links, got %v", body)
	}
	items := body["payload"].([]any)
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	// ascending by price: page 2 starts at price 6
	first := items[0].(map[string]any)
	if first["price"] != float64(6) {
		t.Fatalf("sort/page broken: first price %v", first["price"])
	}

	// filter by query
	code, body = doJSON(t, app, "GET", "/api/products/?query=title:P3", "")
	if code != 200 {
		t.Fatalf("filtered list: %d", code)
	}
	if items := body["payload"].([]any); len(items) != 1 {
		t.Fatalf("filter: expected 1 item, got %d", len(items))
	}
}

func TestCartEndpoints(t *testing.T) {
	app := newAPIApp(t)

	// seed two products
	code, body := doJSON(t, app, "POST", "/api/products/", mateBody)
	if code != 201 {
		t.Fatalf("seed product: %d", code)
	}
	p1 := int(body["payload"].(map[string]any)["id"].(float64))
	code, body = doJSON(t, app, "POST", "/api/products/",
		`{"title":"Bombilla","description":"d","code":"BOMB-010","price":9.99,"status":true,"stock":40,"category":"drinkware"}`)
	if code != 201 {
		t.Fatalf("seed product 2: %d", code)
	}
	p2 := int(body["payload"].(map[string]any)["id"].(float64))

	// create cart
	code, body = doJSON(t, app, "POST", "/api/carts/", "")
	if code != 201 {
		t.Fatalf("create cart: %d", code)
	}
	cid := int(body["payload"].(map[string]any)["id"].(float64))

	// add without body defaults qty to 1, then accumulate
	code, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/carts/%d/product/%d", cid, p1), "")
	if code != 201 {
		t.Fatalf("add: %d", code)
	}
	code, body = doJSON(t, app, "POST", fmt.Sprintf("/api/carts/%d/product/%d", cid, p1), `{"quantity":4}`)
	if code != 201 {
		t.Fatalf("add 2: %d", code)
	}
	lines := body["payload"].(map[string]any)["products"].([]any)
	if len(lines) != 1 {
		t.Fatalf("merge-on-add: expected 1 line, got %d", len(lines))
	}
	if q := lines[0].(map[string]any)["quantity"]; q != float64(5) {
		t.Fatalf("accumulation: expected quantity 5, got %v", q)
	}

	// unknown product
	code, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/carts/%d/product/999", cid), "")
	if code != 404 {
		t.Fatalf("add unknown product: expected 404, got %d", code)
	}

	// set quantity, including zero
	code, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/carts/%d/products/%d", cid, p1), `{"quantity":0}`)
	if code != 200 {
		t.Fatalf("setqty 0: %d", code)
	}
	code, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/carts/%d/products/%d", cid, p1), `{"quantity":-1}`)
	if code != 400 {
		t.Fatalf("setqty -1: expected 400, got %d", code)
	}

	// get with product expansion; the zero-quantity line is still there
	code, body = doJSON(t, app, "GET", fmt.Sprintf("/api/carts/%d", cid), "")
	if code != 200 {
		t.Fatalf("get cart: %d", code)
	}
	got := body["payload"].([]any)
	if len(got) != 1 {
		t.Fatalf("expected zero-quantity line kept, got %v", got)
	}
	expanded := got[0].(map[string]any)["product"].(map[string]any)
	if expanded["code"] != "MATE-001" {
		t.Fatalf("expected expanded product, got %v", got[0])
	}

	// replace all-or-nothing
	code, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/carts/%d", cid),
		fmt.Sprintf(`{"products":[{"product":%d,"quantity":2},{"product":"x","quantity":1}]}`, p2))
	if code != 400 {
		t.Fatalf("invalid replace: expected 400, got %d", code)
	}
	code, body = doJSON(t, app, "PUT", fmt.Sprintf("/api/carts/%d", cid),
		fmt.Sprintf(`{"products":[{"product":%d,"quantity":2}]}`, p2))
	if code != 200 {
		t.Fatalf("replace: %d", code)
	}
	lines = body["payload"].(map[string]any)["products"].([]any)
	if len(lines) != 1 || lines[0].(map[string]any)["product"] != float64(p2) {
		t.Fatalf("replace result wrong: %v", lines)
	}

	// remove line
	code, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/carts/%d/products/%d", cid, p2), "")
	if code != 200 {
		t.Fatalf("remove: %d", code)
	}
	code, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/carts/%d/products/%d", cid, p2), "")
	if code != 404 {
		t.Fatalf("remove absent line: expected 404, got %d", code)
	}

	// clear
	code, body = doJSON(t, app, "DELETE", fmt.Sprintf("/api/carts/%d", cid), "")
	if code != 200 {
		t.Fatalf("clear: %d", code)
	}
	if lines := body["payload"].(map[string]any)["products"].([]any); len(lines) != 0 {
		t.Fatalf("clear left lines: %v", lines)
	}

	// missing cart everywhere
	code, _ = doJSON(t, app, "GET", "/api/carts/999", "")
	if code != 404 {
		t.Fatalf("missing cart: expected 404, got %d", code)
	}
}

func TestRequestIDMiddlewarePresent(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id header")
	}
}
