package main

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"tienda/internal/config"
	"tienda/internal/http/handlers"
	applog "tienda/internal/log"
	"tienda/internal/realtime"
	"tienda/internal/repos"
	"tienda/internal/store"
)

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.Backend == "sqlite" {
		return store.OpenSQLiteStore(cfg.DBDSN)
	}
	return store.NewFileStore(cfg.DataDir)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.LogFile != "" {
		if err := applog.MirrorToFile(cfg.LogFile); err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		}
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal(err)
	}

	hub := realtime.NewHub()
	deps := handlers.NewDeps(st, hub)
	hub.Bind(deps.ProductHandler.Products)

	if cfg.SeedDemo {
		if err := repos.SeedDemo(deps.ProductHandler.Products); err != nil {
			log.Fatal(err)
		}
	}

	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status": "error",
				"error":  "internal error",
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/ws")
		},
	}))

	// ---------- Static assets ----------
	app.Static("/static", "./web/static")

	// ---------- Views ----------
	app.Get("/", deps.ViewsHandler.Home)
	app.Get("/products/new", deps.ViewsHandler.NewProduct)
	app.Get("/products", deps.ViewsHandler.Products)
	app.Get("/products/:pid", deps.ViewsHandler.ProductDetail)
	app.Get("/carts/:cid", deps.ViewsHandler.Cart)
	app.Get("/realtimeproducts", deps.ViewsHandler.Realtime)

	// ---------- API ----------
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

	// ---------- Realtime ----------
	app.Use("/ws", realtime.Upgrade)
	app.Get("/ws", hub.Handler())

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
