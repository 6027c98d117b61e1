package handlers

import (
	"tienda/internal/repos"
	"tienda/internal/store"
)

type Deps struct {
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	ViewsHandler   *ViewsHandler
}

func NewDeps(st store.Store, notifier repos.Notifier) *Deps {
	productRepo := repos.NewProductRepo(st, notifier)
	cartRepo := repos.NewCartRepo(st, productRepo)

	return &Deps{
		ProductHandler: &ProductHandler{Products: productRepo},
		CartHandler:    &CartHandler{Carts: cartRepo, Products: productRepo},
		ViewsHandler:   &ViewsHandler{ProductRepo: productRepo, Carts: cartRepo},
	}
}
