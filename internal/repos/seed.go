package repos

import (
	"tienda/internal/domain"
)

func text(s string) *domain.Text { t := domain.Text(s); return &t }

func number(f float64) *domain.Number { n := domain.Number(f); return &n }

func flag(b bool) *domain.Flag { v := domain.Flag(b); return &v }

func textList(s ...string) *domain.TextList { l := domain.TextList(s); return &l }

// SeedDemo inserts a handful of demo products into an empty catalog.
// Safe to run on every startup.
func SeedDemo(products *ProductRepo) error {
	list, err := products.List()
	if err != nil {
		return err
	}
	if len(list) > 0 {
		return nil
	}

	demo := []domain.ProductInput{
		{
			Title:       text("Mate Imperial"),
			Description: text("Hand-carved calabash mate with alpaca trim"),
			Code:        text("MATE-001"),
			Price:       number(45.50),
			Status:      flag(true),
			Stock:       number(12),
			Category:    text("drinkware"),
			Thumbnails:  textList("img/mate-001.jpg"),
		},
		{
			Title:       text("Bombilla Pico de Loro"),
			Description: text("Stainless steel straw with filter tip"),
			Code:        text("BOMB-010"),
			Price:       number(9.99),
			Status:      flag(true),
			Stock:       number(40),
			Category:    text("drinkware"),
		},
		{
			Title:       text("Yerba Organica 1kg"),
			Description: text("Organic yerba, no stems"),
			Code:        text("YERB-1KG"),
			Price:       number(14.25),
			Status:      flag(true),
			Stock:       number(80),
			Category:    text("groceries"),
		},
	}
	for _, in := range demo {
		if _, err := products.Create(in); err != nil {
			return err
		}
	}
	return nil
}
