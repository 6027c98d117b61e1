package repos

import (
	"encoding/json"

	"tienda/internal/domain"
	"tienda/internal/store"

	"github.com/pkg/errors"
)

// Notifier receives the full product list after every successful catalog
// mutation. Delivery is fire-and-forget: it cannot fail the mutation.
type Notifier interface {
	ProductsChanged(products []domain.Product)
}

// ProductRepo owns the products collection. All mutations run as a
// serialized load-mutate-replace cycle on the store.
type ProductRepo struct {
	store    store.Store
	notifier Notifier
}

func NewProductRepo(st store.Store, n Notifier) *ProductRepo {
	return &ProductRepo{store: st, notifier: n}
}

// errUnchanged aborts a store.Update without writing anything.
var errUnchanged = errors.New("collection unchanged")

func (r *ProductRepo) List() ([]domain.Product, error) {
	records, err := r.store.Load(store.Products)
	if err != nil {
		return nil, err
	}
	return decode[domain.Product](store.Products, records)
}

func (r *ProductRepo) Get(id int) (domain.Product, error) {
	list, err := r.List()
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

var requiredFields = []struct {
	name    string
	present func(domain.ProductInput) bool
}{
	{"title", func(in domain.ProductInput) bool { return in.Title != nil }},
	{"description", func(in domain.ProductInput) bool { return in.Description != nil }},
	{"code", func(in domain.ProductInput) bool { return in.Code != nil }},
	{"price", func(in domain.ProductInput) bool { return in.Price != nil }},
	{"status", func(in domain.ProductInput) bool { return in.Status != nil }},
	{"stock", func(in domain.ProductInput) bool { return in.Stock != nil }},
	{"category", func(in domain.ProductInput) bool { return in.Category != nil }},
}

func (r *ProductRepo) Create(in domain.ProductInput) (domain.Product, error) {
	for _, f := range requiredFields {
		if !f.present(in) {
			return domain.Product{}, domain.MissingField(f.name)
		}
	}
	if *in.Price < 0 {
		return domain.Product{}, domain.InvalidField("price", "must not be negative")
	}
	if *in.Stock < 0 {
		return domain.Product{}, domain.InvalidField("stock", "must not be negative")
	}

	var created domain.Product
	var after []domain.Product
	err := r.store.Update(store.Products, func(records []json.RawMessage) ([]json.RawMessage, error) {
		list, err := decode[domain.Product](store.Products, records)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			if p.Code == string(*in.Code) {
				return nil, domain.ErrDuplicateCode
			}
		}

		created = domain.Product{
			ID:          store.NextID(records),
			Title:       string(*in.Title),
			Description: string(*in.Description),
			Code:        string(*in.Code),
			Price:       float64(*in.Price),
			Status:      bool(*in.Status),
			Stock:       int(*in.Stock),
			Category:    string(*in.Category),
			Thumbnails:  []string{},
		}
		if in.Thumbnails != nil {
			created.Thumbnails = []string(*in.Thumbnails)
		}
		after = append(list, created)
		return encode(store.Products, after)
	})
	if err != nil {
		return domain.Product{}, err
	}
	r.notify(after)
	return created, nil
}

func (r *ProductRepo) Update(id int, in domain.ProductInput) (domain.Product, error) {
	if in.Price != nil && *in.Price < 0 {
		return domain.Product{}, domain.InvalidField("price", "must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return domain.Product{}, domain.InvalidField("stock", "must not be negative")
	}

	var updated domain.Product
	var after []domain.Product
	err := r.store.Update(store.Products, func(records []json.RawMessage) ([]json.RawMessage, error) {
		list, err := decode[domain.Product](store.Products, records)
		if err != nil {
			return nil, err
		}
		idx := -1
		for i, p := range list {
			if p.ID == id {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, domain.ErrProductNotFound
		}
		if in.Code != nil {
			for i, p := range list {
				if i != idx && p.Code == string(*in.Code) {
					return nil, domain.ErrDuplicateCode
				}
			}
		}

		p := list[idx]
		if in.Title != nil {
			p.Title = string(*in.Title)
		}
		if in.Description != nil {
			p.Description = string(*in.Description)
		}
		if in.Code != nil {
			p.Code = string(*in.Code)
		}
		if in.Price != nil {
			p.Price = float64(*in.Price)
		}
		if in.Status != nil {
			p.Status = bool(*in.Status)
		}
		if in.Stock != nil {
			p.Stock = int(*in.Stock)
		}
		if in.Category != nil {
			p.Category = string(*in.Category)
		}
		if in.Thumbnails != nil {
			p.Thumbnails = []string(*in.Thumbnails)
		}

		list[idx] = p
		updated = p
		after = list
		return encode(store.Products, list)
	})
	if err != nil {
		return domain.Product{}, err
	}
	r.notify(after)
	return updated, nil
}

// Delete removes a product. A missing id is reported as false, not an
// error, and writes nothing.
func (r *ProductRepo) Delete(id int) (bool, error) {
	var after []domain.Product
	err := r.store.Update(store.Products, func(records []json.RawMessage) ([]json.RawMessage, error) {
		list, err := decode[domain.Product](store.Products, records)
		if err != nil {
			return nil, err
		}
		kept := list[:0:0]
		for _, p := range list {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(list) {
			return nil, errUnchanged
		}
		after = kept
		return encode(store.Products, kept)
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	r.notify(after)
	return true, nil
}

func (r *ProductRepo) notify(list []domain.Product) {
	if r.notifier == nil {
		return
	}
	if list == nil {
		list = []domain.Product{}
	}
	r.notifier.ProductsChanged(list)
}
