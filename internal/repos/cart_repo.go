package repos

import (
	"encoding/json"

	"tienda/internal/domain"
	"tienda/internal/store"

	"github.com/pkg/errors"
)

// CartRepo owns the carts collection. Product references are validated
// against the catalog when a line is added or incremented; a product deleted
// afterwards leaves its lines in place.
type CartRepo struct {
	store    store.Store
	products *ProductRepo
}

func NewCartRepo(st store.Store, products *ProductRepo) *CartRepo {
	return &CartRepo{store: st, products: products}
}

func (r *CartRepo) Create() (domain.Cart, error) {
	var created domain.Cart
	err := r.store.Update(store.Carts, func(records []json.RawMessage) ([]json.RawMessage, error) {
		created = domain.Cart{ID: store.NextID(records), Lines: []domain.CartLine{}}
		rec, err := json.Marshal(created)
		if err != nil {
			return nil, errors.Wrap(err, "encode carts record")
		}
		return append(records, rec), nil
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return created, nil
}

func (r *CartRepo) Get(id int) (domain.Cart, error) {
	records, err := r.store.Load(store.Carts)
	if err != nil {
		return domain.Cart{}, err
	}
	carts, err := decode[domain.Cart](store.Carts, records)
	if err != nil {
		return domain.Cart{}, err
	}
	for _, c := range carts {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Cart{}, domain.ErrCartNotFound
}

// AddItem appends a line for productID or, when one exists, adds qty to it.
// Quantities below 1 default to 1.
func (r *CartRepo) AddItem(cartID, productID, qty int) (domain.Cart, error) {
	if qty < 1 {
		qty = 1
	}
	return r.mutate(cartID, func(cart *domain.Cart) error {
		if _, err := r.products.Get(productID); err != nil {
			return err
		}
		if line := cart.Line(productID); line != nil {
			line.Quantity += qty
		} else {
			cart.Lines = append(cart.Lines, domain.CartLine{ProductID: productID, Quantity: qty})
		}
		return nil
	})
}

// SetItemQty overwrites the quantity of an existing line. Zero is a valid
// quantity; the line stays until removed explicitly.
func (r *CartRepo) SetItemQty(cartID, productID, qty int) (domain.Cart, error) {
	if qty < 0 {
		return domain.Cart{}, domain.InvalidField("quantity", "must be zero or more")
	}
	return r.mutate(cartID, func(cart *domain.Cart) error {
		line := cart.Line(productID)
		if line == nil {
			return domain.ErrLineNotFound
		}
		line.Quantity = qty
		return nil
	})
}

func (r *CartRepo) RemoveItem(cartID, productID int) (domain.Cart, error) {
	return r.mutate(cartID, func(cart *domain.Cart) error {
		kept := cart.Lines[:0:0]
		for _, line := range cart.Lines {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		if len(kept) == len(cart.Lines) {
			return domain.ErrLineNotFound
		}
		cart.Lines = kept
		return nil
	})
}

// ReplaceItems swaps the whole line sequence. Every entry must carry a
// positive product id and a quantity of zero or more, or nothing changes.
func (r *CartRepo) ReplaceItems(cartID int, lines []domain.CartLine) (domain.Cart, error) {
	for _, line := range lines {
		if line.ProductID < 1 {
			return domain.Cart{}, domain.InvalidField("product", "must be a positive id")
		}
		if line.Quantity < 0 {
			return domain.Cart{}, domain.InvalidField("quantity", "must be zero or more")
		}
	}
	return r.mutate(cartID, func(cart *domain.Cart) error {
		if lines == nil {
			lines = []domain.CartLine{}
		}
		cart.Lines = lines
		return nil
	})
}

func (r *CartRepo) Clear(cartID int) (domain.Cart, error) {
	return r.mutate(cartID, func(cart *domain.Cart) error {
		cart.Lines = []domain.CartLine{}
		return nil
	})
}

// Delete removes a cart entirely. Missing ids report false, mirroring
// product deletion.
func (r *CartRepo) Delete(cartID int) (bool, error) {
	err := r.store.Update(store.Carts, func(records []json.RawMessage) ([]json.RawMessage, error) {
		carts, err := decode[domain.Cart](store.Carts, records)
		if err != nil {
			return nil, err
		}
		kept := carts[:0:0]
		for _, c := range carts {
			if c.ID != cartID {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(carts) {
			return nil, errUnchanged
		}
		return encode(store.Carts, kept)
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// mutate runs fn against the cart inside the carts collection's critical
// section and persists the result. fn errors leave the collection untouched.
func (r *CartRepo) mutate(cartID int, fn func(cart *domain.Cart) error) (domain.Cart, error) {
	var out domain.Cart
	err := r.store.Update(store.Carts, func(records []json.RawMessage) ([]json.RawMessage, error) {
		carts, err := decode[domain.Cart](store.Carts, records)
		if err != nil {
			return nil, err
		}
		idx := -1
		for i, c := range carts {
			if c.ID == cartID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, domain.ErrCartNotFound
		}
		if err := fn(&carts[idx]); err != nil {
			return nil, err
		}
		if carts[idx].Lines == nil {
			carts[idx].Lines = []domain.CartLine{}
		}
		out = carts[idx]
		return encode(store.Carts, carts)
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return out, nil
}
