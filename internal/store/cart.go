package store

import (
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/deepak9783/Eatsy/internal/domain"
	"github.com/deepak9783/Eatsy/pkg/logger"
)

// stashKey names the cart slot inside the session stash.
const stashKey = "cart"

// Stash is session-scoped storage for the cart: entries live for the
// browsing session and expire on their own. Implemented by
// internal/infrastructure/cache.
type Stash interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

// CartStore owns the list of items the shopper intends to purchase. All
// operations are synchronous, local and total: they cannot fail and return
// nothing; the resulting state is what subscribers observe.
type CartStore struct {
	store       *Store[domain.Cart]
	stash       Stash
	maxQuantity int
}

// CartOption configures a CartStore.
type CartOption func(*CartStore)

// WithStash mirrors the cart into a session-scoped stash on every mutation
// and rehydrates from it at construction.
func WithStash(stash Stash) CartOption {
	return func(c *CartStore) { c.stash = stash }
}

// WithMaxQuantity caps the per-item quantity. Zero means no cap.
func WithMaxQuantity(max int) CartOption {
	return func(c *CartStore) { c.maxQuantity = max }
}

// NewCartStore returns an empty cart store, rehydrated from the stash when
// one is configured and holds a cart.
func NewCartStore(opts ...CartOption) *CartStore {
	c := &CartStore{
		store: New(domain.Cart{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rehydrate()
	return c
}

// AddToCart appends the item; if an item with the same id is already in the
// cart, the quantities are merged instead. A non-positive quantity on the
// incoming item counts as 1.
func (c *CartStore) AddToCart(item domain.CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	c.update(func(cart domain.Cart) domain.Cart {
		next := cart.Clone()
		if i := next.Find(item.ID); i >= 0 {
			next.Items[i].Quantity = c.clamp(next.Items[i].Quantity + item.Quantity)
			return next
		}
		item.Quantity = c.clamp(item.Quantity)
		next.Items = append(next.Items, item)
		return next
	})
}

// IncrementQuantity raises the quantity of the item with the given id by
// one. Absent id is a no-op.
func (c *CartStore) IncrementQuantity(id string) {
	c.update(func(cart domain.Cart) domain.Cart {
		i := cart.Find(id)
		if i < 0 {
			return cart
		}
		next := cart.Clone()
		next.Items[i].Quantity = c.clamp(next.Items[i].Quantity + 1)
		return next
	})
}

// DecrementQuantity lowers the quantity of the item with the given id by
// one, but never below 1. At quantity 1, and for an absent id, it is a
// no-op.
func (c *CartStore) DecrementQuantity(id string) {
	c.update(func(cart domain.Cart) domain.Cart {
		i := cart.Find(id)
		if i < 0 || cart.Items[i].Quantity <= 1 {
			return cart
		}
		next := cart.Clone()
		next.Items[i].Quantity--
		return next
	})
}

// RemoveFromTheCart deletes the item with the given id entirely, regardless
// of quantity. Absent id is a no-op.
func (c *CartStore) RemoveFromTheCart(id string) {
	c.update(func(cart domain.Cart) domain.Cart {
		i := cart.Find(id)
		if i < 0 {
			return cart
		}
		next := cart.Clone()
		next.Items = append(next.Items[:i], next.Items[i+1:]...)
		return next
	})
}

// ClearCart empties the cart unconditionally.
func (c *CartStore) ClearCart() {
	c.update(func(domain.Cart) domain.Cart {
		return domain.Cart{}
	})
}

// Cart returns the current cart state.
func (c *CartStore) Cart() domain.Cart {
	return c.store.Get()
}

// TotalAmount returns the derived cart total.
func (c *CartStore) TotalAmount() decimal.Decimal {
	return c.store.Get().TotalAmount()
}

// Subscribe registers fn to observe every committed cart state.
func (c *CartStore) Subscribe(fn func(domain.Cart)) (cancel func()) {
	return c.store.Subscribe(fn)
}

func (c *CartStore) update(fn func(domain.Cart) domain.Cart) {
	next := c.store.Update(fn)
	c.persist(next)
}

func (c *CartStore) clamp(quantity int) int {
	if c.maxQuantity > 0 && quantity > c.maxQuantity {
		return c.maxQuantity
	}
	return quantity
}

func (c *CartStore) persist(cart domain.Cart) {
	if c.stash == nil {
		return
	}
	if len(cart.Items) == 0 {
		c.stash.Delete(stashKey)
		return
	}
	data, err := json.Marshal(cart)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to stash cart")
		return
	}
	c.stash.Set(stashKey, data)
}

func (c *CartStore) rehydrate() {
	if c.stash == nil {
		return
	}
	data, ok := c.stash.Get(stashKey)
	if !ok {
		return
	}
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		logger.Warn().Err(err).Msg("discarding unreadable stashed cart")
		c.stash.Delete(stashKey)
		return
	}
	c.store.Update(func(domain.Cart) domain.Cart { return cart })
}
