package app

import (
	"fmt"
	"math/rand"

	"rhodes-todo/model"
)

// NoStockName is recorded for a draw against an empty catalog.
const NoStockName = "No stock"

// Rarity tiers by item cost.
const (
	RarityCommon    = 3
	RarityRare      = 4
	RarityEpic      = 5
	RarityLegendary = 6
)

// GachaResult describes one draw. Item is nil when NoStock is set.
type GachaResult struct {
	Item    *model.StoreItem
	Rarity  int
	NoStock bool
	Record  model.PurchaseRecord
	Delta   int
}

// RarityFor maps an item cost to its rarity tier.
func RarityFor(cost int) int {
	switch {
	case cost >= 2000:
		return RarityLegendary
	case cost >= 1000:
		return RarityEpic
	case cost >= 500:
		return RarityRare
	default:
		return RarityCommon
	}
}

// Draw picks one item with weight k/cost. Items costing zero or less are
// skipped. It returns false when nothing can be drawn.
func Draw(r *rand.Rand, k float64, catalog []model.StoreItem) (model.StoreItem, bool) {
	pool := make([]model.StoreItem, 0, len(catalog))
	weights := make([]float64, 0, len(catalog))
	total := 0.0
	for _, it := range catalog {
		if it.Cost <= 0 {
			continue
		}
		w := k / float64(it.Cost)
		pool = append(pool, it)
		weights = append(weights, w)
		total += w
	}
	if len(pool) == 0 {
		return model.StoreItem{}, false
	}

	roll := r.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if roll < acc {
			return pool[i], true
		}
	}
	// Float rounding can leave roll at the upper edge.
	return pool[len(pool)-1], true
}

// Gacha spends cost on a weighted random reward from the store catalog.
// The cost is taken before the draw and is not refunded when the catalog
// has nothing to draw.
func (s *Service) Gacha(cost int) (GachaResult, error) {
	if cost <= 0 {
		return GachaResult{}, fmt.Errorf("%w: %d", ErrInvalidCost, cost)
	}
	if !s.ledger.CanAfford(cost) {
		s.log.Debug("gacha rejected", "cost", cost, "balance", s.ledger.Balance())
		return GachaResult{}, InsufficientFundsError{Cost: cost, Balance: s.ledger.Balance()}
	}

	res := GachaResult{Delta: s.ledger.Debit(cost)}
	item, ok := Draw(s.rng, s.gachaWeight, s.state.StoreItems)
	if !ok {
		res.NoStock = true
		res.Record = s.appendPurchase(NoStockName, cost, true)
		s.log.Info("gacha draw without stock", "cost", cost)
		return res, nil
	}

	res.Item = &item
	res.Rarity = RarityFor(item.Cost)
	res.Record = s.appendPurchase(item.Name, cost, true)
	s.log.Info("gacha draw", "cost", cost, "item", item.Name, "rarity", res.Rarity)
	return res, nil
}
