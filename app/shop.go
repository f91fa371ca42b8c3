package app

import (
	"fmt"
	"strings"

	"rhodes-todo/model"
)

// InsufficientFundsError reports a purchase the balance cannot cover.
type InsufficientFundsError struct {
	Cost    int
	Balance int
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("need %d points, have %d", e.Cost, e.Balance)
}

func (e InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// PurchaseResult describes a successful purchase.
type PurchaseResult struct {
	Item   model.StoreItem
	Record model.PurchaseRecord
	Delta  int
}

// StoreItemInput carries the editable fields of a store item.
type StoreItemInput struct {
	Name        string
	Cost        int
	Description string
	Icon        string
}

func (s *Service) StoreItems() []model.StoreItem {
	return copySlice(s.state.StoreItems)
}

func (s *Service) PurchaseHistory() []model.PurchaseRecord {
	return copySlice(s.state.PurchaseHistory)
}

func (s *Service) AddStoreItem(in StoreItemInput) (model.StoreItem, error) {
	item, err := in.build("item_" + newID())
	if err != nil {
		return model.StoreItem{}, err
	}
	s.state.StoreItems = append(s.state.StoreItems, item)
	return item, nil
}

func (s *Service) UpdateStoreItem(id string, in StoreItemInput) (model.StoreItem, error) {
	idx := s.itemIndex(id)
	if idx == -1 {
		return model.StoreItem{}, ErrItemNotFound
	}
	item, err := in.build(id)
	if err != nil {
		return model.StoreItem{}, err
	}
	s.state.StoreItems[idx] = item
	return item, nil
}

func (s *Service) DeleteStoreItem(id string) error {
	idx := s.itemIndex(id)
	if idx == -1 {
		return ErrItemNotFound
	}
	s.state.StoreItems = append(s.state.StoreItems[:idx], s.state.StoreItems[idx+1:]...)
	return nil
}

// Purchase spends an item's cost when the balance covers it.
func (s *Service) Purchase(itemID string) (PurchaseResult, error) {
	idx := s.itemIndex(itemID)
	if idx == -1 {
		return PurchaseResult{}, ErrItemNotFound
	}
	item := s.state.StoreItems[idx]
	if !s.ledger.CanAfford(item.Cost) {
		s.log.Debug("purchase rejected", "item", item.Name, "cost", item.Cost, "balance", s.ledger.Balance())
		return PurchaseResult{}, InsufficientFundsError{Cost: item.Cost, Balance: s.ledger.Balance()}
	}

	delta := s.ledger.Debit(item.Cost)
	rec := s.appendPurchase(item.Name, item.Cost, false)
	s.log.Info("purchase", "item", item.Name, "cost", item.Cost)
	return PurchaseResult{Item: item, Record: rec, Delta: delta}, nil
}

// ResolveItemID maps an id, id prefix or exact item name to an item id.
func (s *Service) ResolveItemID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	ids := make([]string, len(s.state.StoreItems))
	for i, it := range s.state.StoreItems {
		if strings.EqualFold(it.Name, ref) {
			return it.ID, nil
		}
		ids[i] = it.ID
	}
	return resolvePrefix(ids, ref, ErrItemNotFound)
}

func (s *Service) appendPurchase(name string, cost int, gacha bool) model.PurchaseRecord {
	rec := model.PurchaseRecord{
		ID:        "buy_" + newID(),
		ItemName:  name,
		Cost:      cost,
		Timestamp: s.nowMillis(),
		IsGacha:   gacha,
	}
	s.state.PurchaseHistory = append(s.state.PurchaseHistory, rec)
	return rec
}

func (s *Service) itemIndex(id string) int {
	for i := range s.state.StoreItems {
		if s.state.StoreItems[i].ID == id {
			return i
		}
	}
	return -1
}

func (in StoreItemInput) build(id string) (model.StoreItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.StoreItem{}, ErrInvalidName
	}
	if in.Cost <= 0 {
		return model.StoreItem{}, fmt.Errorf("%w: %d", ErrInvalidCost, in.Cost)
	}
	return model.StoreItem{
		ID:          id,
		Name:        name,
		Cost:        in.Cost,
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
	}, nil
}
