package handlers

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mahammedjunedattar/cloth-invent/internal/models"
	"github.com/mahammedjunedattar/cloth-invent/internal/repository"
)

// memItems is an in-memory ItemStore with the same error contract as the
// Mongo repository.
type memItems struct {
	mu         sync.Mutex
	items      []*models.Item
	statsCalls int
	// duringStats runs inside Stats, before the result is returned.
	duringStats func()
}

func (m *memItems) live(storeID string) []*models.Item {
	var out []*models.Item
	for _, it := range m.items {
		if it.StoreID == storeID && it.DeletedAt == nil {
			out = append(out, it)
		}
	}
	return out
}

func (m *memItems) find(storeID, sku string) (*models.Item, int) {
	for _, it := range m.live(storeID) {
		for i := range it.Variants {
			if it.Variants[i].SKU == sku {
				return it, i
			}
		}
	}
	return nil, -1
}

func (m *memItems) Create(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sku := range item.SKUs() {
		if it, _ := m.find(item.StoreID, sku); it != nil {
			return repository.ErrDuplicateSKU
		}
	}
	item.ID = primitive.NewObjectID()
	stored := *item
	stored.Variants = slices.Clone(item.Variants)
	m.items = append(m.items, &stored)
	return nil
}

func (m *memItems) ExistingSKUs(_ context.Context, storeID string, skus []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, sku := range skus {
		if it, _ := m.find(storeID, sku); it != nil && !slices.Contains(out, sku) {
			out = append(out, sku)
		}
	}
	return out, nil
}

func (m *memItems) FindBySKU(_ context.Context, storeID, sku string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, _ := m.find(storeID, sku)
	if it == nil {
		return nil, repository.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *memItems) List(_ context.Context, storeID string, f repository.ItemFilter) ([]models.Item, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Item
	for _, it := range m.live(storeID) {
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, *it)
	}

	total := int64(len(matched))
	start := min((f.Page-1)*f.Limit, len(matched))
	end := min(start+f.Limit, len(matched))
	return matched[start:end], total, nil
}

func (m *memItems) AdjustStock(_ context.Context, storeID, sku string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, i := m.find(storeID, sku)
	if it == nil {
		return 0, repository.ErrNotFound
	}
	if it.Variants[i].Quantity+delta < 0 {
		return 0, repository.ErrInsufficientStock
	}
	it.Variants[i].Quantity += delta
	return it.Variants[i].Quantity, nil
}

func (m *memItems) ReplaceVariant(_ context.Context, storeID, sku string, v models.Variant) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, i := m.find(storeID, sku)
	if it == nil {
		return nil, repository.ErrNotFound
	}
	v.SKU = sku
	it.Variants[i] = v
	cp := *it
	return &cp, nil
}

func (m *memItems) RemoveVariant(_ context.Context, storeID, sku string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, i := m.find(storeID, sku)
	if it == nil {
		return repository.ErrNotFound
	}
	it.Variants = slices.Delete(it.Variants, i, i+1)
	if len(it.Variants) == 0 {
		now := time.Now()
		it.DeletedAt = &now
	}
	return nil
}

func (m *memItems) Stats(_ context.Context, storeID string) (*models.InventoryStats, error) {
	if m.duringStats != nil {
		m.duringStats()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statsCalls++
	stats := &models.InventoryStats{
		SizeCounts:  map[string]int64{},
		ColorCounts: map[string]int64{},
	}
	for _, it := range m.live(storeID) {
		for _, v := range it.Variants {
			if _, ok := stats.SizeCounts[v.Size]; !ok {
				stats.Sizes = append(stats.Sizes, v.Size)
			}
			if _, ok := stats.ColorCounts[v.Color]; !ok {
				stats.Colors = append(stats.Colors, v.Color)
			}
			stats.SizeCounts[v.Size] += v.Quantity
			stats.ColorCounts[v.Color] += v.Quantity
		}
	}
	return stats, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *memAudit) Record(_ context.Context, entry models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.users == nil {
		m.users = map[string]*models.User{}
	}
	email := strings.ToLower(user.Email)
	if _, ok := m.users[email]; ok {
		return repository.ErrUserExists
	}
	user.ID = primitive.NewObjectID()
	user.Email = email
	cp := *user
	m.users[email] = &cp
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
