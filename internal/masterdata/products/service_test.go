package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{products: make(map[int64]Product), nextID: 1}
}

func (m *mockRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) ExistsSKU(ctx context.Context, sku string, excludeID int64) (bool, error) {
	for id, p := range m.products {
		if p.SKU == sku && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) List(ctx context.Context, f ListFilters, limit, offset int) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		if f.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Insert(ctx context.Context, p Product) (int64, error) {
	id := m.nextID
	m.nextID++
	p.ID = id
	m.products[id] = p
	return id, nil
}

func (m *mockRepo) Update(ctx context.Context, p Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return ErrNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockRepo) SetActive(ctx context.Context, id int64, active bool) error {
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Active = active
	m.products[id] = p
	return nil
}

func TestCreateNormalizesSKU(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Input{
		SKU:      "  km-batang-a ",
		Name:     "Kulit Manis Batang Grade A",
		Category: "bahan_baku",
		Unit:     "kg",
		Active:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "KM-BATANG-A", created.SKU)
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	input := Input{SKU: "KM-01", Name: "Bubuk Kayu Manis", Category: "jadi", Unit: "kg", Active: true}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestUpdateAllowsKeepingOwnSKU(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Input{SKU: "KM-02", Name: "Minyak Atsiri", Category: "jadi", Unit: "liter", Active: true})
	require.NoError(t, err)

	err = svc.Update(context.Background(), created.ID, Input{SKU: "KM-02", Name: "Minyak Atsiri Kayu Manis", Category: "jadi", Unit: "liter", Active: true})
	assert.NoError(t, err)
}

func TestDeactivateHidesFromActiveList(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Input{SKU: "KM-03", Name: "Cassia Stick", Category: "jadi", Unit: "kg", Active: true})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	items, _, err := svc.List(context.Background(), ListFilters{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, items)
}
