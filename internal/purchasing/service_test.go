package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cassia-erp/cassia-erp/internal/ledger"
	"github.com/cassia-erp/cassia-erp/internal/shared"
)

type mockRepository struct {
	purchases map[int64]*Purchase
	items     map[int64][]Item
	nextID    int64
	lastQuery ListQuery
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		purchases: make(map[int64]*Purchase),
		items:     make(map[int64][]Item),
		nextID:    1,
	}
}

type mockTxRepo struct {
	mock *mockRepository
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &mockTxRepo{mock: m})
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Purchase, []Item, error) {
	p, ok := m.purchases[id]
	if !ok {
		return Purchase{}, nil, ErrNotFound
	}
	return *p, m.items[id], nil
}

func (m *mockRepository) List(ctx context.Context, q ListQuery) ([]Purchase, map[int64][]Item, error) {
	m.lastQuery = q
	var out []Purchase
	for _, p := range m.purchases {
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, m.items, nil
}

func (t *mockTxRepo) Insert(ctx context.Context, p Purchase) (int64, error) {
	id := t.mock.nextID
	t.mock.nextID++
	stored := p
	stored.ID = id
	t.mock.purchases[id] = &stored
	return id, nil
}

func (t *mockTxRepo) InsertItem(ctx context.Context, item Item) error {
	t.mock.items[item.PurchaseID] = append(t.mock.items[item.PurchaseID], item)
	return nil
}

func (t *mockTxRepo) DeleteItems(ctx context.Context, purchaseID int64) error {
	delete(t.mock.items, purchaseID)
	return nil
}

func (t *mockTxRepo) UpdateHeader(ctx context.Context, p Purchase) error {
	stored, ok := t.mock.purchases[p.ID]
	if !ok {
		return ErrNotFound
	}
	*stored = p
	return nil
}

func (t *mockTxRepo) UpdateStatus(ctx context.Context, id int64, status Status, total string) error {
	stored, ok := t.mock.purchases[id]
	if !ok {
		return ErrNotFound
	}
	stored.Status = status
	stored.Total = total
	return nil
}

type mockAudit struct {
	logs []shared.AuditLog
}

func (m *mockAudit) Record(ctx context.Context, log shared.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func validInput() CreateInput {
	return CreateInput{
		SupplierID: 1,
		Date:       time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Items: []ItemInput{
			{ProductID: 1, Qty: "10", UnitCost: "1000"},
			{ProductID: 2, Qty: "2.5", UnitCost: "4000"},
		},
	}
}

func TestCreateStoresDraftWithItems(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit, nil)

	created, err := svc.Create(context.Background(), validInput(), 7)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, created.Status)
	assert.NotEmpty(t, created.Number)
	assert.Len(t, repo.items[created.ID], 2)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "PURCHASE_CREATE", audit.logs[0].Action)
	assert.Equal(t, int64(7), audit.logs[0].ActorID)
}

func TestCreateRejectsInvalidItems(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	cases := map[string]CreateInput{
		"no items":         {SupplierID: 1, Date: time.Now()},
		"zero qty":         {SupplierID: 1, Date: time.Now(), Items: []ItemInput{{ProductID: 1, Qty: "0", UnitCost: "100"}}},
		"negative cost":    {SupplierID: 1, Date: time.Now(), Items: []ItemInput{{ProductID: 1, Qty: "1", UnitCost: "-5"}}},
		"unparsable qty":   {SupplierID: 1, Date: time.Now(), Items: []ItemInput{{ProductID: 1, Qty: "sepuluh", UnitCost: "100"}}},
		"missing product":  {SupplierID: 1, Date: time.Now(), Items: []ItemInput{{Qty: "1", UnitCost: "100"}}},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), input, 1)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPostComputesExactDecimalTotal(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Post(context.Background(), created.ID, 1))

	stored := repo.purchases[created.ID]
	assert.Equal(t, StatusPosted, stored.Status)
	assert.Equal(t, "20000", stored.Total) // 10×1000 + 2.5×4000
}

func TestPostRequiresDraft(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Post(context.Background(), created.ID, 1))

	assert.ErrorIs(t, svc.Post(context.Background(), created.ID, 1), ErrInvalidState)
}

func TestCancelKeepsRecord(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), created.ID, 1))

	stored := repo.purchases[created.ID]
	assert.Equal(t, StatusCancelled, stored.Status)

	assert.ErrorIs(t, svc.Cancel(context.Background(), created.ID, 1), ErrInvalidState)
}

func TestUpdateOnlyTouchesDrafts(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Post(context.Background(), created.ID, 1))

	err = svc.Update(context.Background(), created.ID, UpdateInput(validInput()), 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestListForLedgerMapsRecordsAndPushesQuery(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Post(context.Background(), created.ID, 1))

	status := ledger.StatusPosted
	productID := int64(1)
	records, err := svc.ListForLedger(context.Background(), ledger.SourceQuery{
		Status:             &status,
		CounterpartySubstr: "rahmat",
		ProductID:          &productID,
	})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Equal(t, ledger.StatusPosted, records[0].Status)
	assert.Len(t, records[0].Items, 2)
	assert.Equal(t, "10", records[0].Items[0].Qty)

	require.NotNil(t, repo.lastQuery.Status)
	assert.Equal(t, StatusPosted, *repo.lastQuery.Status)
	assert.Equal(t, "rahmat", repo.lastQuery.SupplierSubstr)
	require.NotNil(t, repo.lastQuery.ProductID)
	assert.Equal(t, int64(1), *repo.lastQuery.ProductID)
}
