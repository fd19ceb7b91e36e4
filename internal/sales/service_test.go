package sales

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
	sales     map[int64]*Sale
	items     map[int64][]Item
	nextID    int64
	lastQuery ListQuery
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sales:  make(map[int64]*Sale),
		items:  make(map[int64][]Item),
		nextID: 1,
	}
}

type mockTxRepo struct {
	mock *mockRepository
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &mockTxRepo{mock: m})
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Sale, []Item, error) {
	s, ok := m.sales[id]
	if !ok {
		return Sale{}, nil, ErrNotFound
	}
	return *s, m.items[id], nil
}

func (m *mockRepository) List(ctx context.Context, q ListQuery) ([]Sale, map[int64][]Item, error) {
	m.lastQuery = q
	var out []Sale
	for _, s := range m.sales {
		if q.Status != nil && s.Status != *q.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, m.items, nil
}

func (t *mockTxRepo) Insert(ctx context.Context, s Sale) (int64, error) {
	id := t.mock.nextID
	t.mock.nextID++
	stored := s
	stored.ID = id
	t.mock.sales[id] = &stored
	return id, nil
}

func (t *mockTxRepo) InsertItem(ctx context.Context, item Item) error {
	t.mock.items[item.SaleID] = append(t.mock.items[item.SaleID], item)
	return nil
}

func (t *mockTxRepo) DeleteItems(ctx context.Context, saleID int64) error {
	delete(t.mock.items, saleID)
	return nil
}

func (t *mockTxRepo) UpdateHeader(ctx context.Context, s Sale) error {
	stored, ok := t.mock.sales[s.ID]
	if !ok {
		return ErrNotFound
	}
	*stored = s
	return nil
}

func (t *mockTxRepo) UpdateStatus(ctx context.Context, id int64, status Status, total string) error {
	stored, ok := t.mock.sales[id]
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
		CustomerID: 3,
		Date:       time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		Items: []ItemInput{
			{ProductID: 1, Qty: "4", UnitPrice: "75000"},
			{ProductID: 2, Qty: "0.5", UnitPrice: "120000"},
		},
	}
}

func TestCreateStoresDraftWithItems(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit, nil)

	created, err := svc.Create(context.Background(), validInput(), 4)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, created.Status)
	assert.Contains(t, created.Number, "PJ-")
	assert.Len(t, repo.items[created.ID], 2)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "SALE_CREATE", audit.logs[0].Action)
}

func TestCreateRejectsInvalidItems(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	cases := map[string]CreateInput{
		"no items":         {CustomerID: 1, Date: time.Now()},
		"zero qty":         {CustomerID: 1, Date: time.Now(), Items: []ItemInput{{ProductID: 1, Qty: "0", UnitPrice: "100"}}},
		"negative price":   {CustomerID: 1, Date: time.Now(), Items: []ItemInput{{ProductID: 1, Qty: "1", UnitPrice: "-5"}}},
		"unparsable price": {CustomerID: 1, Date: time.Now(), Items: []ItemInput{{ProductID: 1, Qty: "1", UnitPrice: "mahal"}}},
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

	stored := repo.sales[created.ID]
	assert.Equal(t, StatusPosted, stored.Status)
	assert.Equal(t, "360000", stored.Total) // 4×75000 + 0.5×120000
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

	stored := repo.sales[created.ID]
	assert.Equal(t, StatusCancelled, stored.Status)

	assert.ErrorIs(t, svc.Cancel(context.Background(), created.ID, 1), ErrInvalidState)
}

func TestListForLedgerMapsRecordsAndPushesQuery(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Post(context.Background(), created.ID, 1))

	status := ledger.StatusPosted
	records, err := svc.ListForLedger(context.Background(), ledger.SourceQuery{
		Status:             &status,
		CounterpartySubstr: "toko",
	})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Len(t, records[0].Items, 2)
	assert.Equal(t, "75000", records[0].Items[0].UnitAmount)

	require.NotNil(t, repo.lastQuery.Status)
	assert.Equal(t, StatusPosted, *repo.lastQuery.Status)
	assert.Equal(t, "toko", repo.lastQuery.CustomerSubstr)
}
