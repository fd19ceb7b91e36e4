package production

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
	runs      map[int64]*Run
	lines     map[int64][]Line
	nextID    int64
	lastQuery ListQuery
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		runs:   make(map[int64]*Run),
		lines:  make(map[int64][]Line),
		nextID: 1,
	}
}

type mockTxRepo struct {
	mock *mockRepository
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &mockTxRepo{mock: m})
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Run, []Line, error) {
	run, ok := m.runs[id]
	if !ok {
		return Run{}, nil, ErrNotFound
	}
	return *run, m.lines[id], nil
}

func (m *mockRepository) List(ctx context.Context, q ListQuery) ([]Run, map[int64][]Line, error) {
	m.lastQuery = q
	var out []Run
	for _, run := range m.runs {
		if q.Status != nil && run.Status != *q.Status {
			continue
		}
		out = append(out, *run)
	}
	return out, m.lines, nil
}

func (t *mockTxRepo) Insert(ctx context.Context, run Run) (int64, error) {
	id := t.mock.nextID
	t.mock.nextID++
	stored := run
	stored.ID = id
	t.mock.runs[id] = &stored
	return id, nil
}

func (t *mockTxRepo) InsertLine(ctx context.Context, line Line) error {
	t.mock.lines[line.RunID] = append(t.mock.lines[line.RunID], line)
	return nil
}

func (t *mockTxRepo) DeleteLines(ctx context.Context, runID int64) error {
	delete(t.mock.lines, runID)
	return nil
}

func (t *mockTxRepo) UpdateHeader(ctx context.Context, run Run) error {
	stored, ok := t.mock.runs[run.ID]
	if !ok {
		return ErrNotFound
	}
	*stored = run
	return nil
}

func (t *mockTxRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	stored, ok := t.mock.runs[id]
	if !ok {
		return ErrNotFound
	}
	stored.Status = status
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
		TypeName: "Penggilingan",
		Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Inputs: []LineInput{
			{ProductID: 1, Qty: "100", UnitCost: "15000"},
		},
		Outputs: []LineInput{
			{ProductID: 2, Qty: "80", UnitCost: "0"},
		},
	}
}

func TestCreateStoresDraftWithLines(t *testing.T) {
	repo := newMockRepository()
	audit := &mockAudit{}
	svc := NewService(repo, audit, nil)

	created, err := svc.Create(context.Background(), validInput(), 2)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, created.Status)
	assert.Contains(t, created.Number, "PR-")
	require.Len(t, repo.lines[created.ID], 2)
	assert.Equal(t, KindInput, repo.lines[created.ID][0].Kind)
	assert.Equal(t, KindOutput, repo.lines[created.ID][1].Kind)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "PRODUCTION_CREATE", audit.logs[0].Action)
}

func TestCreateRequiresInputsAndOutputs(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil)

	noInputs := validInput()
	noInputs.Inputs = nil
	_, err := svc.Create(context.Background(), noInputs, 1)
	assert.ErrorIs(t, err, ErrValidation)

	noOutputs := validInput()
	noOutputs.Outputs = nil
	_, err = svc.Create(context.Background(), noOutputs, 1)
	assert.ErrorIs(t, err, ErrValidation)

	badQty := validInput()
	badQty.Inputs[0].Qty = "banyak"
	_, err = svc.Create(context.Background(), badQty, 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPostRequiresDraft(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Post(context.Background(), created.ID, 1))

	assert.Equal(t, StatusPosted, repo.runs[created.ID].Status)
	assert.ErrorIs(t, svc.Post(context.Background(), created.ID, 1), ErrInvalidState)
}

func TestCancelKeepsRecord(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), created.ID, 1))

	assert.Equal(t, StatusCancelled, repo.runs[created.ID].Status)
	assert.ErrorIs(t, svc.Cancel(context.Background(), created.ID, 1), ErrInvalidState)
}

func TestListForLedgerSplitsInputsAndOutputs(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), validInput(), 1)
	require.NoError(t, err)
	require.NoError(t, svc.Post(context.Background(), created.ID, 1))

	status := ledger.StatusPosted
	records, err := svc.ListForLedger(context.Background(), ledger.SourceQuery{
		Status:             &status,
		CounterpartySubstr: "giling",
	})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "Penggilingan", records[0].TypeName)
	require.Len(t, records[0].Inputs, 1)
	require.Len(t, records[0].Outputs, 1)
	assert.Equal(t, "100", records[0].Inputs[0].Qty)
	assert.Equal(t, "80", records[0].Outputs[0].Qty)

	assert.Equal(t, "giling", repo.lastQuery.TypeNameSubstr)
	require.NotNil(t, repo.lastQuery.Status)
	assert.Equal(t, StatusPosted, *repo.lastQuery.Status)
}
