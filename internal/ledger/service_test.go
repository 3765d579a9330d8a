package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

func TestService_Upsert(t *testing.T) {
	clientID := uuid.New()

	type testCase struct {
		name      string
		rec       ledger.Record
		setupMock func(r *ledger.MockRepository, tx *ledger.MockTx)
		wantErr   error
		wantNewID bool
	}

	tests := []testCase{
		{
			name: "NewClientGetsID",
			rec:  &ledger.Client{Name: "Ana"},
			setupMock: func(r *ledger.MockRepository, tx *ledger.MockTx) {
				r.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantNewID: true,
		},
		{
			name: "TransactionForMissingClient",
			rec:  &ledger.Transaction{ClientID: clientID, Amount: decimal.NewFromInt(10)},
			setupMock: func(r *ledger.MockRepository, tx *ledger.MockTx) {
				r.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Get(gomock.Any(), ledger.KindClient, clientID).Return(nil, ledger.ErrNotFound)
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: ledger.ErrNotFound,
		},
		{
			name: "StoreFailureIsPersistence",
			rec:  &ledger.Sale{Amount: decimal.NewFromInt(3)},
			setupMock: func(r *ledger.MockRepository, tx *ledger.MockTx) {
				r.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: ledger.ErrPersistence,
		},
		{
			name: "CommitFailureIsPersistence",
			rec:  &ledger.Product{Name: "Clavos"},
			setupMock: func(r *ledger.MockRepository, tx *ledger.MockTx) {
				r.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Commit().Return(errors.New("database is locked"))
				tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: ledger.ErrPersistence,
		},
		{
			name: "BeginFailureIsPersistence",
			rec:  &ledger.Creditor{Name: "Mayorista"},
			setupMock: func(r *ledger.MockRepository, _ *ledger.MockTx) {
				r.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("no connection"))
			},
			wantErr: ledger.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tx := ledger.NewMockTx(ctrl)
			tt.setupMock(repo, tx)

			svc := ledger.NewService(repo)
			got, err := svc.Upsert(context.Background(), tt.rec)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				assert.Equal(t, uuid.Nil, tt.rec.RecordID())

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.RecordID())
		})
	}
}

func TestService_Upsert_Nil(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := ledger.NewService(ledger.NewMockRepository(ctrl))

	_, err := svc.Upsert(context.Background(), nil)
	assert.ErrorIs(t, err, ledger.ErrUnknownKind)
}

func TestService_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := ledger.NewService(ledger.NewMockRepository(ctrl))
	ctx := context.Background()

	_, err := svc.Get(ctx, ledger.Kind("invoices"), uuid.New())
	assert.ErrorIs(t, err, ledger.ErrUnknownKind)

	_, err = svc.All(ctx, ledger.Kind(""))
	assert.ErrorIs(t, err, ledger.ErrUnknownKind)

	assert.ErrorIs(t, svc.Delete(ctx, ledger.Kind("people"), uuid.New()), ledger.ErrUnknownKind)
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		kind      ledger.Kind
		setupMock func(tx *ledger.MockTx)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "ClientCascadesTransactions",
			kind: ledger.KindClient,
			setupMock: func(tx *ledger.MockTx) {
				gomock.InOrder(
					tx.EXPECT().Delete(gomock.Any(), ledger.KindClient, id).Return(nil),
					tx.EXPECT().DeleteByParent(gomock.Any(), ledger.KindTransaction, id).Return(int64(3), nil),
					tx.EXPECT().Commit().Return(nil),
				)
			},
		},
		{
			name: "CreditorCascadesCreditorTransactions",
			kind: ledger.KindCreditor,
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().Delete(gomock.Any(), ledger.KindCreditor, id).Return(nil)
				tx.EXPECT().DeleteByParent(gomock.Any(), ledger.KindCreditorTransaction, id).Return(int64(0), nil)
				tx.EXPECT().Commit().Return(nil)
			},
		},
		{
			name: "ExpenseHasNoCascade",
			kind: ledger.KindExpense,
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().Delete(gomock.Any(), ledger.KindExpense, id).Return(nil)
				tx.EXPECT().Commit().Return(nil)
			},
		},
		{
			name: "Missing",
			kind: ledger.KindProduct,
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().Delete(gomock.Any(), ledger.KindProduct, id).Return(ledger.ErrNotFound)
			},
			wantErr: ledger.ErrNotFound,
		},
		{
			name: "CascadeFailureRollsBack",
			kind: ledger.KindClient,
			setupMock: func(tx *ledger.MockTx) {
				tx.EXPECT().Delete(gomock.Any(), ledger.KindClient, id).Return(nil)
				tx.EXPECT().DeleteByParent(gomock.Any(), ledger.KindTransaction, id).Return(int64(0), errors.New("io error"))
			},
			wantErr: ledger.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tx := ledger.NewMockTx(ctrl)

			repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
			tx.EXPECT().Rollback().Return(nil)
			tt.setupMock(tx)

			err := ledger.NewService(repo).Delete(context.Background(), tt.kind, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_ClientBalance(t *testing.T) {
	clientID := uuid.New()

	type testCase struct {
		name      string
		setupMock func(m *ledger.MockRepository)
		want      decimal.Decimal
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "SumsEntries",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().ListTransactions(gomock.Any(), clientID).Return([]*ledger.Transaction{
					{Amount: decimal.NewFromInt(50)},
					{Amount: decimal.NewFromInt(-20)},
					{Amount: decimal.RequireFromString("0.25")},
				}, nil)
			},
			want: decimal.RequireFromString("30.25"),
		},
		{
			name: "NoEntries",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().ListTransactions(gomock.Any(), clientID).Return(nil, nil)
			},
			want: decimal.Zero,
		},
		{
			name: "RepoError",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().ListTransactions(gomock.Any(), clientID).Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := ledger.NewService(repo).ClientBalance(context.Background(), clientID)
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrPersistence)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestService_SellFromInventory_InsufficientStockWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	productID := uuid.New()
	repo := ledger.NewMockRepository(ctrl)
	tx := ledger.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Get(gomock.Any(), ledger.KindProduct, productID).
		Return(&ledger.Product{ID: productID, Name: "Tornillos", Price: decimal.NewFromInt(1), Quantity: 2}, nil)
	tx.EXPECT().Rollback().Return(nil)

	_, err := ledger.NewService(repo).SellFromInventory(context.Background(), ledger.InventorySale{
		ProductID: productID,
		Quantity:  3,
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)
}

func TestService_SellFromInventory_InvalidQuantity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := ledger.NewService(ledger.NewMockRepository(ctrl))

	for _, q := range []int64{0, -1} {
		_, err := svc.SellFromInventory(context.Background(), ledger.InventorySale{ProductID: uuid.New(), Quantity: q})
		assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
	}
}

func TestService_RecordExpense_WithCreditor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creditorID := uuid.New()
	date := time.Date(2024, 5, 2, 15, 4, 0, 0, time.UTC)

	repo := ledger.NewMockRepository(ctrl)
	tx := ledger.NewMockTx(ctrl)

	var written []ledger.Record

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Get(gomock.Any(), ledger.KindCreditor, creditorID).Return(&ledger.Creditor{ID: creditorID}, nil)
	tx.EXPECT().Upsert(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, r ledger.Record) error {
		written = append(written, r)
		return nil
	})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	res, err := ledger.NewService(repo).RecordExpense(context.Background(), &ledger.Expense{
		Amount:      decimal.NewFromInt(40),
		Category:    "Supplies",
		Description: "bolsas",
		Date:        date,
		CreditorID:  &creditorID,
	})
	require.NoError(t, err)
	require.Len(t, written, 2)

	require.NotNil(t, res.Payment)
	assert.Equal(t, creditorID, res.Payment.CreditorID)
	assert.True(t, res.Payment.Amount.Equal(decimal.NewFromInt(-40)))
	assert.Equal(t, "Payment for expense: bolsas", res.Payment.Description)
	assert.Equal(t, ledger.Day(date), res.Payment.Date)
	assert.Equal(t, res.Expense.Date, res.Payment.Date)
}

func TestService_RecordExpense_EditDoesNotSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creditorID := uuid.New()
	repo := ledger.NewMockRepository(ctrl)
	tx := ledger.NewMockTx(ctrl)

	repo.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Upsert(gomock.Any(), gomock.AssignableToTypeOf(&ledger.Expense{})).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil)

	res, err := ledger.NewService(repo).RecordExpense(context.Background(), &ledger.Expense{
		ID:         uuid.New(),
		Amount:     decimal.NewFromInt(60),
		CreditorID: &creditorID,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Payment)
}
