package services

import (
	"context"
	"path/filepath"
	"testing"

	"kopilka/internal/core"
	"kopilka/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *LedgerService {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "kopilka.db"))
	require.NoError(t, err, "failed to open test database")

	ledger := NewLedgerService(store, nil)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func collect(t *testing.T, seq func(yield func(core.CategoryAmount, error) bool)) []core.CategoryAmount {
	t.Helper()
	var out []core.CategoryAmount
	for entry, err := range seq {
		require.NoError(t, err)
		out = append(out, entry)
	}
	return out
}

func TestRegisterAndVerifyCredentials(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))

	assert.True(t, ledger.VerifyCredentials(ctx, "tester", "password"))
	assert.False(t, ledger.VerifyCredentials(ctx, "tester", "wrong"))
	assert.False(t, ledger.VerifyCredentials(ctx, "nobody", "password"))
}

func TestRegisterDuplicate(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, true, "tester", "password"))

	err := ledger.RegisterUser(ctx, 1, false, "someone", "secret")
	assert.ErrorIs(t, err, core.ErrAlreadyExists)

	// The original registration is intact.
	assert.True(t, ledger.VerifyCredentials(ctx, "tester", "password"))
	exists, err := ledger.UserExistsByName(ctx, "someone")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTouchActivity(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))

	touched, err := ledger.TouchActivity(ctx, 1)
	require.NoError(t, err)
	assert.True(t, touched)

	touched, err = ledger.TouchActivity(ctx, 404)
	require.NoError(t, err)
	assert.False(t, touched)
}

func TestResolveOwner(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 7, false, "tester", "password"))

	id, err := ledger.ResolveOwner(ctx, core.OwnerID(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	id, err = ledger.ResolveOwner(ctx, core.OwnerName("tester"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = ledger.ResolveOwner(ctx, core.OwnerName("nobody"))
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = ledger.ResolveOwner(ctx, core.OwnerRef{})
	assert.Error(t, err)
}

func TestResolveCategory(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	codename, err := ledger.ResolveCategory(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, "products", codename)

	codename, err = ledger.ResolveCategory(ctx, "Продукты")
	require.NoError(t, err)
	assert.Equal(t, "products", codename)

	_, err = ledger.ResolveCategory(ctx, "groceries")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCategoryLabel(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	label, err := ledger.CategoryLabel(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, "🛒 Продукты", label)

	// Second lookup is served from the cache and must agree.
	again, err := ledger.CategoryLabel(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, label, again)

	_, err = ledger.CategoryLabel(ctx, "groceries")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRecordExpense(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))

	ref, err := ledger.RecordExpense(ctx, core.OwnerID(1), 5.0, "products")
	require.NoError(t, err)
	assert.Greater(t, ref, int64(0))

	// By username as well.
	_, err = ledger.RecordExpense(ctx, core.OwnerName("tester"), 2.5, "coffee")
	require.NoError(t, err)
}

func TestRecordExpenseRejectsBadInput(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))

	_, err := ledger.RecordExpense(ctx, core.OwnerID(1), 0, "products")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = ledger.RecordExpense(ctx, core.OwnerID(1), -5, "products")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = ledger.RecordExpense(ctx, core.OwnerID(1), 5, "groceries")
	assert.ErrorIs(t, err, core.ErrIntegrity)

	_, err = ledger.RecordExpense(ctx, core.OwnerName("nobody"), 5, "products")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSumExpensesAllCategories(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))
	_, err := ledger.RecordExpense(ctx, core.OwnerID(1), 5.0, "products")
	require.NoError(t, err)
	_, err = ledger.RecordExpense(ctx, core.OwnerID(1), 5.0, "books")
	require.NoError(t, err)

	got := collect(t, ledger.SumExpenses(ctx, core.OwnerID(1), core.WindowAll, ""))

	// Catalog order, labels not codenames, empty categories skipped.
	assert.Equal(t, []core.CategoryAmount{
		{Category: "🛒 Продукты", Amount: 5.0},
		{Category: "📚 Книги", Amount: 5.0},
	}, got)
}

func TestSumExpensesByUsername(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))
	_, err := ledger.RecordExpense(ctx, core.OwnerID(1), 5.0, "products")
	require.NoError(t, err)

	got := collect(t, ledger.SumExpenses(ctx, core.OwnerName("tester"), core.WindowAll, ""))
	require.Len(t, got, 1)
	assert.Equal(t, core.CategoryAmount{Category: "🛒 Продукты", Amount: 5.0}, got[0])
}

func TestSumExpensesWindows(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))
	_, err := ledger.RecordExpense(ctx, core.OwnerID(1), 5.0, "products")
	require.NoError(t, err)

	// A just-inserted expense falls inside every window.
	for _, w := range []core.Window{core.WindowAll, core.WindowMonth, core.WindowWeek, core.WindowDay} {
		got := collect(t, ledger.SumExpenses(ctx, core.OwnerID(1), w, "products"))
		require.Len(t, got, 1, "window %s", w)
		assert.Equal(t, "🛒 Продукты", got[0].Category, "window %s", w)
		assert.InDelta(t, 5.0, got[0].Amount, 1e-9, "window %s", w)
	}
}

func TestSumExpensesFilteredEmitsZero(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))

	// The filtered form emits its single entry even with no rows.
	got := collect(t, ledger.SumExpenses(ctx, core.OwnerID(1), core.WindowAll, "books"))
	require.Len(t, got, 1)
	assert.Equal(t, core.CategoryAmount{Category: "📚 Книги", Amount: 0}, got[0])
}

func TestSumExpensesNotRestartable(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))
	_, err := ledger.RecordExpense(ctx, core.OwnerID(1), 5.0, "products")
	require.NoError(t, err)

	seq := ledger.SumExpenses(ctx, core.OwnerID(1), core.WindowAll, "")
	first := collect(t, seq)
	require.Len(t, first, 1)

	second := collect(t, seq)
	assert.Empty(t, second, "a consumed sequence must not restart")
}

func TestSumExpensesUnknownOwner(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	var got error
	for _, err := range ledger.SumExpenses(ctx, core.OwnerName("nobody"), core.WindowAll, "") {
		got = err
		break
	}
	assert.ErrorIs(t, got, core.ErrNotFound)
}

func TestSumExpensesUnknownFilter(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, ledger.RegisterUser(ctx, 1, false, "tester", "password"))

	var got error
	for _, err := range ledger.SumExpenses(ctx, core.OwnerID(1), core.WindowAll, "groceries") {
		got = err
		break
	}
	assert.ErrorIs(t, got, core.ErrNotFound)
}
