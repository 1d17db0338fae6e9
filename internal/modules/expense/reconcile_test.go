package expense

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaldesk/internal/domain"
)

func item(id int64, name, amount string, pos int) domain.ExpenseItem {
	a := decimal.RequireFromString(amount)
	return domain.ExpenseItem{ID: id, MovementID: 7, Position: pos, ServiceName: name, Amount: a, TaxAmount: decimal.Zero, TotalAmount: a}
}

func TestReconcileItems_UpdateInsertDelete(t *testing.T) {
	current := []domain.ExpenseItem{item(1, "cleaning", "40", 0), item(2, "laundry", "15", 1)}
	next := []domain.ExpenseItem{item(1, "cleaning", "45", 0), item(0, "repairs", "60", 1)}

	plan := ReconcileItems(current, next)

	require.Len(t, plan.Changes.Update, 1)
	assert.Equal(t, int64(1), plan.Changes.Update[0].ID)
	assert.Equal(t, "45", plan.Changes.Update[0].Amount.String())

	require.Len(t, plan.Changes.Insert, 1)
	assert.Equal(t, "repairs", plan.Changes.Insert[0].ServiceName)

	assert.Equal(t, []int64{2}, plan.Changes.Delete)

	require.Len(t, plan.Final, 2)
	assert.Equal(t, "cleaning", plan.Final[0].ServiceName)
	assert.Equal(t, "repairs", plan.Final[1].ServiceName)
}

func TestReconcileItems_UnchangedItemIsNotRewritten(t *testing.T) {
	current := []domain.ExpenseItem{item(1, "cleaning", "40", 0)}
	plan := ReconcileItems(current, []domain.ExpenseItem{item(1, "cleaning", "40.00", 0)})

	assert.Empty(t, plan.Changes.Update)
	assert.Empty(t, plan.Changes.Insert)
	assert.Empty(t, plan.Changes.Delete)
	assert.Len(t, plan.Final, 1)
}

func TestReconcileItems_UnknownIDIsInserted(t *testing.T) {
	current := []domain.ExpenseItem{item(1, "cleaning", "40", 0)}
	plan := ReconcileItems(current, []domain.ExpenseItem{item(99, "pool", "20", 0)})

	require.Len(t, plan.Changes.Insert, 1)
	assert.Zero(t, plan.Changes.Insert[0].ID)
	assert.Equal(t, []int64{1}, plan.Changes.Delete)
}

func TestReconcileItems_RepeatedIDMatchesOnce(t *testing.T) {
	current := []domain.ExpenseItem{item(1, "cleaning", "40", 0)}
	plan := ReconcileItems(current, []domain.ExpenseItem{item(1, "cleaning", "40", 0), item(1, "cleaning", "40", 1)})

	assert.Empty(t, plan.Changes.Update)
	require.Len(t, plan.Changes.Insert, 1)
	assert.Empty(t, plan.Changes.Delete)
}
