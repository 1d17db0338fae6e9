package expense

import "rentaldesk/internal/domain"

// ItemPlan is how an edited item list is applied to the stored one. Final is
// the item set that results, in the edited order.
type ItemPlan struct {
	Changes domain.ExpenseItemChanges
	Final   []domain.ExpenseItem
}

// ReconcileItems matches next against current by item id. Matched items are
// updated in place when something changed; items with no id, or with an id
// current does not hold, are inserted; current items left unmatched are
// deleted. An id repeated in next only matches once.
func ReconcileItems(current, next []domain.ExpenseItem) ItemPlan {
	stored := make(map[int64]domain.ExpenseItem, len(current))
	for _, it := range current {
		stored[it.ID] = it
	}

	plan := ItemPlan{Final: make([]domain.ExpenseItem, 0, len(next))}
	kept := make(map[int64]bool, len(next))
	for _, it := range next {
		old, ok := stored[it.ID]
		if it.ID != 0 && ok && !kept[it.ID] {
			kept[it.ID] = true
			it.MovementID = old.MovementID
			if !sameItem(old, it) {
				plan.Changes.Update = append(plan.Changes.Update, it)
			}
			plan.Final = append(plan.Final, it)
			continue
		}
		it.ID = 0
		plan.Changes.Insert = append(plan.Changes.Insert, it)
		plan.Final = append(plan.Final, it)
	}

	for _, it := range current {
		if !kept[it.ID] {
			plan.Changes.Delete = append(plan.Changes.Delete, it.ID)
		}
	}
	return plan
}

func sameItem(a, b domain.ExpenseItem) bool {
	return a.Position == b.Position &&
		a.ServiceName == b.ServiceName &&
		a.Amount.Equal(b.Amount) &&
		sameID(a.TaxTypeID, b.TaxTypeID) &&
		a.TaxAmount.Equal(b.TaxAmount) &&
		a.TotalAmount.Equal(b.TotalAmount)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
