package seating

import "github.com/avelara/seatsync/internal/model"

// Allotment is the share of guests one table receives from an
// assignment plan.  OverCapacity is set when the planned count
// exceeds the table's declared capacity; capacity is advisory at this
// layer, so the plan is still produced and the caller decides whether
// to proceed.
type Allotment struct {
	Table        model.Table
	Count        int
	OverCapacity bool
}

// Assigner computes a guest distribution plan for an event.  The
// balanced allocator below is the default; alternative strategies
// (e.g. an external suggestion service) can be plugged behind the
// same interface via configuration.
type Assigner interface {
	Allocate(guestCount int, tables []model.Table) ([]Allotment, error)
}

// BalancedAssigner distributes guests across tables so that the
// guest-count difference between any two tables is at most one.
// Identical inputs always produce the identical plan, which keeps
// re-runs idempotent and the behavior testable.
type BalancedAssigner struct{}

var _ Assigner = BalancedAssigner{}

// Allocate splits guestCount over tables in table order: with
// base = guestCount/len(tables) and rem = guestCount%len(tables), the
// first rem tables receive base+1 guests and the rest receive base.
// Fails with a validation error when guestCount < 1 or tables is
// empty; no partial plan is produced.
func (BalancedAssigner) Allocate(guestCount int, tables []model.Table) ([]Allotment, error) {
	if guestCount <= 0 {
		return nil, errf(KindValidation, "guest count must be positive, got %d", guestCount)
	}
	if len(tables) == 0 {
		return nil, errf(KindValidation, "at least one table is required")
	}

	base := guestCount / len(tables)
	rem := guestCount % len(tables)

	out := make([]Allotment, len(tables))
	for i, t := range tables {
		count := base
		if i < rem {
			count++
		}
		out[i] = Allotment{
			Table:        t,
			Count:        count,
			OverCapacity: count > t.Capacity,
		}
	}
	return out, nil
}

// ExpandPlan flattens a plan into one table per guest slot, in table
// order.  The resulting slice has exactly the planned total length;
// index i is the table for the i-th guest handed to the plan.
func ExpandPlan(plan []Allotment) []model.Table {
	total := 0
	for _, a := range plan {
		total += a.Count
	}
	out := make([]model.Table, 0, total)
	for _, a := range plan {
		for i := 0; i < a.Count; i++ {
			out = append(out, a.Table)
		}
	}
	return out
}
