package seating

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/avelara/seatsync/internal/model"
)

// Engine is the façade callers use.  It composes the name matcher,
// the assignment strategy and the chunked applier into the three
// operations the product needs: auto-assign, bulk save and guest
// search.
type Engine struct {
	store    Store
	assigner Assigner
	applier  *Applier
	log      zerolog.Logger
}

// NewEngine wires an Engine.  A nil assigner falls back to the
// balanced allocator.
func NewEngine(store Store, assigner Assigner, applier *Applier, log zerolog.Logger) *Engine {
	if store == nil || applier == nil {
		panic("nil dependency passed to NewEngine")
	}
	if assigner == nil {
		assigner = BalancedAssigner{}
	}
	return &Engine{store: store, assigner: assigner, applier: applier, log: log}
}

// AssignOutcome reports an auto-assign run.  AssignedCount counts
// guests whose change landed in a successfully committed chunk, not
// merely attempted ones.
type AssignOutcome struct {
	AssignedCount int         `json:"assigned_count"`
	Result        BatchResult `json:"result"`
}

// AutoAssign distributes every unassigned guest of an event across
// the event's tables and persists the result.  Fails with ErrNoTables
// when the event has no tables and ErrNoUnassignedGuests when every
// guest already has a seat; neither case issues a store write.
func (e *Engine) AutoAssign(ctx context.Context, eventID uint64) (AssignOutcome, error) {
	tables, err := e.store.ListTables(ctx, eventID)
	if err != nil {
		return AssignOutcome{}, wrap(KindOf(err), err, "loading tables")
	}
	if len(tables) == 0 {
		return AssignOutcome{}, ErrNoTables
	}

	guests, err := e.store.ListGuests(ctx, eventID)
	if err != nil {
		return AssignOutcome{}, wrap(KindOf(err), err, "loading guests")
	}
	unassigned := make([]model.Guest, 0, len(guests))
	for _, g := range guests {
		if !g.Assigned() {
			unassigned = append(unassigned, g)
		}
	}
	if len(unassigned) == 0 {
		return AssignOutcome{}, ErrNoUnassignedGuests
	}

	plan, err := e.assigner.Allocate(len(unassigned), tables)
	if err != nil {
		return AssignOutcome{}, err
	}
	for _, a := range plan {
		if a.OverCapacity {
			e.log.Warn().Uint64("event_id", eventID).Uint64("table_id", a.Table.ID).
				Int("planned", a.Count).Int("capacity", a.Table.Capacity).
				Msg("table planned over declared capacity")
		}
	}

	slots := ExpandPlan(plan)
	changes := make([]GuestChange, len(unassigned))
	for i, g := range unassigned {
		tableID := slots[i].ID
		changes[i] = GuestChange{GuestID: g.ID, TableID: &tableID}
	}

	result := e.applier.Apply(ctx, changes, nil)
	// Every guest change is exactly one operation, so the processed
	// count is the assigned-guest count.
	return AssignOutcome{AssignedCount: result.TotalProcessed, Result: result}, nil
}

// recognizedTableUpdateFields are the table fields BulkSave accepts.
var recognizedTableUpdateFields = map[string]bool{
	"name":     true,
	"capacity": true,
	"color":    true,
}

// BulkSave validates and persists a caller-supplied change set.
// Validation failures are reported before any persistence attempt;
// otherwise the change set goes straight to the chunked applier and
// the per-chunk outcome is returned.
func (e *Engine) BulkSave(ctx context.Context, guestChanges []GuestChange, tableChanges []TableChange) (BatchResult, error) {
	for i, gc := range guestChanges {
		if gc.GuestID == 0 {
			return BatchResult{}, errf(KindValidation, "guest change %d has an empty guest id", i)
		}
		if gc.TableID != nil && *gc.TableID == 0 {
			return BatchResult{}, errf(KindValidation, "guest change %d references an empty table id", i)
		}
	}
	for i, tc := range tableChanges {
		if tc.TableID == 0 {
			return BatchResult{}, errf(KindValidation, "table change %d has an empty table id", i)
		}
		recognized := 0
		for field := range tc.Updates {
			if recognizedTableUpdateFields[field] {
				recognized++
			} else {
				return BatchResult{}, errf(KindValidation, "table change %d has unrecognized field %q", i, field)
			}
		}
		if recognized == 0 {
			return BatchResult{}, errf(KindValidation, "table change %d carries no recognized update field", i)
		}
	}
	return e.applier.Apply(ctx, guestChanges, tableChanges), nil
}

// TableRef is the minimal table identity attached to a guest match.
type TableRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// GuestMatch is the result of a successful FindGuest call.
type GuestMatch struct {
	Guest       model.Guest `json:"guest"`
	DisplayName string      `json:"display_name"`
	Table       *TableRef   `json:"table,omitempty"`
}

// FindGuest resolves a free-text query against the event's roster.
// When the matched guest has a table assignment, minimal table
// identity is attached for display.  A stale assignment pointing at a
// deleted table is returned without a table reference.
func (e *Engine) FindGuest(ctx context.Context, query string, eventID uint64) (GuestMatch, error) {
	guests, err := e.store.ListGuests(ctx, eventID)
	if err != nil {
		return GuestMatch{}, wrap(KindOf(err), err, "loading guests")
	}
	guest, ok := Resolve(query, guests)
	if !ok {
		return GuestMatch{}, ErrGuestNotFound
	}

	match := GuestMatch{Guest: guest, DisplayName: guest.DisplayName()}
	if guest.Assigned() {
		tables, err := e.store.ListTables(ctx, eventID)
		if err != nil {
			return GuestMatch{}, wrap(KindOf(err), err, "loading tables")
		}
		for _, t := range tables {
			if t.ID == *guest.TableID {
				match.Table = &TableRef{ID: t.ID, Name: t.Name}
				break
			}
		}
	}
	return match, nil
}

// SuggestNames returns autocomplete suggestions for a name prefix
// over the event's roster.
func (e *Engine) SuggestNames(ctx context.Context, prefix string, eventID uint64, limit int) ([]string, error) {
	guests, err := e.store.ListGuests(ctx, eventID)
	if err != nil {
		return nil, wrap(KindOf(err), err, "loading guests")
	}
	return Suggest(prefix, guests, limit), nil
}
