package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avelara/seatsync/internal/model"
	"github.com/avelara/seatsync/internal/repository"
)

// GuestHandler bundles the repositories for guest CRUD.
type GuestHandler struct {
	EventRepo *repository.EventRepo
	GuestRepo *repository.GuestRepo
	TableRepo *repository.TableRepo
}

// NewGuestHandler constructs a GuestHandler and panics on nil
// dependencies.
func NewGuestHandler(events *repository.EventRepo, guests *repository.GuestRepo, tables *repository.TableRepo) *GuestHandler {
	if events == nil || guests == nil || tables == nil {
		panic("nil repository passed to NewGuestHandler")
	}
	return &GuestHandler{EventRepo: events, GuestRepo: guests, TableRepo: tables}
}

type guestRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Name      string  `json:"name"` // legacy single-name imports
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Notes     *string `json:"notes"`
	TableID   *uint64 `json:"table_id"`
}

// Create handles POST /v1/events/:id/guests.
func (h *GuestHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event id"})
	}
	var req guestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	g := model.Guest{
		EventID:    eventID,
		OwnerID:    ownerID,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		LegacyName: strings.TrimSpace(req.Name),
		Phone:      req.Phone,
		Email:      req.Email,
		Notes:      req.Notes,
	}
	if g.DisplayName() == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "a name is required"})
	}
	ctx := c.Request().Context()

	if _, err := h.EventRepo.GetByIDAndOwner(ctx, eventID, ownerID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	// A guest may only reference a table inside the same event.
	if req.TableID != nil {
		t, err := h.TableRepo.GetByIDAndOwner(ctx, *req.TableID, ownerID)
		if err != nil || t.EventID != eventID {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "table does not belong to this event"})
		}
		g.TableID = req.TableID
	}
	if err := h.GuestRepo.Create(ctx, &g); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusCreated, g)
}

// List handles GET /v1/events/:id/guests.
func (h *GuestHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	if _, err := h.EventRepo.GetByIDAndOwner(ctx, eventID, ownerID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	guests, err := h.GuestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	type item struct {
		model.Guest
		DisplayName string `json:"display_name"`
	}
	items := make([]item, len(guests))
	for i, g := range guests {
		items[i] = item{Guest: g, DisplayName: g.DisplayName()}
	}
	return c.JSON(http.StatusOK, map[string]any{"count": len(items), "items": items})
}

// Update handles PATCH /v1/guests/:id.  Only fields present in the
// body are changed.
func (h *GuestHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid guest id"})
	}
	ctx := c.Request().Context()

	g, err := h.GuestRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Phone     *string `json:"phone"`
		Email     *string `json:"email"`
		Notes     *string `json:"notes"`
		TableID   *uint64 `json:"table_id"`
		Unassign  bool    `json:"unassign"` // explicit, since a null table_id also means "not provided"
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if req.FirstName != nil {
		g.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		g.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		g.Phone = req.Phone
	}
	if req.Email != nil {
		g.Email = req.Email
	}
	if req.Notes != nil {
		g.Notes = req.Notes
	}
	if req.Unassign {
		g.TableID = nil
	} else if req.TableID != nil {
		t, err := h.TableRepo.GetByIDAndOwner(ctx, *req.TableID, ownerID)
		if err != nil || t.EventID != g.EventID {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "table does not belong to this event"})
		}
		g.TableID = req.TableID
	}
	if g.DisplayName() == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "a name is required"})
	}

	if err := h.GuestRepo.Update(ctx, g, ownerID); err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, g)
}

// Delete handles DELETE /v1/guests/:id.
func (h *GuestHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid guest id"})
	}
	if err := h.GuestRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrGuestNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "guest not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkDelete handles POST /v1/guests/bulk-delete with a JSON body of
// guest ids.  Ids not owned by the caller are skipped, not errors.
func (h *GuestHandler) BulkDelete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var req struct {
		IDs []uint64 `json:"ids"`
	}
	if err := c.Bind(&req); err != nil || len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ids are required"})
	}
	n, err := h.GuestRepo.DeleteByIDs(c.Request().Context(), ownerID, req.IDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": n})
}
