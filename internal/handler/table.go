package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avelara/seatsync/internal/model"
	"github.com/avelara/seatsync/internal/repository"
)

// TableHandler bundles the repositories for table CRUD.
type TableHandler struct {
	EventRepo *repository.EventRepo
	TableRepo *repository.TableRepo
}

// NewTableHandler constructs a TableHandler and panics on nil
// dependencies.
func NewTableHandler(events *repository.EventRepo, tables *repository.TableRepo) *TableHandler {
	if events == nil || tables == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{EventRepo: events, TableRepo: tables}
}

// Create handles POST /v1/events/:id/tables.
func (h *TableHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid event id"})
	}
	var req struct {
		Name     string  `json:"name"`
		Capacity int     `json:"capacity"`
		Color    *string `json:"color"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if req.Capacity < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "capacity must be at least 1"})
	}
	ctx := c.Request().Context()
	if _, err := h.EventRepo.GetByIDAndOwner(ctx, eventID, ownerID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	t := model.Table{EventID: eventID, OwnerID: ownerID, Name: req.Name, Capacity: req.Capacity, Color: req.Color}
	if err := h.TableRepo.Create(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusCreated, t)
}

// List handles GET /v1/events/:id/tables.
func (h *TableHandler) List(c echo.Context) error {
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
	tables, err := h.TableRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, map[string]any{"count": len(tables), "items": tables})
}

// Update handles PATCH /v1/tables/:id.
func (h *TableHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	ctx := c.Request().Context()

	t, err := h.TableRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	var req struct {
		Name     *string `json:"name"`
		Capacity *int    `json:"capacity"`
		Color    *string `json:"color"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name cannot be empty"})
		}
		t.Name = name
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "capacity must be at least 1"})
		}
		t.Capacity = *req.Capacity
	}
	if req.Color != nil {
		t.Color = req.Color
	}

	if err := h.TableRepo.Update(ctx, t, ownerID); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/tables/:id.  Guests seated at the table
// are unassigned in the same transaction, so no guest is left
// pointing at a missing table.
func (h *TableHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	if err := h.TableRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.NoContent(http.StatusNoContent)
}
