package api

import (
	"context"
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Assignment ties an employee to a lot and a task for a date.
type Assignment struct {
	ID         uuid.UUID `json:"id,omitempty"`
	EmployeeID uuid.UUID `json:"usuario_id"`
	Lote       string    `json:"lote"`
	Tarea      string    `json:"tarea"`
	Fecha      string    `json:"fecha"`
	Estado     string    `json:"estado,omitempty"`
}

// Assignment states as the backend reports them.
const (
	AssignmentPending   = "pendiente"
	AssignmentActive    = "activa"
	AssignmentCompleted = "completada"
)

func (a Assignment) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.EmployeeID, validation.By(requiredUUID)),
		validation.Field(&a.Lote, validation.Required),
		validation.Field(&a.Tarea, validation.Required),
		validation.Field(&a.Fecha, validation.Required, validation.Date("2006-01-02")),
	)
}

// AssignmentsService manages work assignments.
type AssignmentsService struct {
	c *Client
}

// List returns assignments, optionally filtered by lot.
func (s *AssignmentsService) List(ctx context.Context, lote string) ([]Assignment, error) {
	path := "/api/asignaciones"
	if lote != "" {
		path += "?lote=" + url.QueryEscape(lote)
	}

	var out struct {
		Asignaciones []Assignment `json:"asignaciones"`
	}
	if err := s.c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Asignaciones, nil
}

// Upsert validates and creates or replaces an assignment; the backend keys
// on the id when present.
func (s *AssignmentsService) Upsert(ctx context.Context, a Assignment) (*Assignment, error) {
	if err := a.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid assignment").
			WithCode(goerrors.CodeBadRequest)
	}

	var out Assignment
	if err := s.c.do(ctx, "POST", "/api/asignaciones", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete marks an assignment finished.
func (s *AssignmentsService) Complete(ctx context.Context, id uuid.UUID) error {
	return s.c.do(ctx, "PUT", fmt.Sprintf("/api/asignaciones/%s/completar", id), nil, nil)
}
