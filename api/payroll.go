package api

import (
	"context"
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// PayrollEntry is one employee's pay line for a week. Weeks are identified by
// their ISO key (e.g. "2024-W07"), matching the backend's wire contract.
type PayrollEntry struct {
	ID         uuid.UUID `json:"id,omitempty"`
	EmployeeID uuid.UUID `json:"usuario_id"`
	Semana     string    `json:"semana"`
	Dias       float64   `json:"dias"`
	Tarifa     float64   `json:"tarifa"`
	Extras     float64   `json:"extras,omitempty"`
	Total      float64   `json:"total,omitempty"`
	Pagado     bool      `json:"pagado"`
}

func (p PayrollEntry) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.EmployeeID, validation.By(requiredUUID)),
		validation.Field(&p.Semana, validation.Required),
		validation.Field(&p.Dias, validation.Required, validation.Max(7.0)),
		validation.Field(&p.Tarifa, validation.Required),
	)
}

// PayrollService reads and records weekly payroll.
type PayrollService struct {
	c *Client
}

// List returns every pay line for a week.
func (s *PayrollService) List(ctx context.Context, week string) ([]PayrollEntry, error) {
	if week == "" {
		return nil, goerrors.New("missing week", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	var out struct {
		Nominas []PayrollEntry `json:"nominas"`
	}
	if err := s.c.do(ctx, "GET", "/api/nominas?semana="+url.QueryEscape(week), nil, &out); err != nil {
		return nil, err
	}
	return out.Nominas, nil
}

// Record validates and submits one pay line.
func (s *PayrollService) Record(ctx context.Context, entry PayrollEntry) (*PayrollEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid payroll entry").
			WithCode(goerrors.CodeBadRequest)
	}

	var out PayrollEntry
	if err := s.c.do(ctx, "POST", "/api/nominas", entry, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkPaid flags a pay line as settled.
func (s *PayrollService) MarkPaid(ctx context.Context, id uuid.UUID) error {
	return s.c.do(ctx, "PUT", fmt.Sprintf("/api/nominas/%s/pagar", id), nil, nil)
}
