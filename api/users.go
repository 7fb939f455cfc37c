package api

import (
	"context"
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// Employee is an ERP user record. Field names follow the backend's wire
// contract, which is Spanish-first.
type Employee struct {
	ID       uuid.UUID `json:"id,omitempty"`
	Nombre   string    `json:"nombre"`
	Apellido string    `json:"apellido,omitempty"`
	Email    string    `json:"email"`
	Telefono string    `json:"telefono,omitempty"`
	Rol      string    `json:"rol,omitempty"`
	Activo   bool      `json:"activo"`
}

func (e Employee) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Nombre, validation.Required),
		validation.Field(&e.Email, validation.Required, is.Email),
	)
}

// DefaultPhoneRegion is used to parse national phone numbers before they are
// sent to the backend in E.164 form.
var DefaultPhoneRegion = "ES"

// NormalizePhone parses a raw phone number against the region and returns it
// in E.164 form. Empty input passes through untouched.
func NormalizePhone(raw, region string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid phone number").
			WithCode(goerrors.CodeBadRequest)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", goerrors.New("invalid phone number", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// UsersService administers ERP users.
type UsersService struct {
	c *Client
}

// List returns every user, optionally filtered by role.
func (s *UsersService) List(ctx context.Context, role string) ([]Employee, error) {
	path := "/api/usuarios"
	if role != "" {
		path += "?rol=" + url.QueryEscape(role)
	}

	var out struct {
		Usuarios []Employee `json:"usuarios"`
	}
	if err := s.c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Usuarios, nil
}

// Get fetches one user by id.
func (s *UsersService) Get(ctx context.Context, id uuid.UUID) (*Employee, error) {
	var out Employee
	if err := s.c.do(ctx, "GET", fmt.Sprintf("/api/usuarios/%s", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates and submits a new user. The phone number is normalized to
// E.164 before submission.
func (s *UsersService) Create(ctx context.Context, employee Employee) (*Employee, error) {
	if err := employee.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user").
			WithCode(goerrors.CodeBadRequest)
	}

	phone, err := NormalizePhone(employee.Telefono, DefaultPhoneRegion)
	if err != nil {
		return nil, err
	}
	employee.Telefono = phone

	var out Employee
	if err := s.c.do(ctx, "POST", "/api/usuarios", employee, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update validates and replaces an existing user.
func (s *UsersService) Update(ctx context.Context, employee Employee) (*Employee, error) {
	if employee.ID == uuid.Nil {
		return nil, goerrors.New("missing user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	if err := employee.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user").
			WithCode(goerrors.CodeBadRequest)
	}

	phone, err := NormalizePhone(employee.Telefono, DefaultPhoneRegion)
	if err != nil {
		return nil, err
	}
	employee.Telefono = phone

	var out Employee
	if err := s.c.do(ctx, "PUT", fmt.Sprintf("/api/usuarios/%s", employee.ID), employee, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a user.
func (s *UsersService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.c.do(ctx, "DELETE", fmt.Sprintf("/api/usuarios/%s", id), nil, nil)
}
