package api

import (
	"errors"

	"github.com/google/uuid"
)

// requiredUUID is a validation.By rule; ozzo's Required treats a uuid as a
// 16-byte array and never flags the nil value.
func requiredUUID(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
}
