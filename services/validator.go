package services

import (
	"chat-relay/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SendMessageCommand is the send request as received from the transport.
type SendMessageCommand struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Text  string `json:"text" validate:"required_without=Image"`
	Image string `json:"image" validate:"required_without=Text"`
}

type conversationQuery struct {
	UserA string `validate:"required"`
	UserB string `validate:"required"`
}

// validateStruct turns validator failures into the package error taxonomy.
// A missing identity wins over a missing content.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	for _, fieldErr := range validationErrors {
		if fieldErr.Tag() == "required" {
			return fmt.Errorf("%w: %s", errors.ErrMissingField, fieldErr.Field())
		}
	}
	return errors.ErrEmptyMessage
}
