package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	catalogvalidator "homeserve/internal/catalog/validator"
	"homeserve/pkg/logger"
	"homeserve/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	registrations := map[string]validator.Func{
		"booking_status":   validateBookingStatus,
		"service_category": validateServiceCategory,
		"area_coverage":    catalogvalidator.ValidateAreaCoverage,
	}
	for tag, fn := range registrations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register custom validator",
				"tag", tag,
				"error", err,
			)
		}
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	return model.BookingStatus(fl.Field().String()).IsValid()
}

func validateServiceCategory(fl validator.FieldLevel) bool {
	return model.ServiceCategory(fl.Field().String()).IsValid()
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if booking.Category.RequiresSchedule() && booking.ScheduledAt == nil {
		return ValidationErrors{
			ValidationError{
				Field:   "ScheduledAt",
				Message: fmt.Sprintf("scheduled_at is required for category %q", booking.Category),
			},
		}
	}

	if booking.ScheduledAt != nil && booking.ScheduledAt.Before(time.Now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "ScheduledAt",
				Message: "scheduled_at cannot be in the past",
			},
		}
	}

	return nil
}

func (v *BookingValidator) ValidateStatusChange(change *model.StatusChange) error {
	if err := v.validate.Struct(change); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) ValidateCancelRequest(req *model.CancelRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be %s or greater", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "booking_status":
			message = fmt.Sprintf("%s must be one of: pending, confirmed, completed, cancelled", err.Field())
		case "service_category":
			message = fmt.Sprintf("%s must be a supported service category", err.Field())
		case "area_coverage":
			message = fmt.Sprintf("%s must be an area like '1200 sq ft'", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
