package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"homeserve/pkg/logger"
	"homeserve/pkg/model"
)

var (
	durationRegex = regexp.MustCompile(`(?i)^\d+\s*(hour|hours|hr|hrs|minute|minutes|min|mins|day|days)$`)
	areaRegex     = regexp.MustCompile(`(?i)^\d+\s*(sq\s*ft|square\s*feet|sq\s*m|square\s*meters|sqft|sqm)$`)
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

type ListingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewListingValidator(log *logger.Logger) *ListingValidator {
	v := validator.New()

	registrations := map[string]validator.Func{
		"service_category":  validateServiceCategory,
		"duration_estimate": validateDurationEstimate,
		"area_coverage":     ValidateAreaCoverage,
	}
	for tag, fn := range registrations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register custom validator",
				"tag", tag,
				"error", err,
			)
		}
	}

	log.Info("Listing validator initialized successfully")

	return &ListingValidator{
		validate: v,
		logger:   log,
	}
}

func validateServiceCategory(fl validator.FieldLevel) bool {
	return model.ServiceCategory(fl.Field().String()).IsValid()
}

func validateDurationEstimate(fl validator.FieldLevel) bool {
	return durationRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

// ValidateAreaCoverage is shared with the bookings validator, which reuses
// the same tag for the area_size field.
func ValidateAreaCoverage(fl validator.FieldLevel) bool {
	return areaRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func (v *ListingValidator) Validate(listing *model.ServiceListing) error {
	if err := v.validate.Struct(listing); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *ListingValidator) ValidateUpdate(update *model.ServiceListingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
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
		case "service_category":
			message = fmt.Sprintf("%s must be a supported service category", err.Field())
		case "duration_estimate":
			message = fmt.Sprintf("%s must be a duration like '2 hours' or '45 mins'", err.Field())
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
