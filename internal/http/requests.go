package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("jsondoc", validateJSONDocument); err != nil {
		panic(err)
	}
}

// validateJSONDocument accepts an absent payload, null, an object or an array.
func validateJSONDocument(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(json.RawMessage)
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return true
	}
	return trimmed[0] == '{' || trimmed[0] == '['
}

type createTankRequest struct {
	Name         string   `json:"name" validate:"required,max=255"`
	SerialNumber string   `json:"serial_number" validate:"required,max=255"`
	Capacity     *float64 `json:"capacity" validate:"required,gt=0"`
	Height       *float64 `json:"height" validate:"required,gt=0"`
	Diameter     *float64 `json:"diameter" validate:"omitnil,gte=0"`
	Location     *string  `json:"location" validate:"omitnil,max=255"`
}

type updateTankRequest struct {
	Name         *string  `json:"name" validate:"omitnil,min=1,max=255"`
	SerialNumber *string  `json:"serial_number" validate:"omitnil,min=1,max=255"`
	Capacity     *float64 `json:"capacity" validate:"omitnil,gt=0"`
	Height       *float64 `json:"height" validate:"omitnil,gt=0"`
	Diameter     *float64 `json:"diameter" validate:"omitnil,gte=0"`
	Location     *string  `json:"location" validate:"omitnil,max=255"`
	IsActive     *bool    `json:"is_active"`
}

type updateLevelRequest struct {
	Level *float64 `json:"current_level" validate:"required,gte=0"`
}

type storeReadingRequest struct {
	TankID           *int64          `json:"tank_id" validate:"required,gt=0"`
	LiquidLevel      *float64        `json:"liquid_level" validate:"required,gte=0"`
	Temperature      *float64        `json:"temperature"`
	ReadingTimestamp *time.Time      `json:"reading_timestamp"`
	RawData          json.RawMessage `json:"raw_data" validate:"jsondoc"`
}

type storeBatchRequest struct {
	Readings []storeReadingRequest `json:"readings" validate:"required,min=1,dive"`
}

// validationError lists the offending fields of a request.
type validationError struct {
	Fields map[string]string
}

func (e *validationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, rule))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, ", ")
}

func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = describe(fe)
	}
	return &validationError{Fields: fields}
}

// fieldPath drops the struct name prefix: storeBatchRequest.readings[1].tank_id -> readings[1].tank_id.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		return "must not be empty"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "jsondoc":
		return "must be a JSON object or array"
	default:
		return "failed " + fe.Tag()
	}
}
