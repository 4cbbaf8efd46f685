package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"travel-planner-server/models"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var fieldMessages = map[string]string{
	"title":     "Title is required",
	"startDate": "Start date must be a valid date",
	"endDate":   "End date must be a valid date",
	"date":      "Date must be a valid date",
	"dayNumber": "Day number must be a positive integer",
	"days":      "Days must be an array",
	"email":     "Please provide a valid email",
	"password":  "Password must be at least 6 characters",
	"name":      "Name is required",
	"address":   "Address is required",
	"timestamp": "Timestamp must be a valid date",
}

// NewValidator returns the validator installed as app.Validator. Field names
// in errors follow the json tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := models.ParseISODate(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// HandleValidationErrors answers 400 for body decode and validation failures.
func HandleValidationErrors(err error, ctx iris.Context) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, FieldError{Field: fieldPath(fe), Message: fieldMessage(fe.Field(), fe.Tag())})
		}
		CreateValidationError(ctx, fields)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		leaf := typeErr.Field[strings.LastIndex(typeErr.Field, ".")+1:]
		CreateValidationError(ctx, []FieldError{{Field: typeErr.Field, Message: fieldMessage(leaf, "type")}})
		return
	}

	CreateError(iris.StatusBadRequest, "Invalid request body", ctx)
}

func CreateValidationError(ctx iris.Context, fields []FieldError) {
	ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  fields,
	})
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(field, tag string) string {
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed on the '%s' rule", field, tag)
}
