package dto

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/campuskit/auth-service/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("username_format", validateUsernameFormat)
}

// validateUsernameFormat allows letters, numbers and underscores only.
func validateUsernameFormat(fl validator.FieldLevel) bool {
	username := fl.Field().String()
	if len(username) == 0 {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_' {
			return false
		}
	}
	return true
}

// check runs the validator tags on req and maps the first failure to a
// domain error.
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInvalidField("request", err.Error())
	}

	fe := verrs[0]
	field := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "email":
		return domain.ErrInvalidField(field, "must be a valid email address")
	case "min":
		return domain.ErrInvalidField(field, fmt.Sprintf("must be at least %s characters", fe.Param()))
	case "max":
		return domain.ErrInvalidField(field, fmt.Sprintf("must be at most %s characters", fe.Param()))
	case "username_format":
		return domain.ErrInvalidField(field, "can only contain letters, numbers, and underscores")
	default:
		return domain.ErrInvalidField(field, "is invalid")
	}
}

// jsonFieldName maps struct field names to their wire names.
func jsonFieldName(field string) string {
	switch field {
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "Username":
		return "username"
	case "FirstName":
		return "first_name"
	case "LastName":
		return "last_name"
	case "SchoolID":
		return "school_id"
	case "RoleID":
		return "role_id"
	case "RefreshToken":
		return "refresh_token"
	case "Token":
		return "token"
	case "NewPassword":
		return "new_password"
	case "CurrentPassword":
		return "current_password"
	default:
		return field
	}
}
