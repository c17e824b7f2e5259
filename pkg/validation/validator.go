package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// specialChars is the accepted special-character set for passwords.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// allowedDomains is the fixed allowlist of accepted email providers.
var allowedDomains = map[string]struct{}{
	"gmail.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"yahoo.com":      {},
	"live.com":       {},
	"icloud.com":     {},
	"protonmail.com": {},
	"zoho.com":       {},
}

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers the password-policy and email-domain rules.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Apply(v)
	}
}

// Apply registers the custom rules on a validator instance. Split out from
// Init so tests can exercise the rules on a standalone validator.
func Apply(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("upperchar", func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	})
	_ = v.RegisterValidation("lowerchar", func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), "abcdefghijklmnopqrstuvwxyz")
	})
	_ = v.RegisterValidation("digitchar", func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), "0123456789")
	})
	_ = v.RegisterValidation("specialchar", func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), specialChars)
	})
	_ = v.RegisterValidation("maildomain", func(fl validator.FieldLevel) bool {
		return AllowedEmailDomain(fl.Field().String())
	})
}

// AllowedEmailDomain reports whether the address's provider (the lowercased
// part after the '@') is on the allowlist. No MX/DNS validation is done.
func AllowedEmailDomain(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return false
	}
	domain := strings.ToLower(parts[1])
	_, ok := allowedDomains[domain]
	return ok
}

// ToDetails converts validation/binding errors into a map[field]message
// suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if param != "" {
			return "must be at least " + param + " characters long"
		}
		return "too short"
	case "max":
		if param != "" {
			return "must be at most " + param + " characters long"
		}
		return "too long"
	case "eqfield":
		if strings.EqualFold(param, "password") {
			return "passwords do not match"
		}
		return "must be equal to " + param + " field"
	case "upperchar":
		return "must contain at least one uppercase letter"
	case "lowerchar":
		return "must contain at least one lowercase letter"
	case "digitchar":
		return "must contain at least one number"
	case "specialchar":
		return "must contain at least one special character (" + specialChars + ")"
	case "maildomain":
		return "must use a supported email provider (@gmail.com, @hotmail.com, @outlook.com, ...)"
	case "len":
		if param != "" {
			return fmt.Sprintf("must be exactly %s characters long", param)
		}
		return "invalid length"
	case "numeric":
		return "must be numeric"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}
