package web

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/dukex/flywheel/pkg/workflow"
	"github.com/go-playground/validator/v10"
)

var formPathPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// NewValidator returns a validator that knows the flywheel request rules.
// Field names in errors are the JSON names.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	_ = validate.RegisterValidation("formpath", func(fl validator.FieldLevel) bool {
		return formPathPattern.MatchString(fl.Field().String())
	})

	_ = validate.RegisterValidation("tone", func(fl validator.FieldLevel) bool {
		return slices.Contains(workflow.Tones, fl.Field().String())
	})

	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		item := sl.Current().Interface().(EngagementItem)
		if item.TweetID == "" && item.SearchQuery == "" {
			sl.ReportError(item.TweetID, "tweetId", "TweetID", "engagement_target", "")
		}
	}, EngagementItem{})

	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		recipient := sl.Current().Interface().(DMRecipient)
		if recipient.Handle == "" && recipient.ID == "" {
			sl.ReportError(recipient.Handle, "handle", "Handle", "recipient", "")
		}
	}, DMRecipient{})

	return validate
}

// describeValidation turns validator errors into one readable sentence per
// failed field.
func describeValidation(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, describeField(fe))
	}

	return strings.Join(messages, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, found := strings.Cut(field, "."); found {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}

		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}

		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "tone":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(workflow.Tones, ", "))
	case "formpath":
		return field + " may only contain letters, digits and hyphens"
	case "base64":
		return field + " must be base64 encoded"
	case "engagement_target":
		return "Provide a tweetId or searchQuery for each engagement action (" + field + ")"
	case "recipient":
		return "Provide a handle or an id for each recipient (" + field + ")"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
