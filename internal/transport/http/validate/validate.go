package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/tracking-service/internal/domain"
)

const maxBodyBytes = 64 << 10

var v *validator.Validate

func init() {
	v = validator.New()
	// report json field names in error meta
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("action", func(fl validator.FieldLevel) bool {
		return domain.Action(fl.Field().String()).Valid()
	})
}

func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or invalid fields",
		})
	}
	return nil
}

// Struct validates dst and reports every failing field in the error meta.
func Struct(dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrValidation(err.Error())
	}
	meta := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		meta[fe.Field()] = describe(fe)
	}
	return domain.ErrValidationMeta("invalid request", meta)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "action":
		return "must be one of: view, click, add_to_cart, purchase, search"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "invalid"
	}
}

// Limit parses an optional positive integer query parameter. Absent means def.
func Limit(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, domain.ErrValidationMeta("invalid query param", map[string]string{
			name: "must be a positive integer",
		})
	}
	return n, nil
}

// Time parses an optional RFC3339 or YYYY-MM-DD query parameter as UTC.
func Time(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.ErrValidationMeta("invalid query param", map[string]string{
		name: "must be RFC3339 timestamp or YYYY-MM-DD",
	})
}
