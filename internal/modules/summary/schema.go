package summary

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Input is the request accepted at the summary boundary.
type Input struct {
	EHRData string `json:"ehrData" validate:"notblank"`
}

// Result is a successful summary.
type Result struct {
	Summary string `json:"summary" validate:"notblank"`
}

// outputSchema describes Result to providers that accept a JSON schema.
var outputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary": map[string]any{
			"type":        "string",
			"description": "Concise, informative summary of the patient's record for a physician.",
		},
	},
	"required":             []string{"summary"},
	"additionalProperties": false,
}

const outputSchemaName = "ehr_summary"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// DecodeInput parses a raw request body. It goes through a generic map first
// so a present but non-string ehrData is reported as such.
func DecodeInput(raw []byte) (Input, error) {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return Input{}, &ValidationError{Field: "body", Reason: "must be a JSON object"}
	}
	value, ok := body["ehrData"]
	if !ok || value == nil {
		return Input{}, &ValidationError{Field: "ehrData", Reason: "is required"}
	}
	text, ok := value.(string)
	if !ok {
		return Input{}, &ValidationError{Field: "ehrData", Reason: "must be a string"}
	}
	in := Input{EHRData: text}
	if err := ValidateInput(in); err != nil {
		return Input{}, err
	}
	return in, nil
}

// ValidateInput rejects empty and whitespace-only record text.
func ValidateInput(in Input) error {
	return structError(validate.Struct(in))
}

// DecodeOutput parses the model's raw reply into a Result. Code fences and
// prose around a single JSON object are tolerated; the summary text itself is
// returned untouched.
func DecodeOutput(raw string) (Result, error) {
	var payload map[string]any
	if err := unmarshalModelJSON(raw, &payload); err != nil {
		return Result{}, &SchemaMismatchError{Reason: "reply is not a JSON object", Raw: raw}
	}
	value, ok := payload["summary"]
	if !ok {
		return Result{}, &SchemaMismatchError{Reason: "summary field is missing", Raw: raw}
	}
	text, ok := value.(string)
	if !ok {
		return Result{}, &SchemaMismatchError{Reason: "summary field is not a string", Raw: raw}
	}
	out := Result{Summary: text}
	if err := validate.Struct(out); err != nil {
		return Result{}, &SchemaMismatchError{Reason: "summary field is empty", Raw: raw}
	}
	return out, nil
}

func unmarshalModelJSON(raw string, out any) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}
	return errors.New("invalid JSON in model reply")
}

func structError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := "is invalid"
		if fe.Tag() == "notblank" {
			reason = "must not be empty"
		}
		return &ValidationError{Field: fe.Field(), Reason: reason}
	}
	return &ValidationError{Field: "body", Reason: err.Error()}
}
