package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMalformed marks a model response that could not be decoded into the
// expected record shape. Never retried: a second call costs money without
// a structural fix.
var ErrMalformed = errors.New("malformed extraction")

var validate = validator.New()

var (
	resumeFields = jsonFields(ParsedResume{})
	jobFields    = jsonFields(ParsedJob{})
	matchFields  = jsonFields(MatchResult{})
)

// DecodeResume strictly decodes raw model output into a ParsedResume.
func DecodeResume(raw string) (ParsedResume, error) {
	return decodeStrict[ParsedResume](raw, resumeFields)
}

// DecodeJob strictly decodes raw model output into a ParsedJob.
func DecodeJob(raw string) (ParsedJob, error) {
	return decodeStrict[ParsedJob](raw, jobFields)
}

// DecodeMatchResult strictly decodes raw model output into a MatchResult.
func DecodeMatchResult(raw string) (MatchResult, error) {
	return decodeStrict[MatchResult](raw, matchFields)
}

// decodeStrict fails closed: the response must be a single JSON object
// carrying exactly the expected fields with the expected types and passing
// the record's validation constraints. Models wrap JSON in code fences
// even when told not to, so fences are stripped first.
func decodeStrict[T any](raw string, fields []string) (T, error) {
	var zero T

	cleaned := StripFences(raw)

	var object map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &object); err != nil {
		return zero, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	for _, field := range fields {
		if _, ok := object[field]; !ok {
			return zero, fmt.Errorf("%w: missing field %q", ErrMalformed, field)
		}
	}
	if len(object) > len(fields) {
		return zero, fmt.Errorf("%w: unexpected fields %v", ErrMalformed, extraKeys(object, fields))
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	decoder.DisallowUnknownFields()

	var record T
	if err := decoder.Decode(&record); err != nil {
		return zero, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	if err := validate.Struct(record); err != nil {
		return zero, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	return record, nil
}

// StripFences removes markdown code-fence wrappers from a model response.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func jsonFields(record any) []string {
	data, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}

	var object map[string]any
	if err := json.Unmarshal(data, &object); err != nil {
		panic(err)
	}

	fields := make([]string, 0, len(object))
	for field := range object {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func extraKeys(object map[string]json.RawMessage, fields []string) []string {
	expected := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		expected[field] = struct{}{}
	}

	var extras []string
	for key := range object {
		if _, ok := expected[key]; !ok {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	return extras
}
