// Package schema describes the structured output expected from a generator
// and validates model text against it before it is decoded.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"macro-picks/internal/types"
)

var (
	// ErrNoJSON is returned when model output contains no JSON object.
	ErrNoJSON = errors.New("no JSON object in model output")
	// ErrSchemaViolation is returned when model JSON does not satisfy the schema.
	ErrSchemaViolation = errors.New("model output does not match schema")
)

// Descriptor is a compiled JSON schema for one output type.
type Descriptor struct {
	name     string
	schema   map[string]any
	compiled *gojsonschema.Schema
}

// Reflect builds a descriptor for the Go type of v. Only fields tagged
// jsonschema:"required" are required; nested types are inlined.
func Reflect(name string, v any) (*Descriptor, error) {
	reflector := &jsonschema.Reflector{
		Anonymous:                  true,
		ExpandedStruct:             true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
	}
	b, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s schema: %w", name, err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s schema: %w", name, err)
	}
	// the draft URL is not understood by the validator and adds nothing for providers
	delete(m, "$schema")

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(m))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
	}
	return &Descriptor{name: name, schema: m, compiled: compiled}, nil
}

var (
	picksOnce sync.Once
	picksDesc *Descriptor
)

// Picks returns the descriptor for types.PicksOutput. It panics if the
// schema cannot be built, which only happens on a programming error.
func Picks() *Descriptor {
	picksOnce.Do(func() {
		d, err := Reflect("macro_news_picks", types.PicksOutput{})
		if err != nil {
			panic(err)
		}
		picksDesc = d
	})
	return picksDesc
}

// Name is the schema name sent to providers that ask for one.
func (d *Descriptor) Name() string {
	return d.name
}

// Map returns the schema document. Callers must not modify it.
func (d *Descriptor) Map() map[string]any {
	return d.schema
}

// MarshalJSON lets the descriptor be passed directly to provider SDKs.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.schema)
}

// Validate checks a JSON document against the schema. All violations are
// reported in one error wrapping ErrSchemaViolation.
func (d *Descriptor) Validate(doc string) error {
	result, err := d.compiled.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(msgs, "; "))
}

// Decode extracts the JSON object from model text, validates it and
// unmarshals it into v.
func (d *Descriptor) Decode(text string, v any) error {
	doc, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := d.Validate(doc); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

// ExtractJSON locates a JSON object in model text. Code fences are stripped;
// then the span from the first '{' to the last '}' is tried, and failing
// that the first '{' that starts a complete object.
func ExtractJSON(text string) (string, error) {
	t := strings.TrimSpace(text)
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(t, "```")
	t = strings.TrimSpace(t)

	if strings.HasPrefix(t, "{") && json.Valid([]byte(t)) {
		return t, nil
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		sub := t[start : end+1]
		if json.Valid([]byte(sub)) {
			return sub, nil
		}
	}

	// braces in surrounding prose: decode the first complete object instead
	for i := start; i >= 0 && i < len(t); {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(t[i:])).Decode(&raw); err == nil {
			return string(raw), nil
		}
		next := strings.Index(t[i+1:], "{")
		if next < 0 {
			break
		}
		i += next + 1
	}
	return "", ErrNoJSON
}
