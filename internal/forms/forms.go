// Package forms validates admin and public JSON request bodies. Each form has
// a JSON Schema for shape and limits plus optional checks that need the site's
// own parsers. All problems are collected and reported together.
package forms

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/localnerve/portfolio-site/internal/siteconfig"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Form names a request body schema.
type Form string

const (
	Project     Form = "project"
	Category    Form = "category"
	WritingItem Form = "writing_item"
	Settings    Form = "settings"
	SignIn      Form = "sign_in"
	Bootstrap   Form = "bootstrap"
	Event       Form = "event"
)

var allForms = []Form{Project, Category, WritingItem, Settings, SignIn, Bootstrap, Event}

// FieldError is one problem with one field. Field is a dotted path; "" is the
// whole body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is every field problem found in a body.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, types.ErrValidation) match.
func (e Errors) Is(target error) bool {
	t, ok := target.(*types.Error)
	return ok && t.Kind == types.KindValidation
}

type check func(doc map[string]any) []FieldError

var checks = map[Form]check{
	Project:     checkProject,
	WritingItem: checkWritingItem,
	SignIn:      checkSignIn,
}

// Validator holds the compiled schemas.
type Validator struct {
	schemas map[Form]*jsonschema.Schema
}

// New compiles every form schema.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true

	v := &Validator{schemas: make(map[Form]*jsonschema.Schema, len(allForms))}
	for _, f := range allForms {
		src, err := schemaFS.ReadFile("schemas/" + string(f) + ".json")
		if err != nil {
			return nil, fmt.Errorf("form schema %s: %w", f, err)
		}
		url := "https://portfolio.local/forms/" + string(f) + ".schema.json"
		if err := c.AddResource(url, bytes.NewReader(src)); err != nil {
			return nil, fmt.Errorf("form schema %s load failed: %w", f, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("form schema %s compile failed: %w", f, err)
		}
		v.schemas[f] = compiled
	}
	return v, nil
}

// MustNew is New for package initialisation.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks body against form. It returns Errors for invalid bodies.
func (v *Validator) Validate(form Form, body []byte) error {
	schema, ok := v.schemas[form]
	if !ok {
		return fmt.Errorf("unknown form %q", form)
	}

	doc, err := decodeJSON(body)
	if err != nil {
		return Errors{{Message: "body must be valid JSON"}}
	}

	var fields []FieldError
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		fields = collect(ve, fields)
	}
	if fn, ok := checks[form]; ok {
		if m, isObject := doc.(map[string]any); isObject {
			fields = append(fields, fn(m)...)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return normalize(fields)
}

// decodeJSON reads one JSON value with numbers kept as json.Number, the form
// the schema validator expects.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return doc, nil
}

// Decode validates body and unmarshals it into dst.
func (v *Validator) Decode(form Form, body []byte, dst any) error {
	if err := v.Validate(form, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return Errors{{Message: "body does not match the form: " + err.Error()}}
	}
	return nil
}

var quoted = regexp.MustCompile(`'([^']+)'`)

// collect flattens the leaf causes of a validation error.
func collect(ve *jsonschema.ValidationError, out []FieldError) []FieldError {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			out = collect(c, out)
		}
		return out
	}

	field := fieldPath(ve.InstanceLocation)
	if strings.HasPrefix(ve.Message, "missing properties:") {
		for _, m := range quoted.FindAllStringSubmatch(ve.Message, -1) {
			out = append(out, FieldError{Field: join(field, m[1]), Message: "is required"})
		}
		return out
	}
	if strings.HasSuffix(ve.KeywordLocation, "/enum") {
		return append(out, FieldError{Field: field, Message: "must be one of the allowed values"})
	}
	return append(out, FieldError{Field: field, Message: ve.Message})
}

func fieldPath(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return ""
	}
	parts := strings.Split(pointer, "/")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~1", "/"), "~0", "~")
	}
	return strings.Join(parts, ".")
}

func join(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// normalize drops duplicates and sorts by field so responses are stable.
func normalize(fields []FieldError) Errors {
	seen := make(map[FieldError]struct{}, len(fields))
	out := make(Errors, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func checkProject(doc map[string]any) []FieldError {
	var out []FieldError
	slug, _ := doc["slug"].(string)
	title, _ := doc["title"].(string)
	if strings.TrimSpace(slug) != "" && siteconfig.SafeSlug(slug) == "" {
		out = append(out, FieldError{Field: "slug", Message: "must contain letters or digits"})
	} else if strings.TrimSpace(slug) == "" && strings.TrimSpace(title) != "" && siteconfig.SafeSlug(title) == "" {
		out = append(out, FieldError{Field: "slug", Message: "is required when the title has no letters or digits"})
	}

	media, _ := doc["media"].([]any)
	for i, el := range media {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if u, ok := m["url"].(string); ok && u != "" && siteconfig.SafeURL(u) == "" {
			out = append(out, FieldError{Field: fmt.Sprintf("media.%d.url", i), Message: "must be an http(s) or site-relative URL"})
		}
	}
	return out
}

func checkWritingItem(doc map[string]any) []FieldError {
	if u, ok := doc["url"].(string); ok && u != "" && siteconfig.SafeURL(u) == "" {
		return []FieldError{{Field: "url", Message: "must be an http(s) or site-relative URL"}}
	}
	return nil
}

func checkSignIn(doc map[string]any) []FieldError {
	if e, ok := doc["email"].(string); ok && e != "" && siteconfig.SafeEmail(e) == "" {
		return []FieldError{{Field: "email", Message: "must be an email address"}}
	}
	return nil
}
