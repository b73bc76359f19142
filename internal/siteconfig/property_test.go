package siteconfig

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var configKeys = []interface{}{
	"links", "label", "href", "visible", "cta", "sections", "id", "order", "limit",
	"mode", "accent", "font", "title", "description", "ogImage", "canonical", "favicon",
	"resume", "contact", "enabled", "pdfUrl", "email", "socials", "platform", "url",
	"overview", "problem", "approach", "architecture", "media", "metrics", "decisionLog",
	"outcome", "type", "caption", "decision", "tradeoff", "navConfig", "homeSections",
	"theme", "seo", "pages",
}

var trickyStrings = []interface{}{
	"", "  Hello  ", "https://example.com/x", "/about", "mailto:me@example.com",
	"me@example.com", "javascript:alert(1)", "#ABC", "#12345g", "image", "video",
	"dark", "LIGHT", "--Weird Slug--", "Ünïcødé title", "featured-projects",
}

// leafGen yields scalars. Every branch maps to interface{} so maps and slices
// built from it have interface{} elements whichever branch is drawn first.
func leafGen() gopter.Gen {
	return gen.OneGenOf(
		gen.OneConstOf(trickyStrings...).Map(func(s string) interface{} { return s }),
		gen.AlphaString().Map(func(s string) interface{} { return s }),
		gen.Bool().Map(func(b bool) interface{} { return b }),
		gen.IntRange(-3, 80).Map(func(i int) interface{} { return float64(i) }),
		gen.Float64Range(-10, 10).Map(func(f float64) interface{} { return f }),
	)
}

func objectGen(value gopter.Gen) gopter.Gen {
	return gen.MapOf(gen.OneConstOf(configKeys...).Map(func(k string) string { return k }), value)
}

func arrayOf(g gopter.Gen) gopter.Gen {
	return gen.SliceOf(g).Map(func(v []map[string]interface{}) interface{} {
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	})
}

// valueGen produces JSON-like values two levels deep: objects whose fields
// are leaves, arrays of objects, or nested objects.
func valueGen() gopter.Gen {
	inner := objectGen(leafGen())
	nested := gen.OneGenOf(
		leafGen(),
		arrayOf(inner),
		inner.Map(func(m map[string]interface{}) interface{} { return m }),
	)
	outer := objectGen(nested)
	return gen.OneGenOf(
		outer.Map(func(m map[string]interface{}) interface{} { return m }),
		arrayOf(outer),
		outer.Map(func(m map[string]interface{}) interface{} {
			b, _ := json.Marshal(m)
			return string(b)
		}),
		leafGen(),
	)
}

func TestGeneratorsYieldJSONValues(t *testing.T) {
	anyType := reflect.TypeOf((*interface{})(nil)).Elem()
	params := gopter.DefaultGenParameters().WithSize(6)
	leaf, value := leafGen(), valueGen()
	for i := 0; i < 500; i++ {
		if r := leaf(params); r.ResultType != anyType {
			t.Fatalf("leaf result type %v", r.ResultType)
		}
		r := value(params)
		if r.ResultType != anyType {
			t.Fatalf("value result type %v", r.ResultType)
		}
		v, ok := r.Retrieve()
		if !ok {
			t.Fatal("value generator gave no sample")
		}
		if _, err := json.Marshal(v); err != nil {
			t.Fatalf("sample %#v is not JSON: %v", v, err)
		}
	}
}

func idempotent[T any](parse func(any) T) func(interface{}) bool {
	return func(x interface{}) bool {
		once := parse(x)
		twice := parse(once)
		return reflect.DeepEqual(once, twice)
	}
}

func TestValidatorIdempotence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.MaxSize = 6
	properties := gopter.NewProperties(parameters)

	properties.Property("ParseNav is idempotent", prop.ForAll(idempotent(ParseNav), valueGen()))
	properties.Property("ParseHomeSections is idempotent", prop.ForAll(idempotent(ParseHomeSections), valueGen()))
	properties.Property("ParseTheme is idempotent", prop.ForAll(idempotent(ParseTheme), valueGen()))
	properties.Property("ParseSEO is idempotent", prop.ForAll(idempotent(ParseSEO), valueGen()))
	properties.Property("ParsePages is idempotent", prop.ForAll(idempotent(ParsePages), valueGen()))
	properties.Property("ParseSections is idempotent", prop.ForAll(idempotent(ParseSections), valueGen()))
	properties.Property("ParseContent is idempotent", prop.ForAll(idempotent(ParseContent), valueGen()))
	properties.Property("ParseMedia is idempotent", prop.ForAll(idempotent(ParseMedia), valueGen()))
	properties.Property("ParseDecisionLog is idempotent", prop.ForAll(idempotent(ParseDecisionLog), valueGen()))
	properties.Property("ParseStringArray is idempotent", prop.ForAll(idempotent(ParseStringArray), valueGen()))
	properties.Property("SafeSlug is idempotent", prop.ForAll(
		func(s string) bool { return SafeSlug(SafeSlug(s)) == SafeSlug(s) },
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestValidatorTotality(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.MaxSize = 6
	properties := gopter.NewProperties(parameters)

	properties.Property("parsers never panic and always populate required fields", prop.ForAll(
		func(x interface{}) bool {
			s := ParseSettings(x)
			seo := ParseSEO(x)
			return s.SEO.Title != "" && s.SEO.Description != "" &&
				seo.Title != "" && s.Nav.Links != nil && s.HomeSections != nil &&
				ParseMedia(x) != nil && len(SafeSlug(x)) <= MaxSlugLength
		},
		valueGen(),
	))

	properties.TestingRun(t)
}
