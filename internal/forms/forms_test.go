package forms

import (
	"errors"
	"testing"

	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var fe Errors
	require.True(t, errors.As(err, &fe), "expected Errors, got %v", err)
	out := make(map[string]string, len(fe))
	for _, f := range fe {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidateProject(t *testing.T) {
	v := MustNew()

	require.NoError(t, v.Validate(Project, []byte(`{
		"title": "Edge cache gateway",
		"status": "PUBLIC",
		"detailLevel": "DEEP",
		"tags": ["go", "caching"],
		"media": [{"type": "image", "url": "/img/cache.png", "caption": "Topology"}]
	}`)))

	err := v.Validate(Project, []byte(`{
		"summary": "no title",
		"status": "SECRET",
		"slug": "!!!",
		"media": [{"type": "image", "url": "javascript:alert(1)"}]
	}`))
	require.Error(t, err)
	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["title"])
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "media.0.url")
	assert.True(t, errors.Is(err, types.ErrValidation))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	v := MustNew()
	err := v.Validate(WritingItem, []byte(`{"language": "FR", "orderIndex": "first"}`))
	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["title"])
	assert.Equal(t, "is required", fields["url"])
	assert.Contains(t, fields, "language")
	assert.Contains(t, fields, "orderIndex")
}

func TestValidateWritingItemURL(t *testing.T) {
	v := MustNew()
	assert.NoError(t, v.Validate(WritingItem, []byte(`{"title": "Post", "url": "https://example.com/post"}`)))

	fields := fieldsOf(t, v.Validate(WritingItem, []byte(`{"title": "Post", "url": "ftp://example.com"}`)))
	assert.Contains(t, fields["url"], "URL")
}

func TestValidateMalformedJSON(t *testing.T) {
	v := MustNew()
	fields := fieldsOf(t, v.Validate(Category, []byte(`{"name": `)))
	assert.Equal(t, "body must be valid JSON", fields[""])
}

func TestValidateNumbers(t *testing.T) {
	v := MustNew()
	assert.NoError(t, v.Validate(Category, []byte(`{"name": "Talks", "orderIndex": 2}`)))
	assert.NoError(t, v.Validate(Category, []byte(`{"name": "Talks", "orderIndex": 12345678901}`)))

	fields := fieldsOf(t, v.Validate(Category, []byte(`{"name": "Talks", "orderIndex": 2.5}`)))
	assert.Contains(t, fields, "orderIndex")

	fields = fieldsOf(t, v.Validate(Category, []byte(`{"name": "Talks"} {"name": "Again"}`)))
	assert.Equal(t, "body must be valid JSON", fields[""])
}

func TestValidateSignIn(t *testing.T) {
	v := MustNew()
	assert.NoError(t, v.Validate(SignIn, []byte(`{"email": "owner@example.com", "password": "x"}`)))
	fields := fieldsOf(t, v.Validate(SignIn, []byte(`{"email": "not an address", "password": ""}`)))
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestValidateEvent(t *testing.T) {
	v := MustNew()
	assert.NoError(t, v.Validate(Event, []byte(`{"kind": "page_view", "path": "/projects"}`)))
	fields := fieldsOf(t, v.Validate(Event, []byte(`{"kind": "scroll", "path": "projects"}`)))
	assert.Contains(t, fields, "kind")
	assert.Contains(t, fields, "path")
}

func TestDecode(t *testing.T) {
	v := MustNew()
	var in struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	require.NoError(t, v.Decode(Category, []byte(`{"name": "Talks", "enabled": true}`), &in))
	assert.Equal(t, "Talks", in.Name)
	assert.True(t, in.Enabled)

	assert.Error(t, v.Decode(Category, []byte(`{}`), &in))
}

func TestUnknownForm(t *testing.T) {
	err := MustNew().Validate(Form("nope"), []byte(`{}`))
	require.Error(t, err)
	var fe Errors
	assert.False(t, errors.As(err, &fe))
}

func TestErrorsMessage(t *testing.T) {
	err := Errors{{Field: "title", Message: "is required"}, {Message: "body must be valid JSON"}}
	assert.Equal(t, "validation failed: title: is required; body must be valid JSON", err.Error())
}

func TestDecodeFormStrings(t *testing.T) {
	v := MustNew()

	var cat struct {
		Name       string        `json:"name"`
		OrderIndex types.FlexInt `json:"orderIndex"`
	}
	require.NoError(t, v.Decode(Category, []byte(`{"name": "Talks", "orderIndex": "3"}`), &cat))
	assert.Equal(t, 3, cat.OrderIndex.Int())

	var p struct {
		Title string                 `json:"title"`
		Tags  types.FlexList[string] `json:"tags"`
	}
	require.NoError(t, v.Decode(Project, []byte(`{"title": "Solo", "tags": "go"}`), &p))
	assert.Equal(t, []string{"go"}, p.Tags.Slice())
}
