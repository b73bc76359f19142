package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("loading: %w", NewError(KindSchemaMissing, "settings", "relation does not exist", nil))

	if !errors.Is(err, ErrSchemaMissing) {
		t.Error("Expected wrapped error to match ErrSchemaMissing")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("Did not expect wrapped error to match ErrNotFound")
	}
	if got := KindOf(err); got != KindSchemaMissing {
		t.Errorf("Expected kind %q, got %q", KindSchemaMissing, got)
	}
}

func TestKindOfForeignAndNil(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("Expected empty kind for nil, got %q", got)
	}
	if got := KindOf(errors.New("boom")); got != KindBackend {
		t.Errorf("Expected backend kind for foreign error, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(KindNotFound, "projectBySlug", "", errors.New("record not found"))
	if err.Error() != "projectBySlug: record not found" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if ErrConflict.Error() != "conflict" {
		t.Errorf("Unexpected sentinel message %q", ErrConflict.Error())
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[Kind]int{
		"":                   http.StatusOK,
		KindConfigMissing:    http.StatusServiceUnavailable,
		KindSchemaMissing:    http.StatusServiceUnavailable,
		KindPermissionDenied: http.StatusForbidden,
		KindNotFound:         http.StatusNotFound,
		KindConflict:         http.StatusConflict,
		KindValidation:       http.StatusUnprocessableEntity,
		KindBackend:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := StatusFor(kind); got != want {
			t.Errorf("StatusFor(%q) = %d, want %d", kind, got, want)
		}
	}
}

func TestFlexList(t *testing.T) {
	var payload struct {
		Tags FlexList[string] `json:"tags"`
	}

	if err := json.Unmarshal([]byte(`{"tags":"go"}`), &payload); err != nil {
		t.Fatalf("Failed to unmarshal single value: %v", err)
	}
	if len(payload.Tags) != 1 || payload.Tags[0] != "go" {
		t.Errorf("Expected [go], got %v", payload.Tags.Slice())
	}

	if err := json.Unmarshal([]byte(`{"tags":["go","fiber"]}`), &payload); err != nil {
		t.Fatalf("Failed to unmarshal array: %v", err)
	}
	if len(payload.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", payload.Tags.Slice())
	}
}

func TestFlexInt(t *testing.T) {
	var payload struct {
		Order FlexInt `json:"order"`
	}

	for input, want := range map[string]int{
		`{"order":3}`:   3,
		`{"order":"7"}`: 7,
		`{"order":""}`:  0,
	} {
		payload.Order = -1
		if err := json.Unmarshal([]byte(input), &payload); err != nil {
			t.Fatalf("Failed to unmarshal %s: %v", input, err)
		}
		if payload.Order.Int() != want {
			t.Errorf("%s: expected %d, got %d", input, want, payload.Order.Int())
		}
	}

	if err := json.Unmarshal([]byte(`{"order":"seven"}`), &payload); err == nil {
		t.Error("Expected error for non-numeric string")
	}
}
