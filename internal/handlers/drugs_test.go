package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediguide-backend/internal/middleware"
	"mediguide-backend/internal/models"
)

type fakeDrugSearcher struct {
	suggestions []models.DrugSuggestion
	err         error
	lastQuery   string
}

func (f *fakeDrugSearcher) Search(ctx context.Context, query string) ([]models.DrugSuggestion, error) {
	f.lastQuery = query
	return f.suggestions, f.err
}

func TestDrugSearch_MissingQueryReturns400(t *testing.T) {
	h := NewDrugHandler(&fakeDrugSearcher{}, discardLogger())

	for _, target := range []string{"/api/v1/drugs/search", "/api/v1/drugs/search?q=%20%20"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		h.Search(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rr.Code)
		}
		var resp models.ErrorResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Success || resp.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("%s: unexpected error payload %+v", target, resp)
		}
	}
}

func TestDrugSearch_ReturnsSuggestions(t *testing.T) {
	fake := &fakeDrugSearcher{suggestions: []models.DrugSuggestion{
		{Name: "Advil", GenericName: "Ibuprofen", DosageForm: "200 mg tablets", Route: "ORAL"},
	}}
	h := NewDrugHandler(fake, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drugs/search?q=advil", nil)
	rr := httptest.NewRecorder()
	h.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if fake.lastQuery != "advil" {
		t.Errorf("Expected trimmed query forwarded, got %q", fake.lastQuery)
	}

	var resp models.DrugSearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || len(resp.Suggestions) != 1 {
		t.Fatalf("Unexpected response %+v", resp)
	}
	if resp.Suggestions[0].GenericName != "Ibuprofen" {
		t.Errorf("Unexpected suggestion %+v", resp.Suggestions[0])
	}
}

func TestDrugSearch_NilSuggestionsEncodeAsEmptyList(t *testing.T) {
	h := NewDrugHandler(&fakeDrugSearcher{}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drugs/search?q=nosuchdrug", nil)
	rr := httptest.NewRecorder()
	h.Search(rr, req)

	var resp models.DrugSearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Suggestions == nil {
		t.Error("Expected empty list, got null")
	}
}

func TestDrugSearch_ErrorEnvelopeCarriesRequestID(t *testing.T) {
	h := NewDrugHandler(&fakeDrugSearcher{}, discardLogger())
	wrapped := middleware.RequestID(http.HandlerFunc(h.Search))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drugs/search", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error.RequestID == "" {
		t.Error("Expected the error envelope to carry the request ID")
	}
	if got := rr.Header().Get("X-Request-ID"); got != resp.Error.RequestID {
		t.Errorf("Envelope ID %q does not match response header %q", resp.Error.RequestID, got)
	}
}

func TestDrugSearch_UpstreamFailureReturns500(t *testing.T) {
	h := NewDrugHandler(&fakeDrugSearcher{err: fmt.Errorf("openfda timeout")}, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drugs/search?q=advil", nil)
	rr := httptest.NewRecorder()
	h.Search(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rr.Code)
	}
}
