package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"mediguide-backend/internal/models"
)

type fakeLabelSearcher struct {
	results []models.DrugSuggestion
	err     error
	calls   int
}

func (f *fakeLabelSearcher) SearchLabels(ctx context.Context, term string, limit int) ([]models.DrugSuggestion, error) {
	f.calls++
	return f.results, f.err
}

func newTestDrugService(labels *fakeLabelSearcher) *DrugService {
	return NewDrugService(labels, nil, time.Minute, discardLogger())
}

func TestSearch_FiltersByNameSubstringCaseInsensitive(t *testing.T) {
	labels := &fakeLabelSearcher{results: []models.DrugSuggestion{
		{Name: "Metformin Hydrochloride"},
		{Name: "METFORMIN ER"},
		{Name: "Lisinopril"},
		{Name: "Glyburide-Metformin"},
	}}
	s := newTestDrugService(labels)

	got, err := s.Search(context.Background(), "metFORmin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(got))
	}
	for _, sug := range got {
		if !strings.Contains(strings.ToLower(sug.Name), "metformin") {
			t.Errorf("Suggestion %q does not contain the query", sug.Name)
		}
	}
}

func TestSearch_DeduplicatesByName(t *testing.T) {
	labels := &fakeLabelSearcher{results: []models.DrugSuggestion{
		{Name: "Aspirin", GenericName: "ASPIRIN"},
		{Name: "ASPIRIN", GenericName: "ASPIRIN"},
		{Name: "Aspirin Low Dose"},
	}}
	s := newTestDrugService(labels)

	got, err := s.Search(context.Background(), "aspirin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected case-insensitive dedupe to 2 suggestions, got %d", len(got))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newTestDrugService(&fakeLabelSearcher{})

	if _, err := s.Search(context.Background(), "   "); err == nil {
		t.Fatal("Expected error for blank query")
	}
}

func TestSearch_NilCacheStillWorks(t *testing.T) {
	labels := &fakeLabelSearcher{results: []models.DrugSuggestion{{Name: "Ozempic"}}}
	s := newTestDrugService(labels)

	for i := 0; i < 2; i++ {
		got, err := s.Search(context.Background(), "ozempic")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 suggestion, got %d", len(got))
		}
	}

	// Without a cache every call reaches the label API.
	if labels.calls != 2 {
		t.Errorf("Expected 2 upstream calls with caching disabled, got %d", labels.calls)
	}
}
