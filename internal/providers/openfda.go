package providers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"mediguide-backend/internal/models"
)

// OpenFDAClient queries the public openFDA drug-label API.
type OpenFDAClient struct {
	baseURL string
	log     *slog.Logger
	client  *http.Client
}

func NewOpenFDAClient(baseURL string, log *slog.Logger) *OpenFDAClient {
	return &OpenFDAClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchLabels looks up drug labels matching the term by brand or generic
// name and reshapes each result into a DrugSuggestion. openFDA answers an
// empty search with 404, which is reported here as an empty list.
func (c *OpenFDAClient) SearchLabels(ctx context.Context, term string, limit int) ([]models.DrugSuggestion, error) {
	// The + joining the clauses is the query parser's OR separator and must
	// reach openFDA as a literal plus; only the quoted terms get escaped.
	quoted := url.QueryEscape(fmt.Sprintf("%q", term))
	query := fmt.Sprintf("openfda.brand_name:%s+openfda.generic_name:%s", quoted, quoted)
	u := fmt.Sprintf("%s/drug/label.json?search=%s&limit=%d", c.baseURL, query, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openFDA request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return nil, fmt.Errorf("openFDA search failed (%d): %s", res.StatusCode, string(body))
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read openFDA response: %w", err)
	}

	return reshapeLabels(body), nil
}

// reshapeLabels flattens the nested openFDA label payload into suggestions.
func reshapeLabels(body []byte) []models.DrugSuggestion {
	var suggestions []models.DrugSuggestion

	gjson.GetBytes(body, "results").ForEach(func(_, result gjson.Result) bool {
		name := result.Get("openfda.brand_name.0").String()
		if name == "" {
			name = result.Get("openfda.generic_name.0").String()
		}
		if name == "" {
			return true
		}

		suggestions = append(suggestions, models.DrugSuggestion{
			Name:        name,
			GenericName: result.Get("openfda.generic_name.0").String(),
			DosageForm:  result.Get("dosage_forms_and_strengths.0").String(),
			Route:       result.Get("openfda.route.0").String(),
		})
		return true
	})

	return suggestions
}
