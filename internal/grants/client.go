package grants

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/david/grantwise/internal/models"
)

// Client talks to the Grants.gov search2 API.
type Client struct {
	HTTPClient *http.Client
	SearchURL  string
	DetailURL  string

	// EnrichDetails controls whether each search hit gets a second
	// fetchOpportunity call for description, eligibility, and award amounts.
	EnrichDetails bool
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		SearchURL:     "https://api.grants.gov/v1/api/search2",
		DetailURL:     "https://api.grants.gov/v1/api/fetchOpportunity",
		EnrichDetails: true,
	}
}

// SearchCriteria matches the Grants.gov search2 API schema.
type SearchCriteria struct {
	Keyword           string `json:"keyword"`
	OppStatuses       string `json:"oppStatuses"`
	Eligibilities     string `json:"eligibilities,omitempty"`
	FundingCategories string `json:"fundingCategories,omitempty"`
	SortBy            string `json:"sortBy"`
	Rows              int    `json:"rows"`
	StartRecordNum    int    `json:"startRecordNum"`
}

// searchResponse represents the search2 API response (wrapped in "data").
type searchResponse struct {
	Data struct {
		HitCount    int      `json:"hitCount"`
		StartRecord int      `json:"startRecord"`
		OppHits     []Record `json:"oppHits"`
	} `json:"data"`
	ErrorCode int    `json:"errorcode"`
	Msg       string `json:"msg"`
}

// Record is a single search hit from Grants.gov.
type Record struct {
	ID         string   `json:"id"`
	Number     string   `json:"number"`
	Title      string   `json:"title"`
	Agency     string   `json:"agency"`
	AgencyCode string   `json:"agencyCode"`
	OpenDate   string   `json:"openDate"`
	CloseDate  string   `json:"closeDate"`
	OppStatus  string   `json:"oppStatus"`
	DocType    string   `json:"docType"`
	CFDAList   []string `json:"cfdaList"`
}

// Search runs one page of a search2 query and maps the hits to grant
// opportunities. The second return value is the total hit count, which is
// larger than the page when more rows exist.
func (c *Client) Search(ctx context.Context, criteria SearchCriteria) ([]models.GrantOpportunity, int, error) {
	jsonBody, err := json.Marshal(criteria)
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.SearchURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Printf("[GrantsGov] Searching keyword=%q category=%q rows=%d", criteria.Keyword, criteria.FundingCategories, criteria.Rows)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, 0, fmt.Errorf("decoding response: %w", err)
	}

	if apiResp.ErrorCode != 0 {
		return nil, 0, fmt.Errorf("API error: %s", apiResp.Msg)
	}

	log.Printf("[GrantsGov] Got %d opportunities (total: %d)", len(apiResp.Data.OppHits), apiResp.Data.HitCount)

	var grants []models.GrantOpportunity
	for _, rec := range apiResp.Data.OppHits {
		if rec.Title == "" {
			continue
		}

		grant := models.GrantOpportunity{
			ID:           rec.ID,
			Number:       rec.Number,
			Title:        rec.Title,
			Agency:       rec.Agency,
			CloseDateRaw: rec.CloseDate,
			URL:          fmt.Sprintf("https://www.grants.gov/search-results-detail/%s", rec.ID),
		}

		// Dates come as MM/DD/YYYY.
		if rec.OpenDate != "" {
			if t, err := time.Parse("01/02/2006", rec.OpenDate); err == nil {
				grant.OpenDate = &t
			}
		}
		if rec.CloseDate != "" {
			if t, err := time.Parse("01/02/2006", rec.CloseDate); err == nil {
				grant.CloseDate = &t
			}
		}

		if c.EnrichDetails {
			// Detail failures must not sink the whole batch.
			if err := c.enrich(ctx, &grant); err != nil {
				log.Printf("[GrantsGov] Failed to fetch details for %s: %v", rec.ID, err)
			}
		}

		grants = append(grants, grant)
	}

	return grants, apiResp.Data.HitCount, nil
}

// FetchDetails fetches the raw fetchOpportunity payload for one opportunity.
func (c *Client) FetchDetails(ctx context.Context, oppID string) (map[string]interface{}, error) {
	reqBody := map[string]string{"id": oppID}

	jsonBody, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.DetailURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result, nil
}

// enrich fills description, category, eligibility, and award amounts from
// the opportunity's synopsis.
func (c *Client) enrich(ctx context.Context, grant *models.GrantOpportunity) error {
	details, err := c.FetchDetails(ctx, grant.ID)
	if err != nil {
		return err
	}

	syn, ok := details["synopsis"].(map[string]interface{})
	if !ok {
		return nil
	}

	if desc, ok := syn["synopsisDesc"].(string); ok && desc != "" {
		grant.Description = HTMLToText(desc)
	}
	if elig, ok := syn["applicantEligibilityDesc"].(string); ok && elig != "" {
		grant.Eligibility = HTMLToText(elig)
	}
	if types, ok := syn["applicantTypes"].([]interface{}); ok && grant.Eligibility == "" {
		var codes []string
		for _, t := range types {
			if m, ok := t.(map[string]interface{}); ok {
				if id, ok := m["id"].(string); ok {
					codes = append(codes, id)
				}
			}
		}
		if len(codes) > 0 {
			grant.Eligibility = DecodeEligibility(strings.Join(codes, "|"))
		}
	}
	if funding, ok := syn["estimatedFunding"].(string); ok && funding != "" {
		grant.EstimatedFunding = funding
	}
	if cats, ok := syn["fundingActivityCategories"].([]interface{}); ok && len(cats) > 0 {
		if m, ok := cats[0].(map[string]interface{}); ok {
			if desc, ok := m["description"].(string); ok {
				grant.Category = desc
			}
		}
	}
	// Amounts arrive as strings with $ and thousands separators, or as
	// plain numbers.
	if v, ok := parseMoney(syn["awardCeiling"]); ok {
		grant.AwardCeiling = &v
	}
	if v, ok := parseMoney(syn["awardFloor"]); ok {
		grant.AwardFloor = &v
	}

	return nil
}

func parseMoney(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case string:
		clean := strings.ReplaceAll(strings.ReplaceAll(v, "$", ""), ",", "")
		if clean == "" {
			return 0, false
		}
		val, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return 0, false
		}
		return val, true
	case float64:
		return v, true
	}
	return 0, false
}
