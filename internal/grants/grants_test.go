package grants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/david/grantwise/internal/models"
)

func TestDecodeEligibility(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{"empty", "", "Not specified"},
		{"single", "00", "State governments"},
		{"multiple", "12|25", "Nonprofits having a 501(c)(3) status with the IRS, other than institutions of higher education, Others"},
		{"unknown passes through", "99", "99"},
		{"mixed", "21|99", "Individuals, 99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeEligibility(tt.code); got != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestHTMLToText(t *testing.T) {
	html := "<p>Applicants  must be</p>\n<script>alert(\"x\")</script>\n<p><b>registered</b> nonprofits.</p>"
	got := HTMLToText(html)
	expected := "Applicants must be registered nonprofits."
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 10); got != "short" {
		t.Fatalf("short strings pass through, got %q", got)
	}
	if got := TruncateText("a long description", 10); got != "a long ..." {
		t.Fatalf("expected ellipsis truncation, got %q", got)
	}
}

func TestClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var criteria SearchCriteria
		if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if criteria.Keyword != "education youth" {
			t.Fatalf("unexpected keyword %q", criteria.Keyword)
		}

		resp := map[string]interface{}{
			"errorcode": 0,
			"data": map[string]interface{}{
				"hitCount": 2,
				"oppHits": []map[string]interface{}{
					{
						"id":        "358001",
						"number":    "ED-GRANTS-052026-001",
						"title":     "Youth Literacy Program",
						"agency":    "Department of Education",
						"openDate":  "05/01/2026",
						"closeDate": "09/30/2026",
					},
					{
						// Untitled hits are dropped.
						"id": "358002",
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient()
	client.SearchURL = srv.URL
	client.EnrichDetails = false

	grants, total, err := client.Search(context.Background(), SearchCriteria{Keyword: "education youth", Rows: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected hit count 2, got %d", total)
	}
	if len(grants) != 1 {
		t.Fatalf("expected 1 usable grant, got %d", len(grants))
	}

	g := grants[0]
	if g.ID != "358001" || g.Number != "ED-GRANTS-052026-001" {
		t.Fatalf("unexpected identity: %+v", g)
	}
	if g.CloseDate == nil || !g.CloseDate.Equal(time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("close date not parsed: %v", g.CloseDate)
	}
	if g.CloseDateRaw != "09/30/2026" {
		t.Fatalf("raw close date lost: %q", g.CloseDateRaw)
	}
	if !strings.Contains(g.URL, "358001") {
		t.Fatalf("detail URL missing id: %q", g.URL)
	}
}

func TestClientSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errorcode": 5,
			"msg":       "rate limited",
		})
	}))
	defer srv.Close()

	client := NewClient()
	client.SearchURL = srv.URL

	if _, _, err := client.Search(context.Background(), SearchCriteria{}); err == nil {
		t.Fatal("expected error for non-zero errorcode")
	}
}

type fakeSearcher struct {
	criteria SearchCriteria
	grants   []models.GrantOpportunity
}

func (f *fakeSearcher) Search(ctx context.Context, criteria SearchCriteria) ([]models.GrantOpportunity, int, error) {
	f.criteria = criteria
	return f.grants, len(f.grants), nil
}

func TestMatcherFindMatching(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(60 * 24 * time.Hour)
	ceiling := 100000.0

	fake := &fakeSearcher{
		grants: []models.GrantOpportunity{
			{ID: "weak", Title: "Unrelated infrastructure notice"},
			{ID: "strong", Title: "Community education initiative", Category: "Education",
				CloseDate: &future, AwardCeiling: &ceiling,
				Eligibility: "Nonprofits having a 501(c)(3) status with the IRS"},
		},
	}
	matcher := &Matcher{Search: fake, Now: func() time.Time { return now }}

	project := models.ProjectDescription{
		ProjectName: "Community Education Initiative",
		Mission:     "Expand adult education in our community",
		Budget:      "$25,000",
	}

	results, err := matcher.FindMatching(context.Background(), project)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fake.criteria.Keyword != "education community development" {
		t.Fatalf("unexpected search keyword %q", fake.criteria.Keyword)
	}
	if fake.criteria.FundingCategories != "ED" {
		t.Fatalf("unexpected category %q", fake.criteria.FundingCategories)
	}
	if fake.criteria.Eligibilities != "25" {
		t.Fatalf("unexpected eligibility %q", fake.criteria.Eligibilities)
	}
	if fake.criteria.Rows != 50 {
		t.Fatalf("unexpected rows %d", fake.criteria.Rows)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "strong" {
		t.Fatalf("expected strong match first, got %q", results[0].ID)
	}
	if results[0].RelevanceScore <= results[1].RelevanceScore {
		t.Fatalf("scores not descending: %d, %d", results[0].RelevanceScore, results[1].RelevanceScore)
	}
	if len(results[0].MatchReasons) == 0 {
		t.Fatal("expected match reasons for strong match")
	}
}
