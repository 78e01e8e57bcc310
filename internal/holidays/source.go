// Package holidays merges public and school holiday calendars into a
// forward-looking window of labeled periods used to prioritize defrag moves.
// The upstream calendar source is untrusted and possibly unavailable;
// everything in this package degrades to empty results rather than failing.
package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// PublicHoliday is a single-day public holiday as returned by the calendar
// source.
type PublicHoliday struct {
	Date time.Time
	Name string
}

// SchoolHoliday is a school holiday term with an inclusive date range.
type SchoolHoliday struct {
	StartDate time.Time
	EndDate   time.Time
	Name      string
}

// Source supplies raw holiday calendars per (region, year). Implementations
// must treat the calendar provider as untrusted: malformed payloads are
// errors, not panics.
type Source interface {
	PublicHolidays(ctx context.Context, region string, year int) ([]PublicHoliday, error)
	SchoolHolidays(ctx context.Context, region string, year int) ([]SchoolHoliday, error)
}

const dateLayout = "2006-01-02"

// CalendarClient is the HTTP implementation of Source. It applies its own
// bounded timeout so a slow calendar provider can never stall move creation.
type CalendarClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCalendarClient builds a client for the calendar API at baseURL.
func NewCalendarClient(baseURL string, timeout time.Duration) *CalendarClient {
	return &CalendarClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// wire types: the API serves dates as YYYY-MM-DD strings.
type publicHolidayDoc struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type schoolHolidayDoc struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PublicHolidays fetches the public holiday calendar for a region and year,
// deduplicated and sorted ascending by date.
func (c *CalendarClient) PublicHolidays(ctx context.Context, region string, year int) ([]PublicHoliday, error) {
	url := fmt.Sprintf("%s/v1/holidays/public/%s/%d", c.baseURL, region, year)

	var docs []publicHolidayDoc
	if err := c.getJSON(ctx, url, &docs); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(docs))
	holidays := make([]PublicHoliday, 0, len(docs))
	for _, doc := range docs {
		date, err := time.Parse(dateLayout, doc.Date)
		if err != nil {
			return nil, fmt.Errorf("malformed public holiday date %q: %w", doc.Date, err)
		}
		key := doc.Date + "|" + doc.Name
		if seen[key] {
			continue
		}
		seen[key] = true
		holidays = append(holidays, PublicHoliday{Date: date, Name: doc.Name})
	}

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})

	return holidays, nil
}

// SchoolHolidays fetches the school holiday terms for a region and year,
// sorted ascending by start date.
func (c *CalendarClient) SchoolHolidays(ctx context.Context, region string, year int) ([]SchoolHoliday, error) {
	url := fmt.Sprintf("%s/v1/holidays/school/%s/%d", c.baseURL, region, year)

	var docs []schoolHolidayDoc
	if err := c.getJSON(ctx, url, &docs); err != nil {
		return nil, err
	}

	holidays := make([]SchoolHoliday, 0, len(docs))
	for _, doc := range docs {
		start, err := time.Parse(dateLayout, doc.StartDate)
		if err != nil {
			return nil, fmt.Errorf("malformed school holiday start %q: %w", doc.StartDate, err)
		}
		end, err := time.Parse(dateLayout, doc.EndDate)
		if err != nil {
			return nil, fmt.Errorf("malformed school holiday end %q: %w", doc.EndDate, err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("school holiday %q ends before it starts", doc.Name)
		}
		holidays = append(holidays, SchoolHoliday{Name: doc.Name, StartDate: start, EndDate: end})
	}

	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].StartDate.Before(holidays[j].StartDate)
	})

	return holidays, nil
}

func (c *CalendarClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build calendar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar source unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calendar source returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed calendar payload: %w", err)
	}
	return nil
}
