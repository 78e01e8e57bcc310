package holidays

import (
	"context"
	"sort"
	"time"

	"github.com/enaran74/defrag-tracker/internal/logger"
	"github.com/enaran74/defrag-tracker/internal/models"
)

// Engine answers "which holiday periods overlap this date range" for a
// region, over a forward-looking window. Calendar fetches are cached per
// (region, year) for the life of the process. All upstream failures degrade
// to empty results: holiday enrichment is best-effort and must never block
// move creation.
type Engine struct {
	source Source
	cache  *calendarCache
	log    *logger.Logger
}

// NewEngine creates an Engine backed by the given calendar source.
func NewEngine(source Source, log *logger.Logger) *Engine {
	return &Engine{
		source: source,
		cache:  newCalendarCache(),
		log:    log,
	}
}

// PublicHolidays returns the public holidays for a region and year,
// deduplicated and ascending by date. Empty on upstream failure.
func (e *Engine) PublicHolidays(ctx context.Context, region string, year int) []PublicHoliday {
	return e.calendar(ctx, region, year).public
}

// SchoolHolidays returns the school holiday terms for a region and year,
// ascending by start date. Empty on upstream failure.
func (e *Engine) SchoolHolidays(ctx context.Context, region string, year int) []SchoolHoliday {
	return e.calendar(ctx, region, year).school
}

// calendar returns the cached calendars for (region, year), fetching them on
// first use. Failed fetches are not cached so a transient outage does not
// poison the process-lifetime cache.
func (e *Engine) calendar(ctx context.Context, region string, year int) calendarEntry {
	if entry, ok := e.cache.get(region, year); ok {
		return entry
	}

	var entry calendarEntry
	complete := true

	public, err := e.source.PublicHolidays(ctx, region, year)
	if err != nil {
		e.log.Warn("Public holiday fetch failed, continuing without", map[string]interface{}{
			"region": region,
			"year":   year,
			"error":  err.Error(),
		})
		complete = false
	} else {
		entry.public = public
	}

	school, err := e.source.SchoolHolidays(ctx, region, year)
	if err != nil {
		e.log.Warn("School holiday fetch failed, continuing without", map[string]interface{}{
			"region": region,
			"year":   year,
			"error":  err.Error(),
		})
		complete = false
	} else {
		entry.school = school
	}

	if complete {
		e.cache.set(region, year, entry)
	}
	return entry
}

// CombinedForwardPeriods merges public and school holiday calendars into a
// single sequence of labeled periods whose start dates fall within
// [from, from+window), sorted ascending by start date. Each public holiday
// becomes a one-day period; school terms keep their full range. Overlapping
// periods of different type are both retained.
func (e *Engine) CombinedForwardPeriods(ctx context.Context, region string, from time.Time, window time.Duration) []models.HolidayPeriod {
	until := from.Add(window)

	periods := make([]models.HolidayPeriod, 0, 16)
	for year := from.Year(); year <= until.Year(); year++ {
		entry := e.calendar(ctx, region, year)

		for _, ph := range entry.public {
			period := models.HolidayPeriod{
				Name:      ph.Name,
				Type:      models.HolidayPublic,
				Region:    region,
				StartDate: ph.Date,
				EndDate:   ph.Date,
			}
			period.Importance = importanceOf(&period)
			periods = append(periods, period)
		}

		for _, sh := range entry.school {
			period := models.HolidayPeriod{
				Name:      sh.Name,
				Type:      models.HolidaySchool,
				Region:    region,
				StartDate: sh.StartDate,
				EndDate:   sh.EndDate,
			}
			period.Importance = importanceOf(&period)
			periods = append(periods, period)
		}
	}

	filtered := periods[:0]
	for _, p := range periods {
		if !p.StartDate.Before(from) && p.StartDate.Before(until) {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartDate.Before(filtered[j].StartDate)
	})

	return filtered
}

// SelectPeriod picks the period that should tag a move covering the
// inclusive date range [from, to]: the highest-importance overlapping
// period, ties broken by earliest start date. Returns nil when nothing
// overlaps.
func SelectPeriod(periods []models.HolidayPeriod, from, to time.Time) *models.HolidayPeriod {
	var best *models.HolidayPeriod
	for i := range periods {
		p := &periods[i]
		if !p.Overlaps(from, to) {
			continue
		}
		if best == nil ||
			p.Importance > best.Importance ||
			(p.Importance == best.Importance && p.StartDate.Before(best.StartDate)) {
			best = p
		}
	}
	return best
}

// importanceOf assigns the fixed priority rank: multi-day public periods
// above single-day public holidays, above school terms.
func importanceOf(p *models.HolidayPeriod) int {
	switch {
	case p.Type == models.HolidayPublic && p.MultiDay():
		return models.ImportanceMultiDayPublic
	case p.Type == models.HolidayPublic:
		return models.ImportanceSinglePublic
	default:
		return models.ImportanceSchool
	}
}
