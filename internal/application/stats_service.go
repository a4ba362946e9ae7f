package application

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/oksasatya/todo-calendar-api/internal/domain/entity"
	"github.com/oksasatya/todo-calendar-api/pkg/helpers"
)

type DayStat struct {
	Date      string  `json:"date"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

type CategoryStat struct {
	CategoryID *string `json:"categoryId"`
	Name       string  `json:"name"`
	Color      string  `json:"color,omitempty"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
}

type Stats struct {
	Total             int            `json:"total"`
	Completed         int            `json:"completed"`
	Pending           int            `json:"pending"`
	CompletionRate    int            `json:"completionRate"`
	ThisWeekTodos     int            `json:"thisWeekTodos"`
	ThisWeekCompleted int            `json:"thisWeekCompleted"`
	Last7Days         []DayStat      `json:"last7Days"`
	AvgPerDay         float64        `json:"avgPerDay"`
	BestDay           *DayStat       `json:"bestDay"`
	ByCategory        []CategoryStat `json:"byCategory"`
	TimeZone          string         `json:"timezone"`
}

const uncategorizedName = "Uncategorized"

type StatsService struct {
	Store Store
}

func NewStatsService(store Store) *StatsService {
	return &StatsService{Store: store}
}

// Get computes the owner's statistics with calendar days taken in loc.
func (s *StatsService) Get(ctx context.Context, ownerID string, now time.Time, loc *time.Location) (*Stats, error) {
	r := s.Store.Registry()
	todos, err := r.Todos.ListByOwner(ctx, ownerID, entity.TodoFilter{})
	if err != nil {
		return nil, err
	}
	cats, err := r.Categories.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	st := ComputeStats(todos, cats, now, loc)
	return &st, nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// ComputeStats aggregates todos. Todos whose date cannot be parsed count in
// the totals and per category but not in any day based figure.
func ComputeStats(todos []entity.Todo, cats []entity.Category, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	st := Stats{Total: len(todos), TimeZone: loc.String()}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)

	days := map[string]*DayStat{}
	for _, t := range todos {
		if t.Completed {
			st.Completed++
		}
		d, ok := helpers.ParseDate(t.Date, loc)
		if !ok {
			continue
		}
		key := helpers.DayKey(d, loc)
		ds := days[key]
		if ds == nil {
			ds = &DayStat{Date: key}
			days[key] = ds
		}
		ds.Total++
		if t.Completed {
			ds.Completed++
		}
		if !d.Before(weekStart) && d.Before(weekEnd) {
			st.ThisWeekTodos++
			if t.Completed {
				st.ThisWeekCompleted++
			}
		}
	}
	st.Pending = st.Total - st.Completed
	st.CompletionRate = int(math.Round(percent(st.Completed, st.Total)))

	st.Last7Days = make([]DayStat, 0, 7)
	for i := 6; i >= 0; i-- {
		key := helpers.DayKey(today.AddDate(0, 0, -i), loc)
		ds := DayStat{Date: key}
		if d := days[key]; d != nil {
			ds = *d
		}
		ds.Rate = percent(ds.Completed, ds.Total)
		st.Last7Days = append(st.Last7Days, ds)
	}

	if len(days) > 0 {
		dated := 0
		keys := make([]string, 0, len(days))
		for k, d := range days {
			keys = append(keys, k)
			dated += d.Total
		}
		st.AvgPerDay = math.Round(float64(dated)/float64(len(days))*10) / 10

		sort.Strings(keys)
		for _, k := range keys {
			d := days[k]
			d.Rate = percent(d.Completed, d.Total)
			if d.Rate > 0 && (st.BestDay == nil || d.Rate > st.BestDay.Rate) {
				best := *d
				st.BestDay = &best
			}
		}
	}

	st.ByCategory = categoryStats(todos, cats)
	return st
}

// categoryStats follows the category order given; todos pointing at no
// known category land in a trailing uncategorized bucket.
func categoryStats(todos []entity.Todo, cats []entity.Category) []CategoryStat {
	out := make([]CategoryStat, len(cats))
	index := make(map[string]int, len(cats))
	for i, c := range cats {
		id := c.ID
		out[i] = CategoryStat{CategoryID: &id, Name: c.Name, Color: c.Color}
		index[c.ID] = i
	}
	other := CategoryStat{Name: uncategorizedName}
	for _, t := range todos {
		bucket := &other
		if t.CategoryID != nil {
			if i, ok := index[*t.CategoryID]; ok {
				bucket = &out[i]
			}
		}
		bucket.Total++
		if t.Completed {
			bucket.Completed++
		}
	}
	if other.Total > 0 {
		out = append(out, other)
	}
	return out
}
