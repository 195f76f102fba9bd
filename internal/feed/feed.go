// Package feed turns a set of problems into the ordered list a user browses.
//
// Assemble is a pure function: it filters by industry, then by search text,
// then sorts. It never touches the caller's slice, holds no state between
// calls, and is safe to call from any number of request goroutines at once.
package feed

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sakif/problemspark/internal/model"
)

// AllIndustries is the industry filter value that disables industry filtering.
const AllIndustries = "all"

// TrendingDivisor scales a problem's creation time (epoch milliseconds) before
// it is added to the vote delta for the trending score. With this divisor a
// day of recency is worth 0.00864 of a vote.
const TrendingDivisor = 10_000_000_000

// SortOption selects the feed ordering.
type SortOption string

const (
	SortPopular  SortOption = "popular"
	SortNewest   SortOption = "newest"
	SortTrending SortOption = "trending"
)

// SortOptions lists the supported orderings in display order.
var SortOptions = []SortOption{SortPopular, SortNewest, SortTrending}

// ParseSort normalizes a user-supplied sort value. Unknown values are
// returned as-is; Assemble leaves the order untouched for them.
func ParseSort(s string) SortOption {
	return SortOption(strings.ToLower(strings.TrimSpace(s)))
}

// Options controls Assemble.
type Options struct {
	// Industry is AllIndustries (or empty) for no filtering, otherwise an
	// exact, case-sensitive industry label.
	Industry string
	// Query filters on a case-insensitive substring of title or description.
	Query string
	Sort  SortOption
}

// Assemble filters and sorts problems according to opts and returns a new slice.
//
// Unknown industries yield an empty result and unknown sort options leave the
// filtered order as it was. Neither is an error.
func Assemble(problems []model.Problem, opts Options) []model.Problem {
	result := make([]model.Problem, 0, len(problems))

	query := strings.ToLower(opts.Query)
	for _, p := range problems {
		if !matchesIndustry(p, opts.Industry) {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		result = append(result, p)
	}

	switch opts.Sort {
	case SortPopular:
		slices.SortStableFunc(result, func(a, b model.Problem) int {
			return cmp.Compare(b.Score(), a.Score())
		})
	case SortNewest:
		slices.SortStableFunc(result, func(a, b model.Problem) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortTrending:
		slices.SortStableFunc(result, func(a, b model.Problem) int {
			return cmp.Compare(TrendingScore(b), TrendingScore(a))
		})
	}

	return result
}

// TrendingScore blends popularity and recency:
//
//	(upvotes - downvotes) + createdAtEpochMillis / TrendingDivisor
func TrendingScore(p model.Problem) float64 {
	return float64(p.Score()) + float64(p.CreatedAt.UnixMilli())/TrendingDivisor
}

// Paginate returns at most limit problems starting at offset, as a new slice.
// A limit of zero or less means no upper bound. Out-of-range offsets give an
// empty slice.
func Paginate(problems []model.Problem, limit, offset int) []model.Problem {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(problems) {
		return []model.Problem{}
	}
	end := len(problems)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return slices.Clone(problems[offset:end])
}

func matchesIndustry(p model.Problem, industry string) bool {
	if industry == "" || industry == AllIndustries {
		return true
	}
	return string(p.Industry) == industry
}

// matchesQuery expects query to be lowercased already.
func matchesQuery(p model.Problem, query string) bool {
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Description), query)
}
