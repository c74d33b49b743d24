package arcablock

import (
	"fmt"
	"regexp"
	"time"

	"github.com/nokduro/arcablock/utils"
)

// Filter is a predicate over blocked-user records. Active filters are
// conjunctive: a record survives only if every filter keeps it.
type Filter interface {
	Check(*BlockedUser) bool // Check reports whether the record should be kept.
}

// OneYearFilter keeps records whose block span has exactly a 1-year component.
type OneYearFilter struct{}

// Check reports whether the record's duration breakdown has one year.
func (f *OneYearFilter) Check(user *BlockedUser) bool {
	return user.Diff.Years == 1
}

// TypeFilter is a whitelist over the record type. With neither flag set the
// filter keeps everything, so an unconfigured pair does not hide the listing.
type TypeFilter struct {
	ShowArticle bool // Keep article blocks.
	ShowComment bool // Keep comment blocks.
}

// Check reports whether the record's type is whitelisted.
func (f *TypeFilter) Check(user *BlockedUser) bool {
	if !f.ShowArticle && !f.ShowComment {
		return true
	}
	return (f.ShowArticle && user.IsArticle) || (f.ShowComment && user.IsComment)
}

// ReasonRegexFilter matches the block reason against a pattern. With Exclude
// set, matches are dropped instead of kept.
type ReasonRegexFilter struct {
	Pattern *regexp.Regexp // Pattern applied to the reason.
	Exclude bool           // Invert the match.
}

// Check reports whether the record's reason passes the pattern.
func (f *ReasonRegexFilter) Check(user *BlockedUser) bool {
	matched := f.Pattern.MatchString(user.Reason)
	if f.Exclude {
		return !matched
	}
	return matched
}

// ReasonLikeFilter keeps records whose reason is similar to a reference text,
// catching hand-typed variants of the same reason that a regex would miss.
type ReasonLikeFilter struct {
	Reason    string  // Reference reason text.
	Threshold float64 // Minimum similarity ratio in [0, 1].
}

// Check reports whether the record's reason is close enough to the reference.
func (f *ReasonLikeFilter) Check(user *BlockedUser) bool {
	return utils.Similarity(user.Reason, f.Reason) >= f.Threshold
}

// RemainingDaysFilter keeps records whose block ends within Max days of Now.
type RemainingDaysFilter struct {
	Max int       // Ceiling in days.
	Now time.Time // Reference time, site-local zone.
}

// Check reports whether the record's remaining time is within the ceiling.
func (f *RemainingDaysFilter) Check(user *BlockedUser) bool {
	return utils.DaysUntil(f.Now, user.EndDate) <= float64(f.Max)
}

// FiltersFromConfig builds the active filter set from the configuration.
func FiltersFromConfig(config *Config, now time.Time) ([]Filter, error) {
	var filters []Filter

	if config.OnlyOneYear {
		filters = append(filters, &OneYearFilter{})
	}
	if config.ShowArticle || config.ShowComment {
		filters = append(filters, &TypeFilter{
			ShowArticle: config.ShowArticle,
			ShowComment: config.ShowComment,
		})
	}
	if config.ReasonRegex != "" {
		pattern, err := regexp.Compile(config.ReasonRegex)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
		filters = append(filters, &ReasonRegexFilter{Pattern: pattern})
	}
	if config.ReasonExcludeRegex != "" {
		pattern, err := regexp.Compile(config.ReasonExcludeRegex)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		}
		filters = append(filters, &ReasonRegexFilter{Pattern: pattern, Exclude: true})
	}
	if config.ReasonLike != "" {
		filters = append(filters, &ReasonLikeFilter{
			Reason:    config.ReasonLike,
			Threshold: REASON_LIKE_THRESHOLD,
		})
	}
	if config.LessThanDays > 0 {
		filters = append(filters, &RemainingDaysFilter{Max: config.LessThanDays, Now: now})
	}

	return filters, nil
}

// ApplyFilters returns the records passing every filter, preserving order.
func ApplyFilters(users []BlockedUser, filters []Filter) []BlockedUser {
	var kept []BlockedUser

	for _, user := range users {
		user := user
		pass := true
		for _, filter := range filters {
			if !filter.Check(&user) {
				pass = false
				break
			}
		}
		if pass {
			kept = append(kept, user)
		}
	}

	return kept
}
