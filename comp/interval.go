/*
interval.go - Interval normalization and data-quality checks

PURPOSE:
  Converts a raw WorkInterval into worked hours, clamping malformed data
  to zero instead of letting negative hours leak into the balance. Every
  clamp is reported as a DataQualityIssue so the caller can surface it.

DATA-QUALITY RULES:
  - End before start: worked hours clamp to zero, issue "end_before_start"
  - Negative break: break treated as zero, issue "negative_break"
  - Break exceeding the interval: hours clamp to zero, issue "break_exceeds_duration"

  Letting negative hours through would silently drain balances, so every
  malformed interval clamps to zero and carries a warning instead.
*/
package comp

import (
	"fmt"
	"time"
)

// =============================================================================
// DATA QUALITY
// =============================================================================

type IssueCode string

const (
	IssueEndBeforeStart       IssueCode = "end_before_start"
	IssueNegativeBreak        IssueCode = "negative_break"
	IssueBreakExceedsDuration IssueCode = "break_exceeds_duration"
)

// DataQualityIssue flags a malformed interval that was clamped rather than
// allowed to corrupt the balance.
type DataQualityIssue struct {
	IntervalID IntervalID
	Code       IssueCode
	Message    string
}

func (i DataQualityIssue) String() string {
	return fmt.Sprintf("%s: %s (interval %s)", i.Code, i.Message, i.IntervalID)
}

// =============================================================================
// WORKED HOURS
// =============================================================================

// WorkedHours returns the net hours of a closed interval:
// (end - start in minutes - break minutes) / 60, clamped at zero.
//
// The returned issues are non-nil only when clamping occurred.
// Calling WorkedHours on an open interval returns zero hours and no issues;
// open intervals should be filtered out before computation.
func WorkedHours(iv WorkInterval) (Amount, []DataQualityIssue) {
	if iv.End == nil {
		return Hours(0), nil
	}

	var issues []DataQualityIssue

	breakMinutes := iv.BreakMinutes
	if breakMinutes < 0 {
		issues = append(issues, DataQualityIssue{
			IntervalID: iv.ID,
			Code:       IssueNegativeBreak,
			Message:    fmt.Sprintf("break of %d minutes treated as zero", breakMinutes),
		})
		breakMinutes = 0
	}

	grossMinutes := int64(iv.End.Sub(iv.Start) / time.Minute)
	if grossMinutes < 0 {
		issues = append(issues, DataQualityIssue{
			IntervalID: iv.ID,
			Code:       IssueEndBeforeStart,
			Message:    fmt.Sprintf("end %s precedes start %s", iv.End.Format(time.RFC3339), iv.Start.Format(time.RFC3339)),
		})
		return Hours(0), issues
	}

	netMinutes := grossMinutes - int64(breakMinutes)
	if netMinutes < 0 {
		issues = append(issues, DataQualityIssue{
			IntervalID: iv.ID,
			Code:       IssueBreakExceedsDuration,
			Message:    fmt.Sprintf("break of %d minutes exceeds %d worked minutes", breakMinutes, grossMinutes),
		})
		return Hours(0), issues
	}

	return HoursFromMinutes(netMinutes), issues
}

// =============================================================================
// CLASSIFICATION PREDICATES
// =============================================================================
// All predicates operate on a CLOSED interval; callers filter open ones.

// startsOnWeekend reports whether the interval starts on Saturday or Sunday.
func startsOnWeekend(iv WorkInterval) bool {
	wd := iv.Start.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// touchesEvening reports whether either endpoint falls at or after the
// evening boundary. Weekend exclusion is handled by the caller.
func touchesEvening(iv WorkInterval, p PremiumPolicy) bool {
	return iv.Start.Hour() >= p.EveningStartHour || iv.End.Hour() >= p.EveningStartHour
}

// touchesNight reports whether either endpoint falls in the night window
// (hour >= NightStartHour or hour < NightEndHour).
func touchesNight(iv WorkInterval, p PremiumPolicy) bool {
	return isNightHour(iv.Start.Hour(), p) || isNightHour(iv.End.Hour(), p)
}

func isNightHour(hour int, p PremiumPolicy) bool {
	return hour >= p.NightStartHour || hour < p.NightEndHour
}
