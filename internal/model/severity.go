package model

import "strings"

// Impact is the severity axe-core attaches to a violated rule.
//
// Only four buckets are tallied. Any other value, including a missing
// impact, maps to ImpactUnknown: it still counts toward a page's total
// violations but not toward any bucket.
type Impact int

const (
	// ImpactUnknown is any impact outside the four tracked buckets.
	ImpactUnknown Impact = iota

	// ImpactMinor is a small inconvenience for assistive technology users.
	ImpactMinor

	// ImpactModerate makes content harder, but not impossible, to use.
	ImpactModerate

	// ImpactSerious seriously hampers some users.
	ImpactSerious

	// ImpactCritical blocks some users from the content entirely.
	ImpactCritical
)

// Impacts lists the tracked buckets from most to least severe.
// Reports render columns in this order.
var Impacts = []Impact{ImpactCritical, ImpactSerious, ImpactModerate, ImpactMinor}

// ParseImpact maps an axe-core impact string to an Impact.
// Matching is exact on the lower-cased, trimmed value.
func ParseImpact(s string) Impact {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return ImpactCritical
	case "serious":
		return ImpactSerious
	case "moderate":
		return ImpactModerate
	case "minor":
		return ImpactMinor
	default:
		return ImpactUnknown
	}
}

// String returns the axe-core spelling of the impact.
func (i Impact) String() string {
	switch i {
	case ImpactCritical:
		return "critical"
	case ImpactSerious:
		return "serious"
	case ImpactModerate:
		return "moderate"
	case ImpactMinor:
		return "minor"
	default:
		return "unknown"
	}
}

// Classification is the CSS class a count is rendered with in the HTML summary.
type Classification string

const (
	// ClassClear marks a zero count.
	ClassClear Classification = "clear"

	// ClassLow marks one or two issues.
	ClassLow Classification = "low"

	// ClassHigh marks three or more issues.
	ClassHigh Classification = "high"
)

// highThreshold is the first count classified as ClassHigh.
const highThreshold = 3

// Classify returns the classification of a count. It is applied
// independently to a page's total and to each impact bucket.
// Negative counts never occur and are treated as zero.
func Classify(count int) Classification {
	switch {
	case count <= 0:
		return ClassClear
	case count < highThreshold:
		return ClassLow
	default:
		return ClassHigh
	}
}
