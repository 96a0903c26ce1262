package analysis

// Health labels are driven by fixed numeric thresholds. They are kept in
// ordered tables here, in one place, so the bands stay auditable; each
// surface has its own vocabulary for historical reasons.

// upperBand labels values strictly below Max; the first match wins.
type upperBand struct {
	Max   float64
	Label string
}

// lowerBand labels values at or above Min; the first match wins.
type lowerBand struct {
	Min   float64
	Label string
}

// City-wide health by the share of always-degraded vehicles.
var cityHealthBands = []upperBand{
	{Max: 2, Label: "excellent"},
	{Max: 5, Label: "good"},
	{Max: 10, Label: "borderline"},
}

const cityHealthWorst = "concerning"

// Per-site health by the same share, site vocabulary.
var siteHealthBands = []upperBand{
	{Max: 2, Label: "very healthy"},
	{Max: 5, Label: "healthy"},
	{Max: 10, Label: "borderline"},
}

const siteHealthWorst = "suspicious"

// Site-day status by good-rate percentage.
var siteDayBands = []lowerBand{
	{Min: 90, Label: "healthy"},
	{Min: 80, Label: "slightly degraded"},
	{Min: 60, Label: "borderline"},
}

const siteDayWorst = "heavily degraded"

// Trip-set quality by the global minimum quality across trips.
var tripQualityBands = []lowerBand{
	{Min: 0.7, Label: "consistently good quality across trips"},
	{Min: 0.5, Label: "mostly acceptable, with some weaker segments"},
	{Min: 0.3, Label: "mixed and often weak quality"},
}

const tripQualityWorst = "frequently very poor quality"

func labelBelow(bands []upperBand, v float64, worst string) string {
	for _, b := range bands {
		if v < b.Max {
			return b.Label
		}
	}
	return worst
}

func labelAtLeast(bands []lowerBand, v float64, worst string) string {
	for _, b := range bands {
		if v >= b.Min {
			return b.Label
		}
	}
	return worst
}
