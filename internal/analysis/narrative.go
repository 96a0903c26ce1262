package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render turns a classified backend payload into the narrative answer shown
// to the user. It is a pure function of its inputs: identical arguments
// produce byte-identical output, and no payload shape makes it panic.
func Render(question string, cat Category, payload any) string {
	switch cat {
	case CategoryError:
		return renderError(question, asMap(payload))
	case CategoryCityTotals:
		return renderCityTotals(question, asMap(payload))
	case CategorySiteTotals:
		return renderSiteTotals(question, asMap(payload))
	case CategorySiteDayStatus:
		return renderSiteDayStatus(question, asMap(payload))
	case CategoryVehicleDegrade:
		return renderVehicleDegrade(question, asMap(payload))
	case CategoryTrips:
		return renderTrips(question, asList(payload))
	default:
		return renderUnknown(question, payload)
	}
}

func asMap(payload any) map[string]any {
	if m, ok := payload.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asList(payload any) []any {
	if l, ok := payload.([]any); ok {
		return l
	}
	return nil
}

func renderError(question string, m map[string]any) string {
	msg := getString(m, "error", "Unknown backend error.")
	return fmt.Sprintf(
		"I tried to answer your question:\n\n"+
			"  %q\n\n"+
			"but the backend returned an error:\n\n"+
			"  %s\n\n"+
			"This usually means there is no data for that day/site/plate combination "+
			"or the identifiers don't exist in the twin.",
		question, msg)
}

func renderCityTotals(question string, m map[string]any) string {
	day := getString(m, "day", "?")
	uniqueVeh := getFloat(m, "uniqueVehicles", 0)
	alwaysDeg := getFloat(m, "alwaysDegraded", 0)
	notAlways := getFloat(m, "notAlwaysDegraded", 0)

	alwaysPct := pct(alwaysDeg, uniqueVeh)
	notAlwaysPct := pct(notAlways, uniqueVeh)

	health := labelBelow(cityHealthBands, alwaysPct, cityHealthWorst)

	return fmt.Sprintf(
		"**City-wide vehicle degradation on %s**\n\n"+
			"- Unique vehicles: **%s**\n"+
			"- Always degraded: **%s** (%s%%)\n"+
			"- Not always degraded: **%s** (%s%%)\n\n"+
			"**Interpretation**\n"+
			"- City health on this day is **%s** based on the share of always-degraded vehicles.\n"+
			"- Always-degraded means the vehicle looked bad everywhere it appeared that day, "+
			"which strongly suggests a **vehicle-side issue** rather than a site-only problem.\n\n"+
			"If you want, you can drill into:\n"+
			"- A specific site with: *\"How many degraded vehicles were at RUHSMxxx on %s?\"*\n"+
			"- A specific plate with: *\"Show the degradation history for plate ABC1234.\"*",
		day,
		formatCount(uniqueVeh),
		formatCount(alwaysDeg), formatPct(alwaysPct),
		formatCount(notAlways), formatPct(notAlwaysPct),
		health,
		day)
}

func renderSiteTotals(question string, m map[string]any) string {
	day := getString(m, "day", "?")
	site := getString(m, "site", "?")
	uniqueVeh := getFloat(m, "uniqueVehicles", 0)
	alwaysDeg := getFloat(m, "alwaysDegraded", 0)
	notAlways := getFloat(m, "notAlwaysDegraded", 0)

	alwaysPct := pct(alwaysDeg, uniqueVeh)
	notAlwaysPct := pct(notAlways, uniqueVeh)

	siteHealth := labelBelow(siteHealthBands, alwaysPct, siteHealthWorst)

	lines := []string{
		fmt.Sprintf("**Site-level degraded vehicles — %s on %s**", site, day),
		"",
		fmt.Sprintf("- Unique vehicles seen: **%s**", formatCount(uniqueVeh)),
		fmt.Sprintf("- Always degraded: **%s** (%s%%)", formatCount(alwaysDeg), formatPct(alwaysPct)),
		fmt.Sprintf("- Not always degraded: **%s** (%s%%)", formatCount(notAlways), formatPct(notAlwaysPct)),
		"",
		"**Interpretation**",
		fmt.Sprintf("- This site on that day looks **%s** from a vehicle degradation perspective.", siteHealth),
	}

	if siteHealth == "borderline" || siteHealth == "suspicious" {
		lines = append(lines,
			"- A high share of always-degraded vehicles suggests something systematic "+
				"at this site: alignment, illumination, or configuration.",
			"- Cross-check this with trip patterns: do many of these vehicles look fine "+
				"at other sites the same day?")
	} else {
		lines = append(lines,
			"- Most vehicles either look fine or only occasionally degraded here, "+
				"which is consistent with normal traffic and environment.")
	}

	return strings.Join(lines, "\n")
}

func renderSiteDayStatus(question string, m map[string]any) string {
	day := getString(m, "day", "?")
	site := getString(m, "site", "?")
	total := getFloat(m, "detectionsTotal", 0)
	good := getFloat(m, "detectionsGood", 0)
	bad := getFloat(m, "detectionsBad", 0)
	status := getString(m, "status", "unknown")
	color := getString(m, "color", "none")

	goodRate, haveRate := lookupFloat(m, "goodRatePct")
	if !haveRate && total != 0 {
		goodRate = pct(good, total)
		haveRate = true
	}

	// An explicit status flag wins; the label is only derived when the
	// backend sent none.
	qualitative := status
	if status == "unknown" {
		if !haveRate {
			qualitative = "no data"
		} else {
			qualitative = labelAtLeast(siteDayBands, goodRate, siteDayWorst)
		}
	}

	displayRate := 0.0
	if haveRate {
		displayRate = goodRate
	}

	lines := []string{
		fmt.Sprintf("**Daily site health — %s on %s**", site, day),
		"",
		fmt.Sprintf("- Total detections: **%s**", formatCount(total)),
		fmt.Sprintf("- Good detections: **%s**", formatCount(good)),
		fmt.Sprintf("- Bad detections: **%s**", formatCount(bad)),
		fmt.Sprintf("- Good rate: **%s%%**", formatPct(displayRate)),
		fmt.Sprintf("- Status flag: **%s** (color: `%s`)", status, color),
		"",
		"**Interpretation**",
		fmt.Sprintf("- Overall this site is **%s** on that day based on the good-rate percentage.", qualitative),
	}

	// The closing paragraph follows the numeric rate even when an explicit
	// status flag was used for the label above.
	if haveRate {
		switch {
		case goodRate >= 90:
			lines = append(lines,
				"- This looks like a strong, clean day. Any vehicle issues here are more likely "+
					"to be vehicle-specific rather than a site fault.")
		case goodRate >= 80:
			lines = append(lines,
				"- Slight degradation: some conditions (e.g., lighting at specific hours or certain lanes) "+
					"may be reducing quality, but the site is broadly OK.")
		case goodRate >= 60:
			lines = append(lines,
				"- Borderline performance: you should inspect **per-lane / per-hour** breakdowns "+
					"to see if issues cluster at specific times or directions.")
		default:
			lines = append(lines,
				"- Heavy degradation: this likely indicates a **site-level problem** (alignment, focus, "+
					"camera cleanliness, or configuration). This site should be prioritized for maintenance.")
		}
	}

	return strings.Join(lines, "\n")
}

func renderVehicleDegrade(question string, m map[string]any) string {
	plate := getString(m, "plate", "?")
	day := getString(m, "day", "latest day in index")
	vehicleLabel := getString(m, "vehicleLabel", "unknown type")
	firstDay := getString(m, "firstDay", "unknown")
	cumMinQ := getFloat(m, "cumMinQ", 0.0)
	cumMaxQ := getFloat(m, "cumMaxQ", 0.0)
	frames := getFloat(m, "cumNFrames", 0)
	always := getBool(m, "alwaysDegraded", false)

	typeCode := "?"
	if v, ok := m["vehicleType"]; ok && v != nil {
		typeCode = fmt.Sprint(v)
	}

	healthDesc := "not always degraded"
	if always {
		healthDesc = "always degraded"
	}

	lines := []string{
		fmt.Sprintf("**Vehicle degradation profile — plate %s**", plate),
		"",
		fmt.Sprintf("- Vehicle type: **%s** (code: %s)", vehicleLabel, typeCode),
		fmt.Sprintf("- First seen in degraded stats: **%s**", firstDay),
		fmt.Sprintf("- Latest record day: **%s**", day),
		fmt.Sprintf("- Frames considered: **%s**", formatCount(frames)),
		fmt.Sprintf("- Cumulative quality range: **%s – %s**", formatQuality(cumMinQ), formatQuality(cumMaxQ)),
		fmt.Sprintf("- Classification: **%s**", healthDesc),
		"",
		"**Interpretation**",
	}

	if always {
		lines = append(lines,
			"- This vehicle is consistently degraded wherever it appears. "+
				"That strongly suggests a **vehicle-side issue** (dirty plate, mounting angle, damage) "+
				"rather than a site-only problem.")
	} else {
		lines = append(lines,
			"- This vehicle is sometimes good and sometimes bad. "+
				"That typically means it's useful for **site diagnostics**: "+
				"compare which sites see it with good quality versus poor quality.")
	}

	lines = append(lines,
		"If you want, you can ask next: "+
			"\"Show all trips for this plate\" or "+
			"\"Which sites does this vehicle look worst at?\"")

	return strings.Join(lines, "\n")
}

func renderTrips(question string, trips []any) string {
	if len(trips) == 0 {
		return "There are no trips matching that query.\n\n" +
			"That usually means the plate did not appear in the 30-minute trip index " +
			"for that day, or it was filtered out during preprocessing."
	}

	plate := "unknown plate"
	if first, ok := trips[0].(map[string]any); ok {
		plate = getString(first, "plate", "unknown plate")
	}

	sitesSeen := map[string]struct{}{}
	globalMinQ := 0.0
	globalMaxQ := 0.0
	var issueFlags []string

	for i, raw := range trips {
		trip := asMap(raw)
		for _, s := range getStrings(trip, "siteList") {
			sitesSeen[s] = struct{}{}
		}

		minQ := getFloat(trip, "minQuality", 0.0)
		maxQ := getFloat(trip, "maxQuality", 0.0)
		if i == 0 || minQ < globalMinQ {
			globalMinQ = minQ
		}
		if i == 0 || maxQ > globalMaxQ {
			globalMaxQ = maxQ
		}

		if label := getString(trip, "issueLabel", ""); label != "" {
			issueFlags = append(issueFlags, label)
		}
	}

	qualSummary := labelAtLeast(tripQualityBands, globalMinQ, tripQualityWorst)

	sortedSites := make([]string, 0, len(sitesSeen))
	for s := range sitesSeen {
		sortedSites = append(sortedSites, s)
	}
	sort.Strings(sortedSites)

	lines := []string{
		fmt.Sprintf("**Trip summary for plate %s**", plate),
		"",
		fmt.Sprintf("- Number of trips: **%d**", len(trips)),
		fmt.Sprintf("- Distinct sites visited: **%d** (%s)", len(sortedSites), strings.Join(sortedSites, ", ")),
		fmt.Sprintf("- Overall min quality across trips: **%s**", formatQuality(globalMinQ)),
		fmt.Sprintf("- Overall max quality across trips: **%s**", formatQuality(globalMaxQ)),
		fmt.Sprintf("- Quality summary: **%s**", qualSummary),
		"",
		"**Trip-by-trip view**",
	}

	for idx, raw := range trips {
		trip := asMap(raw)
		day := getString(trip, "day", "?")
		window := getString(trip, "window30", "")
		route := getString(trip, "routeSig", "unknown route")
		issueLabel := getString(trip, "issueLabel", "none")
		minQ := getFloat(trip, "minQuality", 0.0)
		maxQ := getFloat(trip, "maxQuality", 0.0)
		sites := getStrings(trip, "siteList")

		hourStr := "?"
		if h, ok := lookupFloat(trip, "hour"); ok {
			hourStr = strconv.Itoa(int(h))
		}

		lines = append(lines, fmt.Sprintf(
			"- Trip %d: day %s, window %s (hour %s), route **%s**, minQ=%s, maxQ=%s, sites=%s, issue=%s",
			idx+1, day, window, hourStr, route,
			formatQuality(minQ), formatQuality(maxQ),
			strings.Join(sites, ","), issueLabel))
	}

	if len(issueFlags) > 0 {
		lines = append(lines, "", "**Issue label interpretation**")
		// Deliberately loose substring tests, matching how the labels were
		// always interpreted ("site" also matches e.g. "onsite").
		if anyContains(issueFlags, "car_issue") {
			lines = append(lines,
				"- Trips flagged with `car_issue_singleton` or similar usually point to **vehicle-specific problems** "+
					"rather than a general site fault.")
		}
		if anyContains(issueFlags, "site") {
			lines = append(lines,
				"- Any trips with `siteIssueStrict` suggest that particular sites are dragging quality down "+
					"for many vehicles, not just this one.")
		}
		if anyContains(issueFlags, "mixed") {
			lines = append(lines,
				"- `mixed_quality` means some frames in the trip are good and others are bad, "+
					"often due to partial occlusion or transient lighting effects.")
		}
	}

	return strings.Join(lines, "\n")
}

func anyContains(labels []string, substr string) bool {
	for _, l := range labels {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func renderUnknown(question string, payload any) string {
	dump := "<nil>"
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			dump = string(b)
		} else {
			dump = fmt.Sprintf("%v", payload)
		}
	}
	return fmt.Sprintf(
		"I received data from the backend, but I don't recognize its structure.\n\n"+
			"Question was:\n  %q\n\n"+
			"Raw result:\n%s",
		question, dump)
}
