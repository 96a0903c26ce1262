// Package twinsim serves a deterministic in-memory rendition of the
// camera-health digital twin on the six backend query endpoints. It stands
// in for the real twin during development and integration tests.
package twinsim

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// siteDayStats carries the detection counters for one site on one day.
type siteDayStats struct {
	DetectionsTotal int
	DetectionsGood  int
	DetectionsBad   int
	UniqueVehicles  int
	AlwaysDegraded  int
	Status          string
	Color           string
}

// vehicleRecord is the cumulative degradation state of one plate.
type vehicleRecord struct {
	Plate          string
	VehicleType    string
	VehicleLabel   string
	FirstDay       string
	LatestDay      string
	CumMinQ        float64
	CumMaxQ        float64
	CumNFrames     int
	AlwaysDegraded bool
}

// tripRecord is one 30-minute trip window for a plate.
type tripRecord struct {
	Plate      string   `json:"plate"`
	Day        string   `json:"day"`
	Window30   string   `json:"window30"`
	Hour       int      `json:"hour"`
	RouteSig   string   `json:"routeSig"`
	IssueLabel string   `json:"issueLabel"`
	MinQuality float64  `json:"minQuality"`
	MaxQuality float64  `json:"maxQuality"`
	SiteList   []string `json:"siteList"`
}

// dataset is the whole simulated twin. All derived numbers come from an FNV
// hash of the entity identifiers, so two simulators built with the same site
// and day lists always agree.
type dataset struct {
	sites    []string
	days     []string
	siteDays map[string]siteDayStats // key: site|day
	vehicles map[string]vehicleRecord
	trips    map[string][]tripRecord // key: plate
}

var defaultSites = []string{"RUHSM001", "RUHSM002", "RUHSM003", "RUHSM004", "RUHSM005"}

var defaultDays = []string{
	"2025-11-10", "2025-11-11", "2025-11-12", "2025-11-13",
	"2025-11-14", "2025-11-15", "2025-11-16",
}

var defaultPlates = []string{"7612ABC", "3341KSA", "9905RYD", "1287TWN", "5560CAM"}

var vehicleTypes = []struct {
	code  string
	label string
}{
	{"1", "sedan"},
	{"2", "SUV"},
	{"3", "pickup truck"},
	{"4", "bus"},
}

var issueLabels = []string{"none", "car_issue", "site", "mixed"}

func seed(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func newDataset() *dataset {
	d := &dataset{
		sites:    defaultSites,
		days:     defaultDays,
		siteDays: make(map[string]siteDayStats),
		vehicles: make(map[string]vehicleRecord),
		trips:    make(map[string][]tripRecord),
	}

	for _, site := range d.sites {
		for _, day := range d.days {
			d.siteDays[site+"|"+day] = buildSiteDay(site, day)
		}
	}

	for i, plate := range defaultPlates {
		d.vehicles[plate] = buildVehicle(plate, i, d.days)
		d.trips[plate] = buildTrips(plate, d.days, d.sites)
	}

	return d
}

func buildSiteDay(site, day string) siteDayStats {
	s := seed(site, day)

	total := 400 + int(s%1600)
	badPct := int(s>>8) % 25 // 0..24 percent
	bad := total * badPct / 100
	good := total - bad
	unique := 60 + int(s>>16)%240
	always := unique * (int(s>>24) % 12) / 100

	status := "healthy"
	color := "green"
	switch {
	case badPct >= 20:
		status = "degraded"
		color = "red"
	case badPct >= 10:
		status = "borderline"
		color = "yellow"
	}

	return siteDayStats{
		DetectionsTotal: total,
		DetectionsGood:  good,
		DetectionsBad:   bad,
		UniqueVehicles:  unique,
		AlwaysDegraded:  always,
		Status:          status,
		Color:           color,
	}
}

func buildVehicle(plate string, idx int, days []string) vehicleRecord {
	s := seed("vehicle", plate)
	// Reduce modulo in uint64 first: int(hash) can go negative.
	vt := vehicleTypes[int(s%uint64(len(vehicleTypes)))]

	minQ := 0.1 + float64(s%60)/100 // 0.10..0.69
	maxQ := minQ + 0.25
	if maxQ > 1.0 {
		maxQ = 1.0
	}

	return vehicleRecord{
		Plate:          plate,
		VehicleType:    vt.code,
		VehicleLabel:   vt.label,
		FirstDay:       days[int(s>>8)%3],
		LatestDay:      days[len(days)-1],
		CumMinQ:        minQ,
		CumMaxQ:        maxQ,
		CumNFrames:     2000 + int(s>>16)%30000,
		AlwaysDegraded: idx%2 == 0,
	}
}

func buildTrips(plate string, days, sites []string) []tripRecord {
	var trips []tripRecord
	for _, day := range days {
		s := seed("trips", plate, day)
		n := 1 + int(s%3)
		for i := 0; i < n; i++ {
			ts := seed("trip", plate, day, fmt.Sprint(i))
			hour := 6 + int(ts%16)
			half := int(ts>>4) % 2
			minQ := 0.2 + float64(ts>>8%55)/100
			maxQ := minQ + 0.1 + float64(ts>>16%25)/100
			if maxQ > 1.0 {
				maxQ = 1.0
			}

			siteA := sites[int(ts>>24)%len(sites)]
			siteB := sites[int(ts>>32)%len(sites)]
			siteList := []string{siteA}
			if siteB != siteA {
				siteList = append(siteList, siteB)
			}
			sort.Strings(siteList)

			trips = append(trips, tripRecord{
				Plate:      plate,
				Day:        day,
				Window30:   fmt.Sprintf("%02d:%02d", hour, half*30),
				Hour:       hour,
				RouteSig:   fmt.Sprintf("%s->%s", siteList[0], siteList[len(siteList)-1]),
				IssueLabel: issueLabels[int(ts>>40)%len(issueLabels)],
				MinQuality: minQ,
				MaxQuality: maxQ,
				SiteList:   siteList,
			})
		}
	}
	return trips
}

func (d *dataset) hasDay(day string) bool {
	for _, known := range d.days {
		if known == day {
			return true
		}
	}
	return false
}

func (d *dataset) hasSite(site string) bool {
	for _, known := range d.sites {
		if known == site {
			return true
		}
	}
	return false
}

// cityTotals aggregates all sites for one day.
func (d *dataset) cityTotals(day string) (map[string]any, bool) {
	if !d.hasDay(day) {
		return nil, false
	}

	var unique, always int
	for _, site := range d.sites {
		stats := d.siteDays[site+"|"+day]
		unique += stats.UniqueVehicles
		always += stats.AlwaysDegraded
	}

	return map[string]any{
		"day":               day,
		"uniqueVehicles":    unique,
		"alwaysDegraded":    always,
		"notAlwaysDegraded": unique - always,
	}, true
}

func (d *dataset) siteTotals(day, site string) (map[string]any, bool) {
	if !d.hasDay(day) || !d.hasSite(site) {
		return nil, false
	}

	stats := d.siteDays[site+"|"+day]
	return map[string]any{
		"day":               day,
		"site":              site,
		"uniqueVehicles":    stats.UniqueVehicles,
		"alwaysDegraded":    stats.AlwaysDegraded,
		"notAlwaysDegraded": stats.UniqueVehicles - stats.AlwaysDegraded,
	}, true
}

func (d *dataset) siteDayStatus(day, site string) (map[string]any, bool) {
	if !d.hasDay(day) || !d.hasSite(site) {
		return nil, false
	}

	stats := d.siteDays[site+"|"+day]
	goodRate := 0.0
	if stats.DetectionsTotal > 0 {
		goodRate = 100 * float64(stats.DetectionsGood) / float64(stats.DetectionsTotal)
	}

	return map[string]any{
		"day":             day,
		"site":            site,
		"detectionsTotal": stats.DetectionsTotal,
		"detectionsGood":  stats.DetectionsGood,
		"detectionsBad":   stats.DetectionsBad,
		"status":          stats.Status,
		"color":           stats.Color,
		"goodRatePct":     goodRate,
	}, true
}

func (d *dataset) vehicleDegradeStatus(plate string) (map[string]any, bool) {
	v, ok := d.vehicles[plate]
	if !ok {
		return nil, false
	}

	return map[string]any{
		"plate":          v.Plate,
		"day":            v.LatestDay,
		"vehicleType":    v.VehicleType,
		"vehicleLabel":   v.VehicleLabel,
		"firstDay":       v.FirstDay,
		"cumMinQ":        v.CumMinQ,
		"cumMaxQ":        v.CumMaxQ,
		"cumNFrames":     v.CumNFrames,
		"alwaysDegraded": v.AlwaysDegraded,
	}, true
}

func (d *dataset) tripsForDay(plate, day string) ([]tripRecord, bool) {
	all, ok := d.trips[plate]
	if !ok {
		return nil, false
	}

	trips := []tripRecord{}
	for _, t := range all {
		if t.Day == day {
			trips = append(trips, t)
		}
	}
	return trips, true
}

func (d *dataset) tripsAllDays(plate string) ([]tripRecord, bool) {
	all, ok := d.trips[plate]
	if !ok {
		return nil, false
	}

	trips := make([]tripRecord, len(all))
	copy(trips, all)
	return trips, true
}
