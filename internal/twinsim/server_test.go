package twinsim

import (
	"context"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/lalmajed/camera-health-digital-twin/internal/analysis"
	"github.com/lalmajed/camera-health-digital-twin/internal/twin"
)

func TestEndpointShapesClassify(t *testing.T) {
	sim := NewServer()
	backend := httptest.NewServer(sim.Router())
	defer backend.Close()

	client := twin.NewClient(backend.URL, 0)
	ctx := context.Background()
	day := sim.Days()[0]
	site := sim.Sites()[0]

	tests := []struct {
		name string
		call func() (any, error)
		want analysis.Category
	}{
		{
			name: "city totals",
			call: func() (any, error) { return client.CityTotals(ctx, day) },
			want: analysis.CategoryCityTotals,
		},
		{
			name: "site totals",
			call: func() (any, error) { return client.SiteTotals(ctx, day, site) },
			want: analysis.CategorySiteTotals,
		},
		{
			name: "site day status",
			call: func() (any, error) { return client.SiteDayStatus(ctx, day, site) },
			want: analysis.CategorySiteDayStatus,
		},
		{
			name: "vehicle degrade status",
			call: func() (any, error) { return client.VehicleDegradeStatus(ctx, "7612ABC") },
			want: analysis.CategoryVehicleDegrade,
		},
		{
			name: "trips for day",
			call: func() (any, error) { return client.TripsForDay(ctx, "7612ABC", day) },
			want: analysis.CategoryTrips,
		},
		{
			name: "trips all days",
			call: func() (any, error) { return client.TripsAllDays(ctx, "7612ABC") },
			want: analysis.CategoryTrips,
		},
		{
			name: "unknown plate is an error payload",
			call: func() (any, error) { return client.VehicleDegradeStatus(ctx, "0000XXX") },
			want: analysis.CategoryError,
		},
		{
			name: "unknown day is an error payload",
			call: func() (any, error) { return client.CityTotals(ctx, "1999-01-01") },
			want: analysis.CategoryError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := tt.call()
			if err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if got := analysis.Classify(payload); got != tt.want {
				t.Errorf("Classify() = %v, want %v (payload %v)", got, tt.want, payload)
			}
		})
	}
}

func TestCityTotalsAggregatesSites(t *testing.T) {
	sim := NewServer()
	day := sim.Days()[0]

	city, ok := sim.data.cityTotals(day)
	if !ok {
		t.Fatalf("expected city totals for %s", day)
	}

	var unique int
	for _, site := range sim.Sites() {
		st, ok := sim.data.siteTotals(day, site)
		if !ok {
			t.Fatalf("expected site totals for %s", site)
		}
		unique += st["uniqueVehicles"].(int)
	}

	if city["uniqueVehicles"].(int) != unique {
		t.Errorf("city uniqueVehicles = %d, want sum of sites %d", city["uniqueVehicles"], unique)
	}
	if city["uniqueVehicles"].(int) != city["alwaysDegraded"].(int)+city["notAlwaysDegraded"].(int) {
		t.Errorf("degraded split does not add up: %v", city)
	}
}

func TestDatasetIsDeterministic(t *testing.T) {
	a := newDataset()
	b := newDataset()

	if !reflect.DeepEqual(a.siteDays, b.siteDays) {
		t.Error("site-day stats differ between builds")
	}
	if !reflect.DeepEqual(a.trips, b.trips) {
		t.Error("trips differ between builds")
	}
}

func TestSiteDayCountsConsistent(t *testing.T) {
	sim := NewServer()
	for _, site := range sim.Sites() {
		for _, day := range sim.Days() {
			st, ok := sim.data.siteDayStatus(day, site)
			if !ok {
				t.Fatalf("missing site-day %s %s", site, day)
			}
			total := st["detectionsTotal"].(int)
			good := st["detectionsGood"].(int)
			bad := st["detectionsBad"].(int)
			if good+bad != total {
				t.Errorf("%s %s: good %d + bad %d != total %d", site, day, good, bad, total)
			}
		}
	}
}

func TestEveryVehicleSeedsValidTrips(t *testing.T) {
	d := newDataset()

	for plate, trips := range d.trips {
		if _, ok := d.vehicles[plate]; !ok {
			t.Errorf("trips exist for unknown vehicle %s", plate)
		}

		perDay := make(map[string]int)
		for _, trip := range trips {
			if trip.Hour < 0 || trip.Hour > 23 {
				t.Errorf("%s %s: hour %d is outside the day", plate, trip.Day, trip.Hour)
			}
			if trip.MinQuality > trip.MaxQuality {
				t.Errorf("%s %s: minQuality %f > maxQuality %f", plate, trip.Day, trip.MinQuality, trip.MaxQuality)
			}
			if len(trip.SiteList) == 0 {
				t.Errorf("%s %s: trip has no sites", plate, trip.Day)
			}
			perDay[trip.Day]++
		}

		for _, day := range d.days {
			if perDay[day] == 0 {
				t.Errorf("%s: no trips generated for %s", plate, day)
			}
		}
	}
}

func TestTripsForDayFilters(t *testing.T) {
	sim := NewServer()
	day := sim.Days()[2]

	trips, ok := sim.data.tripsForDay("7612ABC", day)
	if !ok {
		t.Fatal("expected trips for known plate")
	}
	if len(trips) == 0 {
		t.Fatal("expected at least one trip per day")
	}
	for _, trip := range trips {
		if trip.Day != day {
			t.Errorf("trip day = %s, want %s", trip.Day, day)
		}
		if trip.Plate != "7612ABC" {
			t.Errorf("trip plate = %s, want 7612ABC", trip.Plate)
		}
	}
}
