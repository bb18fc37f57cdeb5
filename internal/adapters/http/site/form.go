package site

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/r744/internal/domain/features"
)

// field describes one numeric input on the form.
type field struct {
	name  string
	label string
	help  string
	get   func(*features.Record) *float64
}

// formFields lists the inputs in display order, which is also vector order.
var formFields = []field{
	{
		name:  "dbt",
		label: "Dry Bulb Temperature (°C)",
		get:   func(r *features.Record) *float64 { return &r.DryBulbC },
	},
	{
		name:  "wbt",
		label: "Wet Bulb Temperature (°C)",
		get:   func(r *features.Record) *float64 { return &r.WetBulbC },
	},
	{
		name:  "building_load",
		label: "Net Building Thermal Load (kW)",
		help:  "+ Cooling demand | − Heating demand",
		get:   func(r *features.Record) *float64 { return &r.BuildingLoadKW },
	},
	{
		name:  "rsh",
		label: "Room Sensible Heat Load (kW)",
		get:   func(r *features.Record) *float64 { return &r.RoomSensibleHeatKW },
	},
	{
		name:  "rsc",
		label: "Room Sensible Cooling Load (kW)",
		get:   func(r *features.Record) *float64 { return &r.RoomSensibleCoolingKW },
	},
}

// fieldView is what the template renders for one input.
type fieldView struct {
	Name  string
	Label string
	Help  string
	Value string
	Error string
}

// parseRecord reads all five fields. Any finite number is accepted; bounds
// are not enforced. The returned views echo what was submitted.
func parseRecord(values url.Values) (features.Record, []fieldView, error) {
	var rec features.Record
	views := make([]fieldView, len(formFields))
	var firstErr error

	for i, f := range formFields {
		raw := strings.TrimSpace(values.Get(f.name))
		views[i] = fieldView{Name: f.name, Label: f.label, Help: f.help, Value: raw}

		v, err := parseNumber(raw)
		if err != nil {
			views[i].Error = err.Error()
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %s: %w", ErrInvalidField, f.label, err)
			}
			continue
		}
		*f.get(&rec) = v
	}
	return rec, views, firstErr
}

func parseNumber(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("value is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}

// recordViews renders stored values back into the form.
func recordViews(rec features.Record) []fieldView {
	views := make([]fieldView, len(formFields))
	for i, f := range formFields {
		views[i] = fieldView{
			Name:  f.name,
			Label: f.label,
			Help:  f.help,
			Value: strconv.FormatFloat(*f.get(&rec), 'f', -1, 64),
		}
	}
	return views
}
