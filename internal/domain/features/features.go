// Package features defines the typed operating-condition record fed to the
// scaler and the model.
package features

// Count is the arity of a Record vector.
const Count = 5

// Default operating conditions shown on a fresh form.
const (
	DefaultDryBulbC              = 35.0
	DefaultWetBulbC              = 25.0
	DefaultBuildingLoadKW        = 10.0
	DefaultRoomSensibleHeatKW    = 5.0
	DefaultRoomSensibleCoolingKW = 8.0
)

// names are the column names the artifacts were fitted with, in vector order.
var names = [Count]string{"DBT", "WBT", "Build. Load", "RSH", "RSC"}

// Record holds one set of HVAC operating conditions. Field order matches the
// fitting-time column order and must not change.
type Record struct {
	// DryBulbC is the dry bulb temperature in °C.
	DryBulbC float64 `json:"dbt"`
	// WetBulbC is the wet bulb temperature in °C.
	WetBulbC float64 `json:"wbt"`
	// BuildingLoadKW is the net building thermal load in kW.
	// Positive is cooling demand, negative is heating demand.
	BuildingLoadKW float64 `json:"building_load"`
	// RoomSensibleHeatKW is the room sensible heat load in kW.
	RoomSensibleHeatKW float64 `json:"rsh"`
	// RoomSensibleCoolingKW is the room sensible cooling load in kW.
	RoomSensibleCoolingKW float64 `json:"rsc"`
}

// Default returns the record a new operator session starts with.
func Default() Record {
	return Record{
		DryBulbC:              DefaultDryBulbC,
		WetBulbC:              DefaultWetBulbC,
		BuildingLoadKW:        DefaultBuildingLoadKW,
		RoomSensibleHeatKW:    DefaultRoomSensibleHeatKW,
		RoomSensibleCoolingKW: DefaultRoomSensibleCoolingKW,
	}
}

// Vector returns the record as a fresh slice in fitting order
// {DBT, WBT, Build. Load, RSH, RSC}.
func (r Record) Vector() []float64 {
	return []float64{
		r.DryBulbC,
		r.WetBulbC,
		r.BuildingLoadKW,
		r.RoomSensibleHeatKW,
		r.RoomSensibleCoolingKW,
	}
}

// WetBulbAboveDryBulb reports the physically invalid combination DBT < WBT.
// Only the two temperatures take part in the check.
func (r Record) WetBulbAboveDryBulb() bool {
	return r.DryBulbC < r.WetBulbC
}

// Names returns the canonical column names in vector order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}
