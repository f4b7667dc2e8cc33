package model

// CarSpec is the static configuration record for a car.
// Values are expressed in track units (speed: units/s, acceleration:
// units/s², handling: steering rate in deg/s at full lock).
type CarSpec struct {
	Name         string  `json:"name" yaml:"name"`
	TopSpeed     float64 `json:"topSpeed" yaml:"topSpeed"`
	Acceleration float64 `json:"acceleration" yaml:"acceleration"`
	Handling     float64 `json:"handling" yaml:"handling"`
	IsPlayer     bool    `json:"isPlayer" yaml:"isPlayer"`
	Description  string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// CarEntry is a car registered for a race together with its preferred
// start position (lower value starts earlier in the staggered sequence).
type CarEntry struct {
	Spec     CarSpec `json:"spec"`
	StartPos int     `json:"startPos"`
}
