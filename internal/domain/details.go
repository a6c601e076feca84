package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// RushMode selects how the expedite component of a rush-service part is
// computed.
type RushMode string

const (
	RushModeFixed   RushMode = "fixed"
	RushModePercent RushMode = "percent"
)

// EmergencyDay keys the emergency-fee lookup table.
type EmergencyDay string

const (
	EmergencyDayNone          EmergencyDay = ""
	EmergencyDaySaturday      EmergencyDay = "saturday"
	EmergencyDaySaturdayNight EmergencyDay = "saturday_night"
	EmergencyDaySunday        EmergencyDay = "sunday"
	EmergencyDaySundayNight   EmergencyDay = "sunday_night"
)

// PlateRollDetails carries display/computation inputs specific to plate
// rolling.
type PlateRollDetails struct {
	Grade        string   `json:"grade,omitempty"`
	RollAxis     string   `json:"rollAxis,omitempty"`
	PassCount    *int     `json:"passCount,omitempty"`
	FinishedArc  *float64 `json:"finishedArc,omitempty"`
	SeamsWelded  bool     `json:"seamsWelded,omitempty"`
	HeatRequired bool     `json:"heatRequired,omitempty"`
}

// AngleRollDetails carries inputs specific to angle/beam rolling.
type AngleRollDetails struct {
	LegOrientation string   `json:"legOrientation,omitempty"` // leg-in, leg-out, heel-in, heel-out
	SectionDepth   *float64 `json:"sectionDepth,omitempty"`
	Radius         *float64 `json:"radius,omitempty"`
	Degrees        *float64 `json:"degrees,omitempty"`
}

// ConeRollDetails carries inputs specific to cone rolling.
type ConeRollDetails struct {
	LargeEndDiameter string   `json:"largeEndDiameter,omitempty"`
	SmallEndDiameter string   `json:"smallEndDiameter,omitempty"`
	SlantHeight      *float64 `json:"slantHeight,omitempty"`
	HalfApexAngle    *float64 `json:"halfApexAngle,omitempty"`
}

// RushDetails carries the rush-service surcharge inputs. Exactly one of the
// expedite modes is used; the emergency fee is keyed by day.
type RushDetails struct {
	Mode          RushMode     `json:"mode,omitempty"`
	Amount        float64      `json:"amount,omitempty"`        // fixed expedite amount
	Percent       float64      `json:"percent,omitempty"`       // custom percent
	Tier          string       `json:"tier,omitempty"`          // preset tier name, overrides Percent
	EmergencyDay  EmergencyDay `json:"emergencyDay,omitempty"`
	Justification string       `json:"justification,omitempty"`
}

// PartDetails is the per-part-type extension bag. It is a tagged union: at
// most the member matching the part's type is set. Stored as a jsonb column.
type PartDetails struct {
	PlateRoll *PlateRollDetails `json:"plateRoll,omitempty"`
	AngleRoll *AngleRollDetails `json:"angleRoll,omitempty"`
	ConeRoll  *ConeRollDetails  `json:"coneRoll,omitempty"`
	Rush      *RushDetails      `json:"rush,omitempty"`
}

// IsZero reports whether no variant is set.
func (d PartDetails) IsZero() bool {
	return d.PlateRoll == nil && d.AngleRoll == nil && d.ConeRoll == nil && d.Rush == nil
}

// Value implements driver.Valuer so gorm stores the union as jsonb.
func (d PartDetails) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal part details: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (d *PartDetails) Scan(value interface{}) error {
	if value == nil {
		*d = PartDetails{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for part details column")
	}
	if len(data) == 0 {
		*d = PartDetails{}
		return nil
	}
	return json.Unmarshal(data, d)
}
