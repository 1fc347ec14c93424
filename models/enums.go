package models

import (
	"encoding/json"
	"errors"
	"strconv"
)

type UserRole string

const (
	UserRoleCitizen UserRole = "CITIZEN"
	UserRoleOfficer UserRole = "WILDLIFE_OFFICER"
)

func (t UserRole) Valid() bool {
	return t == UserRoleCitizen || t == UserRoleOfficer
}

func (t *UserRole) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("user role must be string")
	}
	switch str {
	case "CITIZEN":
		*t = UserRoleCitizen
	case "WILDLIFE_OFFICER":
		*t = UserRoleOfficer
	default:
		return errors.New("invalid user role")
	}
	return nil
}

type RescueStatus string

const (
	RescueStatusPending    RescueStatus = "PENDING"
	RescueStatusAssigned   RescueStatus = "ASSIGNED"
	RescueStatusRescued    RescueStatus = "RESCUED"
	RescueStatusReleased   RescueStatus = "RELEASED"
	RescueStatusFalseAlarm RescueStatus = "FALSE_ALARM"
)

// AllRescueStatuses is in lifecycle order; FALSE_ALARM is the escape hatch
// reachable from any non-terminal state.
var AllRescueStatuses = []RescueStatus{
	RescueStatusPending,
	RescueStatusAssigned,
	RescueStatusRescued,
	RescueStatusReleased,
	RescueStatusFalseAlarm,
}

func (t RescueStatus) Valid() bool {
	switch t {
	case RescueStatusPending, RescueStatusAssigned, RescueStatusRescued, RescueStatusReleased, RescueStatusFalseAlarm:
		return true
	}
	return false
}

// RequiresEvidence reports whether officer evidence photos must exist before a
// report can be moved to this status.
func (t RescueStatus) RequiresEvidence() bool {
	return t == RescueStatusRescued || t == RescueStatusReleased
}

func (t *RescueStatus) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("rescue status must be string")
	}
	s := RescueStatus(str)
	if !s.Valid() {
		return errors.New("invalid rescue status")
	}
	*t = s
	return nil
}

type DangerLevel string

const (
	DangerLevelLow      DangerLevel = "Low"
	DangerLevelMedium   DangerLevel = "Medium"
	DangerLevelHigh     DangerLevel = "High"
	DangerLevelCritical DangerLevel = "Critical"
)

func (t DangerLevel) Valid() bool {
	switch t {
	case DangerLevelLow, DangerLevelMedium, DangerLevelHigh, DangerLevelCritical:
		return true
	}
	return false
}

// Rank orders danger levels by severity, Low lowest.
func (t DangerLevel) Rank() int {
	switch t {
	case DangerLevelLow:
		return 0
	case DangerLevelMedium:
		return 1
	case DangerLevelHigh:
		return 2
	case DangerLevelCritical:
		return 3
	}
	return -1
}

func (t *DangerLevel) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("danger level must be string")
	}
	d := DangerLevel(str)
	if !d.Valid() {
		return errors.New("invalid danger level")
	}
	*t = d
	return nil
}

type RiskLevel string

const (
	RiskLevelImmediateDanger RiskLevel = "Immediate danger"
	RiskLevelNonAggressive   RiskLevel = "Non-aggressive"
	RiskLevelInjuredAnimal   RiskLevel = "Injured animal"
)

func (t RiskLevel) Valid() bool {
	switch t {
	case RiskLevelImmediateDanger, RiskLevelNonAggressive, RiskLevelInjuredAnimal:
		return true
	}
	return false
}

func (t *RiskLevel) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("risk level must be string")
	}
	r := RiskLevel(str)
	if !r.Valid() {
		return errors.New("invalid risk level")
	}
	*t = r
	return nil
}

type LocationType string

const (
	LocationTypeHouse      LocationType = "House"
	LocationTypeFarm       LocationType = "Farm"
	LocationTypeRoad       LocationType = "Road"
	LocationTypeSchool     LocationType = "School"
	LocationTypeWaterBody  LocationType = "Water body"
	LocationTypeForestEdge LocationType = "Forest edge"
)

func (t LocationType) Valid() bool {
	switch t {
	case LocationTypeHouse, LocationTypeFarm, LocationTypeRoad, LocationTypeSchool, LocationTypeWaterBody, LocationTypeForestEdge:
		return true
	}
	return false
}

func (t *LocationType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("location type must be string")
	}
	l := LocationType(str)
	if !l.Valid() {
		return errors.New("invalid location type")
	}
	*t = l
	return nil
}
