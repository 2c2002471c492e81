package vin

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Vehicle is the decoded record. Every field except VIN is optional.
type Vehicle struct {
	VIN                string  `json:"vin" yaml:"vin"`
	Make               *string `json:"make,omitempty" yaml:"make,omitempty"`
	Model              *string `json:"model,omitempty" yaml:"model,omitempty"`
	Trim               *string `json:"trim,omitempty" yaml:"trim,omitempty"`
	Type               *string `json:"type,omitempty" yaml:"type,omitempty"`
	Year               *string `json:"year,omitempty" yaml:"year,omitempty"`
	BodyStyle          *string `json:"body_style,omitempty" yaml:"body_style,omitempty"`
	VehicleClass       *string `json:"vehicle_class,omitempty" yaml:"vehicle_class,omitempty"`
	Doors              *int    `json:"doors,omitempty" yaml:"doors,omitempty"`
	ManufacturerName   *string `json:"manufacturer_name,omitempty" yaml:"manufacturer_name,omitempty"`
	Series             *string `json:"series,omitempty" yaml:"series,omitempty"`
	Trim2              *string `json:"trim2,omitempty" yaml:"trim2,omitempty"`
	Series2            *string `json:"series2,omitempty" yaml:"series2,omitempty"`
	Note               *string `json:"note,omitempty" yaml:"note,omitempty"`
	GVWRFrom           *string `json:"gvwr_from,omitempty" yaml:"gvwr_from,omitempty"`
	BedLength          *string `json:"bed_length,omitempty" yaml:"bed_length,omitempty"`
	CurbWeight         *string `json:"curb_weight,omitempty" yaml:"curb_weight,omitempty"`
	WheelbaseFrom      *string `json:"wheelbase_from,omitempty" yaml:"wheelbase_from,omitempty"`
	WheelbaseTo        *string `json:"wheelbase_to,omitempty" yaml:"wheelbase_to,omitempty"`
	GCWRFrom           *string `json:"gcwr_from,omitempty" yaml:"gcwr_from,omitempty"`
	GCWRTo             *string `json:"gcwr_to,omitempty" yaml:"gcwr_to,omitempty"`
	GVWRTo             *string `json:"gvwr_to,omitempty" yaml:"gvwr_to,omitempty"`
	BedType            *string `json:"bed_type,omitempty" yaml:"bed_type,omitempty"`
	CabType            *string `json:"cab_type,omitempty" yaml:"cab_type,omitempty"`
	WheelSizeFront     *string `json:"wheel_size_front,omitempty" yaml:"wheel_size_front,omitempty"`
	WheelSizeRear      *string `json:"wheel_size_rear,omitempty" yaml:"wheel_size_rear,omitempty"`
	DriveType          *string `json:"drive_type,omitempty" yaml:"drive_type,omitempty"`
	BrakeSystemType    *string `json:"brake_system_type,omitempty" yaml:"brake_system_type,omitempty"`
	EngineCylinders    *string `json:"engine_cylinders,omitempty" yaml:"engine_cylinders,omitempty"`
	FuelType           *string `json:"fuel_type,omitempty" yaml:"fuel_type,omitempty"`
	EngineConfig       *string `json:"engine_config,omitempty" yaml:"engine_config,omitempty"`
	EngineHPFrom       *string `json:"engine_hp_from,omitempty" yaml:"engine_hp_from,omitempty"`
	EngineManufacturer *string `json:"engine_manufacturer,omitempty" yaml:"engine_manufacturer,omitempty"`
	FrontAirbags       *string `json:"front_airbags,omitempty" yaml:"front_airbags,omitempty"`
	SideAirbags        *string `json:"side_airbags,omitempty" yaml:"side_airbags,omitempty"`
	ABS                *string `json:"abs,omitempty" yaml:"abs,omitempty"`
	ESC                *string `json:"esc,omitempty" yaml:"esc,omitempty"`
	TractionControl    *string `json:"traction_control,omitempty" yaml:"traction_control,omitempty"`
	TPMS               *string `json:"tpms,omitempty" yaml:"tpms,omitempty"`
	AutoReverse        *string `json:"auto_reverse,omitempty" yaml:"auto_reverse,omitempty"`
	KeylessIgnition    *string `json:"keyless_ignition,omitempty" yaml:"keyless_ignition,omitempty"`
	AdaptiveCruise     *string `json:"adaptive_cruise,omitempty" yaml:"adaptive_cruise,omitempty"`
	CIB                *string `json:"cib,omitempty" yaml:"cib,omitempty"`
	FCW                *string `json:"fcw,omitempty" yaml:"fcw,omitempty"`
	DBS                *string `json:"dbs,omitempty" yaml:"dbs,omitempty"`
	BSW                *string `json:"bsw,omitempty" yaml:"bsw,omitempty"`
	BackupCamera       *string `json:"backup_camera,omitempty" yaml:"backup_camera,omitempty"`
	RearCrossTraffic   *string `json:"rear_cross_traffic,omitempty" yaml:"rear_cross_traffic,omitempty"`
	RearAEB            *string `json:"rear_aeb,omitempty" yaml:"rear_aeb,omitempty"`
	DRL                *string `json:"drl,omitempty" yaml:"drl,omitempty"`
	HeadlampSource     *string `json:"headlamp_source,omitempty" yaml:"headlamp_source,omitempty"`
	SemiAutoHeadlamp   *string `json:"semi_auto_headlamp,omitempty" yaml:"semi_auto_headlamp,omitempty"`
}

// Attribute names used for derived fields.
const (
	attrErrorCode   = "Error Code"
	attrMake        = "Make"
	attrDoors       = "Doors"
	attrBodyClass   = "Body Class"
	attrVehicleType = "Vehicle Type"
)

// passthroughFields lists the attributes copied verbatim into the record.
var passthroughFields = []struct {
	attribute string
	field     func(*Vehicle) **string
}{
	{"Model", func(v *Vehicle) **string { return &v.Model }},
	{"Trim", func(v *Vehicle) **string { return &v.Trim }},
	{"Model Year", func(v *Vehicle) **string { return &v.Year }},
	{attrBodyClass, func(v *Vehicle) **string { return &v.BodyStyle }},
	{attrVehicleType, func(v *Vehicle) **string { return &v.VehicleClass }},
	{"Manufacturer Name", func(v *Vehicle) **string { return &v.ManufacturerName }},
	{"Series", func(v *Vehicle) **string { return &v.Series }},
	{"Trim2", func(v *Vehicle) **string { return &v.Trim2 }},
	{"Series2", func(v *Vehicle) **string { return &v.Series2 }},
	{"Note", func(v *Vehicle) **string { return &v.Note }},
	{"Gross Vehicle Weight Rating From", func(v *Vehicle) **string { return &v.GVWRFrom }},
	{"Bed Length (inches)", func(v *Vehicle) **string { return &v.BedLength }},
	{"Curb Weight (pounds)", func(v *Vehicle) **string { return &v.CurbWeight }},
	{"Wheel Base (inches) From", func(v *Vehicle) **string { return &v.WheelbaseFrom }},
	{"Wheel Base (inches) To", func(v *Vehicle) **string { return &v.WheelbaseTo }},
	{"Gross Combination Weight Rating From", func(v *Vehicle) **string { return &v.GCWRFrom }},
	{"Gross Combination Weight Rating To", func(v *Vehicle) **string { return &v.GCWRTo }},
	{"Gross Vehicle Weight Rating To", func(v *Vehicle) **string { return &v.GVWRTo }},
	{"Bed Type", func(v *Vehicle) **string { return &v.BedType }},
	{"Cab Type", func(v *Vehicle) **string { return &v.CabType }},
	{"Wheel Size Front (inches)", func(v *Vehicle) **string { return &v.WheelSizeFront }},
	{"Wheel Size Rear (inches)", func(v *Vehicle) **string { return &v.WheelSizeRear }},
	{"Drive Type", func(v *Vehicle) **string { return &v.DriveType }},
	{"Brake System Type", func(v *Vehicle) **string { return &v.BrakeSystemType }},
	{"Engine Number of Cylinders", func(v *Vehicle) **string { return &v.EngineCylinders }},
	{"Fuel Type - Primary", func(v *Vehicle) **string { return &v.FuelType }},
	{"Engine Configuration", func(v *Vehicle) **string { return &v.EngineConfig }},
	{"Engine Brake (hp) From", func(v *Vehicle) **string { return &v.EngineHPFrom }},
	{"Engine Manufacturer", func(v *Vehicle) **string { return &v.EngineManufacturer }},
	{"Front Air Bag Locations", func(v *Vehicle) **string { return &v.FrontAirbags }},
	{"Side Air Bag Locations", func(v *Vehicle) **string { return &v.SideAirbags }},
	{"Anti-lock Braking System (ABS)", func(v *Vehicle) **string { return &v.ABS }},
	{"Electronic Stability Control (ESC)", func(v *Vehicle) **string { return &v.ESC }},
	{"Traction Control", func(v *Vehicle) **string { return &v.TractionControl }},
	{"Tire Pressure Monitoring System (TPMS) Type", func(v *Vehicle) **string { return &v.TPMS }},
	{"Auto-Reverse System for Windows and Sunroofs", func(v *Vehicle) **string { return &v.AutoReverse }},
	{"Keyless Ignition", func(v *Vehicle) **string { return &v.KeylessIgnition }},
	{"Adaptive Cruise Control (ACC)", func(v *Vehicle) **string { return &v.AdaptiveCruise }},
	{"Crash Imminent Braking (CIB)", func(v *Vehicle) **string { return &v.CIB }},
	{"Forward Collision Warning (FCW)", func(v *Vehicle) **string { return &v.FCW }},
	{"Dynamic Brake Support (DBS)", func(v *Vehicle) **string { return &v.DBS }},
	{"Blind Spot Warning (BSW)", func(v *Vehicle) **string { return &v.BSW }},
	{"Backup Camera", func(v *Vehicle) **string { return &v.BackupCamera }},
	{"Rear Cross Traffic Alert", func(v *Vehicle) **string { return &v.RearCrossTraffic }},
	{"Rear Automatic Emergency Braking", func(v *Vehicle) **string { return &v.RearAEB }},
	{"Daytime Running Light (DRL)", func(v *Vehicle) **string { return &v.DRL }},
	{"Headlamp Light Source", func(v *Vehicle) **string { return &v.HeadlampSource }},
	{"Semiautomatic Headlamp Beam Switching", func(v *Vehicle) **string { return &v.SemiAutoHeadlamp }},
}

// buildVehicle synthesizes the record from a validated row set.
func buildVehicle(vin string, idx rowIndex) *Vehicle {
	v := &Vehicle{VIN: vin}

	for _, f := range passthroughFields {
		if value := idx.value(f.attribute); value != nil {
			s := *value
			*f.field(v) = &s
		}
	}

	if mk := idx.value(attrMake); mk != nil {
		s := capitalize(*mk)
		v.Make = &s
	}
	if doors, ok := leadingInt(idx.value(attrDoors)); ok {
		v.Doors = &doors
	}
	if vehicleType := idx.value(attrVehicleType); vehicleType != nil {
		bodyClass := ""
		if bc := idx.value(attrBodyClass); bc != nil {
			bodyClass = *bc
		}
		t := VehicleType(bodyClass, *vehicleType)
		v.Type = &t
	}

	return v
}

var (
	vanBodyPattern = regexp.MustCompile(`(?i)van`)
	suvBodyPattern = regexp.MustCompile(`(?i)Sport Utility`)
)

// VehicleType simplifies the NHTSA vehicle type using the body class.
// Unknown vehicle types are returned unchanged.
func VehicleType(bodyClass, vehicleType string) string {
	switch vehicleType {
	case "PASSENGER CAR":
		return "Car"
	case "TRUCK":
		if vanBodyPattern.MatchString(bodyClass) {
			return "Van"
		}
		return "Truck"
	case "MULTIPURPOSE PASSENGER VEHICLE (MPV)":
		if suvBodyPattern.MatchString(bodyClass) {
			return "SUV"
		}
		return "Minivan"
	default:
		return vehicleType
	}
}

// capitalize upper-cases the first letter and keeps the rest as sent.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
