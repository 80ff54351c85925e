package models

import "fmt"

// activityTypeNames maps workout activity type codes to display names.
// Codes follow the HealthKit workout activity type numbering.
var activityTypeNames = map[int]string{
	13: "Cycling",
	16: "Elliptical",
	20: "Functional Strength Training",
	24: "Hiking",
	35: "Rowing",
	37: "Running",
	46: "Swimming",
	50: "Traditional Strength Training",
	52: "Walking",
	57: "Yoga",
	63: "High Intensity Interval Training",
	77: "Cooldown",
	80: "Core Training",
	82: "Pilates",
}

// ActivityTypeName returns the display name for a workout activity type
// code, or "activity_<code>" for codes not in the table.
func ActivityTypeName(code int) string {
	if name, ok := activityTypeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("activity_%d", code)
}
