package models

// Metric identifies one health metric as stored by the sample provider.
type Metric string

// Cumulative-today metrics (summed from start of day).
const (
	MetricSteps           Metric = "steps"
	MetricDistanceWalkRun Metric = "distance_walking_running"
	MetricActiveEnergy    Metric = "active_energy"
	MetricBasalEnergy     Metric = "basal_energy"
	MetricFlightsClimbed  Metric = "flights_climbed"
	MetricExerciseMinutes Metric = "exercise_minutes"
	MetricStandHours      Metric = "stand_hours"
	MetricDaylightMinutes Metric = "time_in_daylight"
)

// Latest-value metrics (most recent sample wins).
const (
	MetricHeartRate        Metric = "heart_rate"
	MetricRestingHeartRate Metric = "resting_heart_rate"
	MetricWalkingHeartRate Metric = "walking_heart_rate"
	MetricHRV              Metric = "heart_rate_variability"
	MetricVO2Max           Metric = "vo2_max"
	MetricBPSystolic       Metric = "blood_pressure_systolic"
	MetricBPDiastolic      Metric = "blood_pressure_diastolic"
	MetricAFibBurden       Metric = "afib_burden"
	MetricBloodOxygen      Metric = "blood_oxygen"
	MetricBloodGlucose     Metric = "blood_glucose"
	MetricRespiratoryRate  Metric = "respiratory_rate"
	MetricBodyTemperature  Metric = "body_temperature"
	MetricBodyMass         Metric = "weight_body_mass"
)

// Interval-sample categories.
const (
	CategorySleepAnalysis Metric = "sleep_analysis"
	CategoryApneaEvent    Metric = "apnea_event"
)

// Section names a grouping of related metric keys within a snapshot.
type Section string

const (
	SectionActivity    Section = "activity"
	SectionSleep       Section = "sleep"
	SectionHeart       Section = "heart"
	SectionOxygen      Section = "oxygen"
	SectionMetabolic   Section = "metabolic"
	SectionEnvironment Section = "environment"
	SectionBody        Section = "body"
)
