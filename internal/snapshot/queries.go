package snapshot

import (
	"github.com/claude/vitalsnap/internal/models"
	"github.com/claude/vitalsnap/internal/numeric"
)

// metricQuery describes one independent numeric query fanned out by the
// aggregator: which provider call to make, where the result lands in the
// snapshot, and the minimum provider schema version that can answer it.
type metricQuery struct {
	metric     models.Metric
	section    models.Section
	key        string
	cumulative bool
	minSchema  int
	transform  func(float64) float64
}

// metricQueries is the capability table. A provider below a row's minSchema
// gets a skip note instead of a query.
var metricQueries = []metricQuery{
	// Cumulative-today metrics.
	{metric: models.MetricSteps, section: models.SectionActivity, key: "stepsToday", cumulative: true},
	{metric: models.MetricDistanceWalkRun, section: models.SectionActivity, key: "distanceKmToday", cumulative: true},
	{metric: models.MetricActiveEnergy, section: models.SectionActivity, key: "activeEnergyKcalToday", cumulative: true},
	{metric: models.MetricBasalEnergy, section: models.SectionActivity, key: "basalEnergyKcalToday", cumulative: true},
	{metric: models.MetricFlightsClimbed, section: models.SectionActivity, key: "flightsClimbedToday", cumulative: true},
	{metric: models.MetricExerciseMinutes, section: models.SectionActivity, key: "exerciseMinutesToday", cumulative: true},
	{metric: models.MetricStandHours, section: models.SectionActivity, key: "standHoursToday", cumulative: true},
	{metric: models.MetricDaylightMinutes, section: models.SectionEnvironment, key: "daylightMinutesToday", cumulative: true, minSchema: 2},

	// Latest-value metrics.
	{metric: models.MetricHeartRate, section: models.SectionHeart, key: "heartRateBpm"},
	{metric: models.MetricRestingHeartRate, section: models.SectionHeart, key: "restingHeartRateBpm"},
	{metric: models.MetricWalkingHeartRate, section: models.SectionHeart, key: "walkingHeartRateBpm"},
	{metric: models.MetricHRV, section: models.SectionHeart, key: "hrvMs"},
	{metric: models.MetricVO2Max, section: models.SectionHeart, key: "vo2Max"},
	{metric: models.MetricBPSystolic, section: models.SectionHeart, key: "bloodPressureSystolic"},
	{metric: models.MetricBPDiastolic, section: models.SectionHeart, key: "bloodPressureDiastolic"},
	{metric: models.MetricAFibBurden, section: models.SectionHeart, key: "afibBurdenPercent", minSchema: 2, transform: numeric.NormalizePercent},
	{metric: models.MetricBloodOxygen, section: models.SectionOxygen, key: "bloodOxygenPercent", transform: numeric.NormalizePercent},
	{metric: models.MetricRespiratoryRate, section: models.SectionOxygen, key: "respiratoryRateBpm"},
	{metric: models.MetricBloodGlucose, section: models.SectionMetabolic, key: "bloodGlucoseMgDl"},
	{metric: models.MetricBodyTemperature, section: models.SectionBody, key: "bodyTemperatureC"},
	{metric: models.MetricBodyMass, section: models.SectionBody, key: "bodyMassKg"},
}
