package models

// Stage classifies one sleep interval.
type Stage string

const (
	StageInBed             Stage = "inBed"
	StageAsleepUnspecified Stage = "asleepUnspecified"
	StageAwake             Stage = "awake"
	StageAsleepCore        Stage = "asleepCore"
	StageAsleepDeep        Stage = "asleepDeep"
	StageAsleepREM         Stage = "asleepREM"
	StageUnknown           Stage = "unknown"
)

// Asleep reports whether the stage counts toward asleep minutes.
func (s Stage) Asleep() bool {
	switch s {
	case StageAsleepUnspecified, StageAsleepCore, StageAsleepDeep, StageAsleepREM:
		return true
	}
	return false
}

// stageCodesV1 covers providers that only report in-bed/asleep/awake.
var stageCodesV1 = map[int]Stage{
	0: StageInBed,
	1: StageAsleepUnspecified,
	2: StageAwake,
}

// stageCodesV2 adds the staged-sleep codes introduced with schema version 2.
var stageCodesV2 = map[int]Stage{
	0: StageInBed,
	1: StageAsleepUnspecified,
	2: StageAwake,
	3: StageAsleepCore,
	4: StageAsleepDeep,
	5: StageAsleepREM,
}

// stageTables maps provider schema versions to their stage code sets. Adding
// a schema version means adding a table row here, not new branches at call
// sites.
var stageTables = map[int]map[int]Stage{
	1: stageCodesV1,
	2: stageCodesV2,
}

// StageForCode resolves a raw sleep-analysis stage code under the given
// provider schema version. Unknown codes and unknown versions fall back to
// the newest table, then to StageUnknown.
func StageForCode(schemaVersion, code int) Stage {
	table, ok := stageTables[schemaVersion]
	if !ok {
		table = stageCodesV2
	}
	if stage, ok := table[code]; ok {
		return stage
	}
	return StageUnknown
}
