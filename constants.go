package gymserver

const (
	KindMachine = "machine"
	KindGrip    = "grip"
)

// AllMachines is the sentinel value of an ImageRecord's MachineFor field
// meaning a grip type is available on every machine.
const AllMachines = "all"

const MetadataFilename = "metadata.json"

// imageExtensions is the allow-list of file extensions the scanner accepts.
// Matching is case-insensitive.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// mainMachineNames and gripTypeNames drive the legacy kind heuristic for
// uploads that carry neither an explicit type nor a machine_/grip_ prefix.
// They only exist for files migrated from early deployments.
var mainMachineNames = []string{"bench_press", "lat_pulldown", "remo"}

var gripTypeNames = []string{"wide_grip", "close_grip", "neutral_grip"}

const (
	DevelopmentEnvironment = "development"
	ProductionEnvironment  = "production"
)
