package config

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
	DefaultSampleRatio  = 1.0
	DefaultMetricsFile  = ""
	DefaultEnvironment  = ""
	DefaultDebugTrace   = false
)

// Generate defaults.
const (
	DefaultGenerateWorkers = 0
)

// Dispatch defaults.
const (
	DefaultDispatchPrefix = "newt"
)
