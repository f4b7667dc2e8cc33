package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string  // connection string for the database
	NatsURL           string  // URL of the NATS server
	WaitForServices   string  // duration to wait for other services to be ready
	LogLevel          string  // sets the log level (zap log level values)
	SQLLogLevel       string  // sets the log level for sql subsystem
	LogFormat         string  // text vs json
	EnableTelemetry   bool    // enable telemetry
	TelemetryEndpoint string  // endpoint for telemetry
	ProfilingPort     int     // port for profiling
	CatalogFile       string  // path to the car/track catalog (yaml)
	TrackName         string  // name of the track to race on
	CountdownSec      float64 // countdown before the first car is released
	StaleTimeoutSec   float64 // abort race when no progress for this many seconds (0 = off)
	TickRate          float64 // simulation ticks per second
	PlayerStartPos    int     // preferred start position of the player (0 = use stored value)
	RealTime          bool    // pace the simulation with the wall clock
)
