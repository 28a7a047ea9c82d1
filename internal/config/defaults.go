package config

const (
	defaultDataDir = "~/.local/share/shisho"
	defaultLogDir  = "~/.local/share/shisho/logs"

	defaultLogLevel  = "info"
	defaultLogFormat = "console"

	defaultAniDBServer     = "api.anidb.net"
	defaultAniDBPort       = 9000
	defaultAniDBLocalPort  = 9999
	defaultClientName      = "shisho"
	defaultClientVersion   = "2"
	defaultProtocolVersion = 3

	// AniDB enforces a global per-client rate limit; stay above it.
	defaultRequestIntervalSeconds = 3
	defaultFloodWaitSeconds      = 30
	defaultTimeoutSeconds        = 10
	defaultRetryAttempts         = 3

	defaultEd2kBinary = "ed2k"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		AniDB: AniDB{
			Server:                 defaultAniDBServer,
			Port:                   defaultAniDBPort,
			LocalPort:              defaultAniDBLocalPort,
			ClientName:             defaultClientName,
			ClientVersion:          defaultClientVersion,
			ProtocolVersion:        defaultProtocolVersion,
			RequestIntervalSeconds: defaultRequestIntervalSeconds,
			FloodWaitSeconds:       defaultFloodWaitSeconds,
			TimeoutSeconds:         defaultTimeoutSeconds,
			RetryAttempts:          defaultRetryAttempts,
		},
		Ed2k: Ed2k{
			Binary: defaultEd2kBinary,
		},
	}
}
