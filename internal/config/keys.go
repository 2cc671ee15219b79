package config

// Keys of the persisted client state.
const (
	KeyToken           = "token"
	KeyIsAuthenticated = "isAuthenticated"
	KeyUser            = "user"
	KeyDraftID         = "draftId"
)

const (
	EnvConfigPath        = "BLOGCTL_CONFIG"
	EnvAPIURL            = "BLOGCTL_API_URL"
	EnvStorePath         = "BLOGCTL_STORE"
	EnvLogLevel          = "BLOGCTL_LOG_LEVEL"
	EnvS3AccessKeyID     = "BLOGCTL_S3_ACCESS_KEY_ID"
	EnvS3SecretAccessKey = "BLOGCTL_S3_SECRET_ACCESS_KEY"

	DefaultConfigPath = "config.yaml"
)
