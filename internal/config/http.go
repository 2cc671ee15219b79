package config

const (
	HCType          = "Content-Type"
	HAccept         = "Accept"
	HAuthorization  = "Authorization"
	HUserAgent      = "User-Agent"
	HRequestID      = "X-Request-ID"
	BearerPrefix    = "Bearer "
	CTypeJSON       = "application/json"
	HTTPErrFallback = "Something went wrong"
)
