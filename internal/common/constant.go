package common

const (
	// AuthorizationHeaderName carries the bearer token on HTTP requests and,
	// lower-cased, in gRPC metadata.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"
)
