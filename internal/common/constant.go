// Package common contains shared constants and sentinel errors used across
// gophsession components.
package common

// AuthorizationHeaderName is the HTTP header (and, lowercased, the gRPC
// metadata key) carrying the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the authorization header.
const BearerPrefix = "Bearer "

// AuthorizationMetadataKey carries the bearer credential in gRPC metadata.
// Metadata keys are lower-case.
const AuthorizationMetadataKey = "authorization"
