// Package common contains shared constants and sentinel errors used across
// gophprofile components.
package common

// AuthorizationHeaderName is the HTTP header carrying the access token.
// The token may be sent raw or with a "Bearer " prefix.
const AuthorizationHeaderName = "Authorization"

// AuthorizationMetadataKey is the gRPC metadata key carrying the access token.
const AuthorizationMetadataKey = "authorization"

// BearerPrefix is the optional scheme prefix accepted in front of a token.
const BearerPrefix = "Bearer "
