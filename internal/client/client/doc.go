// Package client talks to the gophprofile gRPC AuthService on behalf of the
// CLI. GRPCClient keeps the current token pair, attaches the access token to
// protected calls and transparently refreshes it once when the server reports
// it expired.
package client
