// Package cli implements the gophprofile command-line client.
//
// Usage:
//
//	gophprofile-cli [-c file] [-a addr] [-timeout dur] [-tokens file] <command> [email]
//
// Commands:
//   - register [email]: create an account, the password is read without echo
//   - login [email]: obtain a token pair and save it to the token file
//   - refresh: exchange the saved refresh token for a new access token
//   - whoami: print the account of the saved access token
//   - logout: forget the saved tokens
//   - version: print build data
//
// Results are printed to stdout as JSON.
package cli
