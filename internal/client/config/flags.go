package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophprofile/internal/flagx"
)

// parseFlags overlays flags found in args.
//
//	-a string        gRPC server address
//	-timeout dur     per-call timeout (e.g. 5s)
//	-tokens string   token file path
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-timeout", "-tokens"})

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-call timeout")
	fs.StringVar(&cfg.TokenFile, "tokens", cfg.TokenFile, "token file")

	return fs.Parse(args)
}
