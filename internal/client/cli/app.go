package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophprofile/internal/buildinfo"
	"github.com/dmitrijs2005/gophprofile/internal/client/client"
	"github.com/dmitrijs2005/gophprofile/internal/client/config"
)

var ErrUsage = errors.New("usage: gophprofile-cli [-c file] [-a addr] [-timeout dur] [-tokens file] register|login|refresh|whoami|logout|version [email]")

// API is the part of client.GRPCClient the commands use.
type API interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (client.Tokens, error)
	Refresh(ctx context.Context) (string, error)
	WhoAmI(ctx context.Context) (*client.Identity, error)
	Tokens() client.Tokens
	SetTokens(client.Tokens)
	Close() error
}

type TokenStore interface {
	Load() (client.Tokens, error)
	Save(client.Tokens) error
}

type App struct {
	config *config.Config
	api    API
	tokens TokenStore
	reader *bufio.Reader
	out    io.Writer
	prompt io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		api:    apiClient,
		tokens: client.NewTokenFile(c.TokenFile),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		prompt: os.Stderr,
	}, nil
}

// splitCommand skips the global flags and returns the command with its
// positional arguments.
func splitCommand(args []string) (string, []string, error) {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, name := range []string{"c", "config", "a", "timeout", "tokens"} {
		fs.String(name, "", "")
	}
	if err := fs.Parse(args); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return "", nil, ErrUsage
	}
	return rest[0], rest[1:], nil
}

// Run executes the command found in args (program name excluded).
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.api.Close()

	cmd, rest, err := splitCommand(args)
	if err != nil {
		return err
	}

	if a.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.RequestTimeout)
		defer cancel()
	}

	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "refresh":
		return a.refresh(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "logout":
		return a.logout()
	case "version":
		buildinfo.PrintBuildData(a.out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (a *App) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
