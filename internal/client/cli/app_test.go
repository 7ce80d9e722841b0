package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophprofile/internal/client/client"
	"github.com/dmitrijs2005/gophprofile/internal/client/config"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	tokens    client.Tokens
	email     string
	password  string
	err       error
	refreshTo string
	closed    bool
	deadline  bool
}

func (f *fakeAPI) Register(ctx context.Context, email, password string) (string, error) {
	_, f.deadline = ctx.Deadline()
	f.email, f.password = email, password
	return "User registered", f.err
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (client.Tokens, error) {
	f.email, f.password = email, password
	if f.err != nil {
		return client.Tokens{}, f.err
	}
	f.tokens = client.Tokens{AccessToken: "A", RefreshToken: "R"}
	return f.tokens, nil
}

func (f *fakeAPI) Refresh(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.tokens.RefreshToken == "" {
		return "", client.ErrNotLoggedIn
	}
	f.tokens.AccessToken = f.refreshTo
	return f.refreshTo, nil
}

func (f *fakeAPI) WhoAmI(ctx context.Context) (*client.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.tokens.AccessToken == "" {
		return nil, client.ErrNotLoggedIn
	}
	if f.refreshTo != "" {
		f.tokens.AccessToken = f.refreshTo
	}
	return &client.Identity{ID: "u-1", Email: "neo@example.com"}, nil
}

func (f *fakeAPI) Tokens() client.Tokens     { return f.tokens }
func (f *fakeAPI) SetTokens(t client.Tokens) { f.tokens = t }
func (f *fakeAPI) Close() error              { f.closed = true; return nil }

type memTokens struct {
	saved   client.Tokens
	saves   int
	loadErr error
	saveErr error
}

func (m *memTokens) Load() (client.Tokens, error) { return m.saved, m.loadErr }
func (m *memTokens) Save(t client.Tokens) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.saved = t
	return nil
}

func newTestApp(api *fakeAPI, store *memTokens, stdin string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		config: &config.Config{RequestTimeout: time.Second},
		api:    api,
		tokens: store,
		reader: rdr(stdin),
		out:    &out,
		prompt: &bytes.Buffer{},
	}, &out
}

func decode(t *testing.T, out *bytes.Buffer) map[string]string {
	t.Helper()
	var m map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &m))
	return m
}

func TestSplitCommand(t *testing.T) {
	cmd, rest, err := splitCommand([]string{"-a", "h:1", "-timeout=2s", "login", "neo@example.com"})
	require.NoError(t, err)
	require.Equal(t, "login", cmd)
	require.Equal(t, []string{"neo@example.com"}, rest)

	_, _, err = splitCommand([]string{"-a", "h:1"})
	require.ErrorIs(t, err, ErrUsage)

	_, _, err = splitCommand([]string{"-bogus", "whoami"})
	require.ErrorIs(t, err, ErrUsage)
}

func TestRun_Register(t *testing.T) {
	stubPassword(t, "trinity", nil)
	api := &fakeAPI{}
	app, out := newTestApp(api, &memTokens{}, "neo@example.com\n")

	require.NoError(t, app.Run(context.Background(), []string{"register"}))
	require.Equal(t, "neo@example.com", api.email)
	require.Equal(t, "trinity", api.password)
	require.True(t, api.deadline)
	require.True(t, api.closed)
	require.Equal(t, "User registered", decode(t, out)["msg"])
}

func TestRun_RegisterErrors(t *testing.T) {
	stubPassword(t, "", nil)
	app, _ := newTestApp(&fakeAPI{}, &memTokens{}, "")
	require.ErrorIs(t, app.Run(context.Background(), []string{"register", "neo@example.com"}), errEmptyInput)

	stubPassword(t, "trinity", nil)
	api := &fakeAPI{err: client.ErrAlreadyExists}
	app, _ = newTestApp(api, &memTokens{}, "")
	require.ErrorIs(t, app.Run(context.Background(), []string{"register", "neo@example.com"}), client.ErrAlreadyExists)
}

func TestRun_LoginSavesTokens(t *testing.T) {
	stubPassword(t, "trinity", nil)
	store := &memTokens{}
	app, out := newTestApp(&fakeAPI{}, store, "")

	require.NoError(t, app.Run(context.Background(), []string{"login", "neo@example.com"}))
	require.Equal(t, client.Tokens{AccessToken: "A", RefreshToken: "R"}, store.saved)
	require.Equal(t, "A", decode(t, out)["access_token"])
}

func TestRun_LoginFailureSavesNothing(t *testing.T) {
	stubPassword(t, "nope", nil)
	store := &memTokens{}
	app, _ := newTestApp(&fakeAPI{err: client.ErrUnauthorized}, store, "")

	require.ErrorIs(t, app.Run(context.Background(), []string{"login", "neo@example.com"}), client.ErrUnauthorized)
	require.Zero(t, store.saves)
}

func TestRun_Refresh(t *testing.T) {
	store := &memTokens{saved: client.Tokens{AccessToken: "A", RefreshToken: "R"}}
	app, out := newTestApp(&fakeAPI{refreshTo: "A2"}, store, "")

	require.NoError(t, app.Run(context.Background(), []string{"refresh"}))
	require.Equal(t, client.Tokens{AccessToken: "A2", RefreshToken: "R"}, store.saved)
	require.Equal(t, "A2", decode(t, out)["access_token"])
}

func TestRun_RefreshNotLoggedIn(t *testing.T) {
	app, _ := newTestApp(&fakeAPI{}, &memTokens{}, "")
	require.ErrorIs(t, app.Run(context.Background(), []string{"refresh"}), client.ErrNotLoggedIn)
}

func TestRun_WhoAmI(t *testing.T) {
	store := &memTokens{saved: client.Tokens{AccessToken: "A", RefreshToken: "R"}}
	app, out := newTestApp(&fakeAPI{}, store, "")

	require.NoError(t, app.Run(context.Background(), []string{"whoami"}))
	require.Zero(t, store.saves)
	got := decode(t, out)
	require.Equal(t, "u-1", got["id"])
	require.Equal(t, "neo@example.com", got["email"])
}

func TestRun_WhoAmIPersistsRefreshedToken(t *testing.T) {
	store := &memTokens{saved: client.Tokens{AccessToken: "A", RefreshToken: "R"}}
	app, _ := newTestApp(&fakeAPI{refreshTo: "A2"}, store, "")

	require.NoError(t, app.Run(context.Background(), []string{"whoami"}))
	require.Equal(t, 1, store.saves)
	require.Equal(t, "A2", store.saved.AccessToken)
}

func TestRun_WhoAmILoadError(t *testing.T) {
	boom := errors.New("boom")
	app, _ := newTestApp(&fakeAPI{}, &memTokens{loadErr: boom}, "")
	require.ErrorIs(t, app.Run(context.Background(), []string{"whoami"}), boom)
}

func TestRun_Logout(t *testing.T) {
	store := &memTokens{saved: client.Tokens{AccessToken: "A", RefreshToken: "R"}}
	app, _ := newTestApp(&fakeAPI{}, store, "")

	require.NoError(t, app.Run(context.Background(), []string{"logout"}))
	require.Equal(t, client.Tokens{}, store.saved)
}

func TestRun_VersionAndUnknown(t *testing.T) {
	app, out := newTestApp(&fakeAPI{}, &memTokens{}, "")
	require.NoError(t, app.Run(context.Background(), []string{"version"}))
	require.Contains(t, out.String(), "Build version:")

	app, _ = newTestApp(&fakeAPI{}, &memTokens{}, "")
	require.ErrorIs(t, app.Run(context.Background(), []string{"dance"}), ErrUsage)
}
