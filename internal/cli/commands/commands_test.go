package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/recipebox-dev/recipebox/internal/cli/client"
	"github.com/recipebox-dev/recipebox/internal/cli/userconfig"
	"github.com/recipebox-dev/recipebox/internal/config"
	"github.com/recipebox-dev/recipebox/internal/database"
	"github.com/recipebox-dev/recipebox/internal/models"
	"github.com/recipebox-dev/recipebox/internal/server"
)

const testPassword = "correct-horse"

// testEnv is a real API server on a temp database plus a temp CLI config directory
type testEnv struct {
	db        *gorm.DB
	configDir string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "api.sqlite"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	srv, err := server.New(&config.Config{
		HTTP: config.HTTPConfig{CORSOrigins: []string{"http://localhost:5173"}},
		Auth: config.AuthConfig{TokenTTL: time.Hour},
	}, db, zerolog.Nop(), "test")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	configDir := t.TempDir()
	t.Setenv("RECIPEBOX_CONFIG_DIR", configDir)
	t.Setenv("RECIPEBOX_SERVER", ts.URL)
	t.Setenv("RECIPEBOX_SESSION_BACKEND", userconfig.BackendFile)
	t.Setenv("RECIPEBOX_EMAIL", "")
	t.Setenv("RECIPEBOX_PASSWORD", "")

	return &testEnv{db: db, configDir: configDir}
}

func (e *testEnv) sessionFile() string {
	return filepath.Join(e.configDir, "session.json")
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func register(t *testing.T, name, email string) {
	t.Helper()
	out, err := run(t, NewRegisterCmd(&Globals{}), "--name", name, "--email", email, "--password", testPassword)
	require.NoError(t, err, out)
	require.Contains(t, out, "Login successful")
}

func openTestApp(t *testing.T) *app {
	t.Helper()
	a, err := openApp(context.Background(), &Globals{})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func writeRecipe(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const leekSoup = `name: Leek soup
description: Warm and green
instructions: |
  Sweat the leeks.
  Add stock and simmer.
ingredients:
  - name: Leek
    quantity: 2
  - name: Stock
    quantity: 1
    unit: {name: liter, abbr: l}
`

func TestLoginWhoamiLogout(t *testing.T) {
	env := setupEnv(t)
	register(t, "Ada", "ada@example.com")
	assert.FileExists(t, env.sessionFile())

	out, err := run(t, NewWhoamiCmd(&Globals{}), "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada (ada@example.com)")
	assert.Contains(t, out, "Session is valid.")

	out, err = run(t, NewLogoutCmd(&Globals{}))
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, "recipebox login")
	assert.NoFileExists(t, env.sessionFile())

	// The server revoked the token before the local session was cleared
	var revoked int64
	require.NoError(t, env.db.Model(&models.RevokedToken{}).Count(&revoked).Error)
	assert.Equal(t, int64(1), revoked)

	out, err = run(t, NewWhoamiCmd(&Globals{}))
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")

	// Logging out twice is harmless
	out, err = run(t, NewLogoutCmd(&Globals{}))
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")

	out, err = run(t, NewLoginCmd(&Globals{}), "--email", "ada@example.com", "--password", testPassword)
	require.NoError(t, err, out)
	assert.Contains(t, out, "User: Ada (ada@example.com)")
}

func TestLoginFailures(t *testing.T) {
	env := setupEnv(t)
	register(t, "Ada", "ada@example.com")
	_, err := run(t, NewLogoutCmd(&Globals{}))
	require.NoError(t, err)

	_, err = run(t, NewLoginCmd(&Globals{}), "--email", "ada@example.com", "--password", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.NoFileExists(t, env.sessionFile())

	_, err = run(t, NewLoginCmd(&Globals{}), "--password", testPassword)
	assert.ErrorContains(t, err, "email is required")
}

func TestLogoutClearsUnreadableSession(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, os.WriteFile(env.sessionFile(),
		[]byte(`{"token":"abc","name":null,"email":null,"userId":null}`), 0600))

	out, err := run(t, NewListCmd(&Globals{}))
	require.NoError(t, err, out)
	assert.Contains(t, out, "No recipes found.")

	out, err = run(t, NewLogoutCmd(&Globals{}))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Not logged in.")
	assert.NoFileExists(t, env.sessionFile())
}

func TestDispatch(t *testing.T) {
	env := setupEnv(t)

	writeIntent := func(body string) string {
		path := filepath.Join(t.TempDir(), "intent.json")
		require.NoError(t, os.WriteFile(path, []byte(body), 0600))
		return path
	}

	out, err := run(t, NewDispatchCmd(&Globals{}), writeIntent(
		`{"type":"LOGIN","payload":{"token":"tok-ci","name":"CI","email":"ci@example.com","userId":9}}`))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Session set for CI (ci@example.com)")
	assert.FileExists(t, env.sessionFile())

	// A partial LOGIN is not a login
	out, err = run(t, NewDispatchCmd(&Globals{}), writeIntent(`{"type":"LOGIN","payload":{"token":"tok-2"}}`))
	require.NoError(t, err, out)
	assert.Contains(t, out, `Ignored intent "LOGIN"`)

	out, err = run(t, NewWhoamiCmd(&Globals{}))
	require.NoError(t, err)
	assert.Contains(t, out, "CI (ci@example.com)")

	out, err = run(t, NewDispatchCmd(&Globals{}), writeIntent(`{"type":"LOGOUT"}`))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Logged out.")
	assert.NoFileExists(t, env.sessionFile())

	_, err = run(t, NewDispatchCmd(&Globals{}), writeIntent(`not json`))
	assert.ErrorContains(t, err, "invalid intent")
}

func TestEphemeralSessionIsNotSaved(t *testing.T) {
	env := setupEnv(t)

	out, err := run(t, NewRegisterCmd(&Globals{Ephemeral: true}), "--name", "Ada", "--email", "ada@example.com", "--password", testPassword)
	require.NoError(t, err, out)
	assert.NoFileExists(t, env.sessionFile())
}

func TestRecipeCommands(t *testing.T) {
	setupEnv(t)
	register(t, "Ada", "ada@example.com")

	out, err := run(t, NewCreateCmd(&Globals{}), "-f", writeRecipe(t, leekSoup))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created recipe 1: Leek soup")

	out, err = run(t, NewListCmd(&Globals{}))
	require.NoError(t, err)
	assert.Contains(t, out, "Leek soup")
	assert.Contains(t, out, "Ada")

	out, err = run(t, NewListCmd(&Globals{}), "--search", "pancake")
	require.NoError(t, err)
	assert.Contains(t, out, "No recipes found.")

	out, err = run(t, NewShowCmd(&Globals{}), "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Leek soup (#1)")
	assert.Contains(t, out, "- 2 Leek")
	assert.Contains(t, out, "- 1 l Stock")
	assert.Contains(t, out, "Add stock and simmer.")

	out, err = run(t, NewShowCmd(&Globals{}), "1", "--yaml")
	require.NoError(t, err)
	var exported client.RecipeInput
	require.NoError(t, yaml.Unmarshal([]byte(out), &exported))
	assert.Equal(t, "Leek soup", exported.Name)
	assert.Len(t, exported.Ingredients, 2)

	out, err = run(t, NewLikeCmd(&Globals{}), "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Liked recipe 1 (1 likes)")

	out, err = run(t, NewLikeCmd(&Globals{}), "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed your like from recipe 1 (0 likes)")

	edited := strings.Replace(leekSoup, "name: Leek soup", "name: Leek and potato soup", 1)
	out, err = run(t, NewEditCmd(&Globals{}), "1", "-f", writeRecipe(t, edited))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Updated recipe 1: Leek and potato soup")

	out, err = run(t, NewDeleteCmd(&Globals{}), "1", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deleted recipe 1")

	_, err = run(t, NewShowCmd(&Globals{}), "1")
	assert.ErrorContains(t, err, "Recipe not found")
}

func TestRecipeCommandsRequireLogin(t *testing.T) {
	setupEnv(t)

	_, err := run(t, NewLikeCmd(&Globals{}), "1")
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = run(t, NewCreateCmd(&Globals{}), "-f", writeRecipe(t, leekSoup))
	assert.ErrorIs(t, err, errNotLoggedIn)

	_, err = run(t, NewShowCmd(&Globals{}), "zero")
	assert.ErrorContains(t, err, "invalid recipe id")
}

func TestEditSomeoneElsesRecipe(t *testing.T) {
	setupEnv(t)
	register(t, "Ada", "ada@example.com")
	_, err := run(t, NewCreateCmd(&Globals{}), "-f", writeRecipe(t, leekSoup))
	require.NoError(t, err)

	register(t, "Bob", "bob@example.com")
	_, err = run(t, NewEditCmd(&Globals{}), "1", "-f", writeRecipe(t, leekSoup))
	assert.ErrorContains(t, err, "Only the author")
}

func TestLoadRecipeFile(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: leekSoup},
		{name: "stdin", body: "-"},
		{name: "missing instructions", body: "name: Toast\n", wantErr: "Instructions is required"},
		{name: "unknown field", body: "name: Toast\ninstructions: Toast it.\nserves: 2\n", wantErr: "field serves not found"},
		{name: "bad image url", body: "name: Toast\ninstructions: Toast it.\nimage_url: not a url\n", wantErr: "ImageURL must be a URL"},
		{name: "unit without name", body: "name: Toast\ninstructions: Toast it.\ningredients:\n  - name: Bread\n    unit: {abbr: sl}\n", wantErr: "Ingredients[0].Unit.Name is required"},
		{name: "empty", body: "", wantErr: "is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input client.RecipeInput
			var err error
			if tt.body == "-" {
				input, err = loadRecipeFile("-", strings.NewReader(leekSoup))
			} else {
				input, err = loadRecipeFile(writeRecipe(t, tt.body), nil)
			}

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Leek soup", input.Name)
			assert.Equal(t, client.Unit{Name: "liter", Abbr: "l"}, input.Ingredients[1].Unit)
		})
	}
}

func TestUse(t *testing.T) {
	t.Setenv("RECIPEBOX_CONFIG_DIR", t.TempDir())
	t.Setenv("RECIPEBOX_SERVER", "")
	t.Setenv("RECIPEBOX_SESSION_BACKEND", "")

	_, err := run(t, NewUseCmd(), "ftp://recipes.example.com")
	assert.Error(t, err)

	_, err = run(t, NewUseCmd(), "https://recipes.example.com/", "--session-backend", "carrier-pigeon")
	assert.Error(t, err)

	out, err := run(t, NewUseCmd(), "https://recipes.example.com/", "--session-backend", "keyring")
	require.NoError(t, err)
	assert.Contains(t, out, "Using server: https://recipes.example.com (session backend: keyring)")

	cfg, err := userconfig.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://recipes.example.com", cfg.ServerURL)
	assert.Equal(t, userconfig.BackendKeyring, cfg.SessionBackend)
}

// scriptedPrompter answers prompts from a script and records what it was asked.
// Select answers name the item by prefix. An exhausted script ends the session like Ctrl-D.
type scriptedPrompter struct {
	t       *testing.T
	answers []string
	asked   []string
}

func (p *scriptedPrompter) next() (string, bool) {
	if len(p.answers) == 0 {
		return "", false
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, true
}

func (p *scriptedPrompter) Select(label string, items []string) (int, error) {
	p.asked = append(p.asked, "select:"+label)
	answer, ok := p.next()
	if !ok {
		return 0, promptui.ErrEOF
	}
	for i, item := range items {
		if strings.HasPrefix(item, answer) {
			return i, nil
		}
	}
	p.t.Errorf("no item %q in %q (items %v)", answer, label, items)
	return 0, promptui.ErrEOF
}

func (p *scriptedPrompter) Input(label string, mask bool) (string, error) {
	p.asked = append(p.asked, "input:"+label)
	answer, ok := p.next()
	if !ok {
		return "", promptui.ErrEOF
	}
	return answer, nil
}

func (p *scriptedPrompter) Confirm(label string) (bool, error) {
	p.asked = append(p.asked, "confirm:"+label)
	answer, ok := p.next()
	if !ok {
		return false, promptui.ErrEOF
	}
	return answer == "y", nil
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	setupEnv(t)
	register(t, "Ada", "ada@example.com")
	_, err := run(t, NewCreateCmd(&Globals{}), "-f", writeRecipe(t, leekSoup))
	require.NoError(t, err)

	a := openTestApp(t)
	var out bytes.Buffer
	p := &scriptedPrompter{t: t, answers: []string{"n"}}
	require.NoError(t, runDelete(context.Background(), &out, a, p, 1))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Equal(t, []string{"confirm:Delete 'Leek soup'"}, p.asked)

	_, err = a.api.GetRecipe(context.Background(), 1)
	assert.NoError(t, err)
}

func TestBrowseLogoutLandsOnLogin(t *testing.T) {
	env := setupEnv(t)
	register(t, "Ada", "ada@example.com")

	a := openTestApp(t)
	var out bytes.Buffer
	p := &scriptedPrompter{t: t, answers: []string{"Log out", "", "Quit"}}

	require.NoError(t, runBrowse(context.Background(), &out, a, p))

	assert.Equal(t, []string{
		"select:Recipes",
		"input:Email (empty to go back)",
		"select:Recipes",
	}, p.asked)
	assert.Contains(t, out.String(), "Logged out.")
	assert.False(t, a.store.State().IsLoggedIn())
	assert.NoFileExists(t, env.sessionFile())
}

func TestBrowseLoginAndLike(t *testing.T) {
	setupEnv(t)
	register(t, "Ada", "ada@example.com")
	_, err := run(t, NewCreateCmd(&Globals{}), "-f", writeRecipe(t, leekSoup))
	require.NoError(t, err)
	_, err = run(t, NewLogoutCmd(&Globals{}))
	require.NoError(t, err)

	a := openTestApp(t)
	var out bytes.Buffer
	p := &scriptedPrompter{t: t, answers: []string{
		"Log in", "ada@example.com", testPassword,
		"#1 Leek soup", "Like", "Back", "Quit",
	}}

	require.NoError(t, runBrowse(context.Background(), &out, a, p))

	assert.Contains(t, out.String(), "Logged in as Ada.")
	assert.Contains(t, out.String(), "1 likes")
	assert.True(t, a.store.State().IsLoggedIn())
	assert.Contains(t, p.asked, "select:Leek soup")
}

func TestBrowseEndsOnEOF(t *testing.T) {
	setupEnv(t)

	a := openTestApp(t)
	p := &scriptedPrompter{t: t}
	assert.NoError(t, runBrowse(context.Background(), &bytes.Buffer{}, a, p))
}

func TestVersion(t *testing.T) {
	setupEnv(t)

	out, err := run(t, NewVersionCmd("v1.2.0"))
	require.NoError(t, err)
	assert.Contains(t, out, "recipebox version v1.2.0")
	assert.Contains(t, out, "version test")
	assert.Contains(t, out, "client and server versions differ")

	t.Setenv("RECIPEBOX_SERVER", "http://127.0.0.1:1")
	out, err = run(t, NewVersionCmd("dev"))
	require.NoError(t, err)
	assert.Contains(t, out, "unreachable")
}

func TestVersionsDiffer(t *testing.T) {
	assert.False(t, versionsDiffer("v1.0.0", "1.0.0"))
	assert.True(t, versionsDiffer("1.0.0", "1.1.0"))
	assert.False(t, versionsDiffer("dev", "1.1.0"))
}
