package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moodmix/internal/client"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/repositories"
	"github.com/desertthunder/moodmix/internal/server"
	"github.com/desertthunder/moodmix/internal/shared"
	"github.com/desertthunder/moodmix/internal/tasks"
)

// refreshLeeway refreshes stored tokens this long before they expire.
const refreshLeeway = time.Minute

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	engine     *tasks.Engine
	auth       server.TokenExchanger
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	open       func(string) error

	db    *sql.DB
	creds *repositories.CredentialRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Engine     *tasks.Engine
	Auth       server.TokenExchanger // nil disables login and refresh
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Open       func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		engine:     opts.Engine,
		auth:       opts.Auth,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		open:       opts.Open,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, authCommand, moodsCommand, generateCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, e.g. with a file logger while a TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the credential store if it was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.creds = nil, nil
	return err
}

// credentials opens the credential store on first use and runs pending migrations.
func (r *Runner) credentials() (*repositories.CredentialRepository, error) {
	if r.creds != nil {
		return r.creds, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	if r.config.Database.Path != ":memory:" {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db, r.creds = db, repositories.NewCredentialRepository(db)
	return r.creds, nil
}

// storedCredential returns the active account, refreshing its token when it is about to expire.
func (r *Runner) storedCredential(ctx context.Context) (*models.Credential, error) {
	repo, err := r.credentials()
	if err != nil {
		return nil, err
	}

	cred, err := repo.Latest()
	if errors.Is(err, shared.ErrCredentialNotFound) {
		return nil, fmt.Errorf("%w: run 'moodmix auth login' first", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, err
	}

	if !cred.Expired(refreshLeeway) {
		return cred, nil
	}
	r.logger.Debug("stored token expired, refreshing", "user", cred.UserID())
	if err := r.refresh(ctx, repo, cred); err != nil {
		return nil, err
	}
	return cred, nil
}

func (r *Runner) refresh(ctx context.Context, repo *repositories.CredentialRepository, cred *models.Credential) error {
	if r.auth == nil {
		return fmt.Errorf("%w: spotify client credentials are not configured", shared.ErrMissingCredentials)
	}
	if cred.RefreshToken() == "" {
		return shared.ErrNoRefreshToken
	}

	tok, err := r.auth.Refresh(ctx, cred.RefreshToken())
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	cred.SetToken(tok)
	return repo.Save(cred)
}

// accessToken resolves the token for a command: the --token flag wins over the stored credential.
func (r *Runner) accessToken(ctx context.Context, cmd *cli.Command) (string, error) {
	if tok := cmd.String("token"); tok != "" {
		return tok, nil
	}
	cred, err := r.storedCredential(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken(), nil
}

// gatewayClient returns a client for the gateway named by --gateway, defaulting to the
// configured listen address.
func (r *Runner) gatewayClient(cmd *cli.Command) *client.Client {
	base := cmd.String("gateway")
	if base == "" {
		base = "http://" + r.config.Server.Addr()
	}
	return client.New(base, r.httpClient)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
