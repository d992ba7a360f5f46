package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/checktrack/checktrack/internal/app"
	"github.com/checktrack/checktrack/internal/buildinfo"
	"github.com/checktrack/checktrack/internal/model"
)

// Environment variables read as flag defaults.
const (
	EnvData     = "CHECKTRACK_DATA"
	EnvUser     = "CHECKTRACK_USER"
	EnvPassword = "CHECKTRACK_PASSWORD"
)

var errNoUser = errors.New("this command needs a user: pass --user and --password or set " + EnvUser + " and " + EnvPassword)

// globals holds the persistent flags shared by every command.
type globals struct {
	dataDir  string
	username string
	password string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:     "checktrack",
		Short:   "Track post-dated checks and payments",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	dataDefault := os.Getenv(EnvData)
	if dataDefault == "" {
		dataDefault = "."
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&g.dataDir, "data", "d", dataDefault, "data directory (env "+EnvData+")")
	pf.StringVarP(&g.username, "user", "u", os.Getenv(EnvUser), "acting user (env "+EnvUser+")")
	pf.StringVar(&g.password, "password", os.Getenv(EnvPassword), "password of the acting user (env "+EnvPassword+")")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(g),
		newListCommand(g),
		newAddCommand(g),
		newEditCommand(g),
		newStatusCommand(g),
		newDeleteCommand(g),
		newClearCommand(g),
		newBackupCommand(g),
		newRestoreCommand(g),
		newExportCommand(g),
		newUserCommand(g),
		newCategoryCommand(g),
		newActivityCommand(g),
		newServeCommand(g),
	)

	return rootCmd
}

// open loads the data directory. Logs go to stderr.
func (g *globals) open(cmd *cobra.Command) (*app.App, error) {
	dir, err := filepath.Abs(g.dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return app.Open(cmd.Context(), dir, cmd.ErrOrStderr())
}

// actor signs in the user named by --user.
func (g *globals) actor(a *app.App) (model.User, error) {
	if g.username == "" {
		return model.User{}, errNoUser
	}
	u, err := a.Users.Authenticate(g.username, g.password)
	if err != nil {
		return model.User{}, fmt.Errorf("signing in as %s: %w", g.username, err)
	}
	return u, nil
}

// session opens the data directory and signs in. The caller closes the app.
func (g *globals) session(cmd *cobra.Command) (*app.App, model.User, error) {
	a, err := g.open(cmd)
	if err != nil {
		return nil, model.User{}, err
	}
	u, err := g.actor(a)
	if err != nil {
		_ = a.Close()
		return nil, model.User{}, err
	}
	return a, u, nil
}
