package commands

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/checktrack/checktrack/internal/categories"
	"github.com/checktrack/checktrack/internal/config"
	"github.com/checktrack/checktrack/internal/gitops"
	"github.com/checktrack/checktrack/internal/id"
	"github.com/checktrack/checktrack/internal/store/csvstore"
	"github.com/checktrack/checktrack/internal/users"
)

func newInitCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new checktrack data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	secret, err := newSecret()
	if err != nil {
		return err
	}
	cfg := config.Default(name)
	cfg.Server.JWTSecret = secret
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := writeEmptyPayments(dir); err != nil {
		return err
	}

	usr, err := users.Open(dir, id.UUID{})
	if err != nil {
		return err
	}
	seeded, err := usr.Seed()
	if err != nil {
		return fmt.Errorf("creating default user: %w", err)
	}

	cats, err := categories.Load(dir)
	if err != nil {
		return err
	}
	if err := cats.Save(); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}

	gitignore := ".env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	out := cmd.OutOrStdout()
	if gitops.Available() {
		repo := gitops.Repo{Dir: dir, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
		if err := repo.Init(cmd.Context()); err != nil {
			return err
		}
		hash, err := repo.Commit(cmd.Context(), "init: Initialize "+name)
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
		fmt.Fprintf(out, "Initialized checktrack data directory at %s (%s)\n", dir, hash)
	} else {
		fmt.Fprintf(out, "Initialized checktrack data directory at %s (git not found, history disabled)\n", dir)
	}

	if seeded {
		fmt.Fprintf(out, "Created user %q with password %q. Change it with 'checktrack user passwd'.\n",
			users.DefaultUsername, users.DefaultPassword)
	}
	return nil
}

// newSecret returns 32 random bytes, hex encoded, for signing API tokens.
func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func writeEmptyPayments(dir string) error {
	f, err := os.Create(filepath.Join(dir, csvstore.FileName))
	if err != nil {
		return fmt.Errorf("creating %s: %w", csvstore.FileName, err)
	}
	if err := csvstore.WritePayments(f, nil); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
