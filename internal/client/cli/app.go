// Package cli implements the interactive SealDrop client: an account
// keyring, a REPL, and commands for sealing, sending, and fetching
// packages.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/sealdrop/sealdrop/internal/client/config"
	"github.com/sealdrop/sealdrop/internal/client/keyring"
	"github.com/sealdrop/sealdrop/internal/client/repositories/history"
	"github.com/sealdrop/sealdrop/internal/client/services"
	"github.com/sealdrop/sealdrop/internal/client/transport"
	"github.com/sealdrop/sealdrop/internal/filex"
)

type App struct {
	config   *config.Config
	auth     *services.AuthService
	packages *services.PackageService
	keyring  *keyring.Keyring
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := history.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	keysDir, err := resolveDir(c.KeysDir)
	if err != nil {
		return nil, err
	}
	downloadDir, err := resolveDir(c.DownloadDir)
	if err != nil {
		return nil, err
	}

	kr, err := keyring.New(keysDir)
	if err != nil {
		return nil, err
	}

	api := transport.New(c.ServerURL)

	as := services.NewAuthService(api, kr)
	ps := services.NewPackageService(api, history.NewSQLiteRepository(db), downloadDir)

	return &App{
		config:   c,
		auth:     as,
		packages: ps,
		keyring:  kr,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// resolveDir anchors relative config paths at the working directory,
// creating the directory on first use.
func resolveDir(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filex.EnsureDir(path)
	}
	return filex.EnsureSubdDir(path)
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.IsLoggedIn()
}
