package config

import (
	"flag"
	"os"

	"github.com/sealdrop/sealdrop/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-k string   directory holding PEM key pairs
//	-o string   directory for fetched files
//	-f string   path of the local history database
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-o", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL to access server")
	fs.StringVar(&cfg.KeysDir, "k", cfg.KeysDir, "directory holding key pairs")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "directory for fetched files")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "path of the history database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
