package config

import (
	"flag"
	"os"
	"time"

	"github.com/mvaldeb/tienda/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend REST API (default from Config)
//	-k string   payment widget public key
//	-d string   path to the local state database
//	-i int      auth sweep interval in seconds (default from Config)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.PaymentPublicKey, "k", cfg.PaymentPublicKey, "payment widget public key")
	fs.StringVar(&cfg.StoragePath, "d", cfg.StoragePath, "path to the local state database")
	sweepInterval := fs.Int("i", int(cfg.SweepInterval.Seconds()), "auth sweep interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SweepInterval = time.Duration(*sweepInterval) * time.Second
}
