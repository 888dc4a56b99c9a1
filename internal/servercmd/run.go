package servercmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"titi/internal/auth"
	"titi/internal/config"
	"titi/internal/eventlog"
	"titi/internal/server"
)

// defaultPort matches spec.md §6's default bind of 127.0.0.1:6379.
const defaultPort = 6379

type serverOptions struct {
	port       int
	tokenFile  string
	listen     string
	configPath string
	logPath    string
}

func runServer(cmd *cobra.Command, opts serverOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	addr := resolveListen(opts, cfg)

	tokenPath := opts.tokenFile
	if tokenPath == "" {
		tokenPath = cfg.TokenFile
	}
	var tokenAuth *auth.TokenAuth
	if tokenPath == "" {
		tokenAuth, err = auth.New(mustDefaultTokenPath())
	} else {
		tokenAuth, err = auth.New(tokenPath)
	}
	if err != nil {
		return fmt.Errorf("titi-server: resolving auth token: %w", err)
	}

	log := eventlog.New(opts.logPath != "", opts.logPath)
	defer log.Close()

	srv := server.New(addr, tokenAuth, log)
	fmt.Fprintf(cmd.OutOrStdout(), "titi-server listening on %s (token file: %s)\n", addr, tokenAuth.TokenPath())
	return srv.Run()
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.Load()
	}
	return config.LoadFrom(configPath)
}

func resolveListen(opts serverOptions, cfg *config.Config) string {
	if opts.listen != "" {
		return opts.listen
	}
	if cfg.Listen != "" {
		return cfg.Listen
	}
	return fmt.Sprintf("127.0.0.1:%d", opts.port)
}

func mustDefaultTokenPath() string {
	path, err := auth.DefaultTokenPath()
	if err != nil {
		// HOME is unresolvable; fall back to a relative path rather than
		// failing the whole command before auth.New even runs.
		return ".titi/token"
	}
	return path
}
