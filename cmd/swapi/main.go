package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/swapi-client/internal/config"
	"github.com/Sternrassler/swapi-client/pkg/logging"
	"github.com/Sternrassler/swapi-client/pkg/render"
	"github.com/spf13/cobra"
)

var version = "dev"

// tables maps command arguments to document tables.
var tables = map[string]render.TableID{
	"characters": render.CharacterTable,
	"planets":    render.PlanetTable,
}

type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
	logPretty  bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "swapi",
		Short: "Browse Star Wars characters and planets from SWAPI",
		Long: `swapi fetches paginated character and planet data from the Star Wars API
and renders it as tables, either in a web page (serve) or in the terminal (show).

Configuration is read from an optional YAML file, an optional .env file and
the environment (SWAPI_BASE_URL, SWAPI_USER_AGENT, SWAPI_TIMEOUT, PORT,
REDIS_URL, LOG_LEVEL, LOG_PRETTY).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file, ignored when missing")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&flags.logPretty, "log-pretty", false, "human-readable log output")

	rootCmd.AddCommand(newServeCommand(flags))
	rootCmd.AddCommand(newShowCommand(flags))

	return rootCmd
}

// loadConfig loads the configuration, applies flag overrides and sets up
// logging to logOut.
func loadConfig(flags *globalFlags, logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: flags.configFile,
		EnvFile:    flags.envFile,
	})
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logPretty {
		cfg.Log.Pretty = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := logging.Setup(cfg.LoggingConfig(logOut)); err != nil {
		return nil, err
	}
	return cfg, nil
}
