package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/germanamz/ultima/pkg/engine"
	"github.com/germanamz/ultima/pkg/ultimadir"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Viper keys. Each is also readable from the environment as ULTIMA_<KEY>.
const (
	keyConfig  = "config"
	keyDir     = "dir"
	keyEnv     = "env"
	keyVerbose = "verbose"
)

// app carries the state shared by every subcommand.
type app struct {
	v      *viper.Viper
	log    *zap.Logger
	out    io.Writer
	errOut io.Writer

	// engineOpts are appended to the options used to build the engine.
	engineOpts []engine.Option
	eng        *engine.Engine
}

func newApp() *app {
	v := viper.New()
	v.SetEnvPrefix("ULTIMA")
	v.AutomaticEnv()

	return &app{
		v:      v,
		log:    zap.NewNop(),
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ultima",
		Short: "Unified front end for local and cloud AI tools",
		Long: `ultima wraps a local ollama daemon, a Dolphin node project, the gemini CLI
and a Claude subscription behind one command line.

Run without arguments to print the integration status report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStatus(cmd.Context(), statusOptions{})
		},
	}

	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "path to configuration file (default: <dir>/config.json)")
	flags.String(keyDir, ultimadir.Default().Root(), "path to the ultima directory")
	flags.String(keyEnv, "", "path to .env file (default: <dir>/.env, ignored if missing)")
	flags.BoolP(keyVerbose, "v", false, "enable debug logging")

	for _, key := range []string{keyConfig, keyDir, keyEnv, keyVerbose} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		newStatusCmd(a),
		newGenerateCmd(a),
		newChatCmd(a),
		newModelsCmd(a),
		newDolphinCmd(a),
		newClaudeCmd(a),
		newInitCmd(a),
		newServeCmd(a),
	)

	return root
}

func (a *app) dir() ultimadir.Dir {
	return ultimadir.New(a.v.GetString(keyDir))
}

// setup loads the .env file and builds the logger.
func (a *app) setup() error {
	envPath := a.v.GetString(keyEnv)
	if envPath == "" {
		envPath = a.dir().EnvPath()
	}

	if err := loadDotEnv(envPath); err != nil {
		return err
	}

	log, err := buildLogger(a.v.GetBool(keyVerbose))
	if err != nil {
		return err
	}
	a.log = log

	return nil
}

func (a *app) teardown() {
	if a.eng != nil {
		_ = a.eng.Close()
	}
	_ = a.log.Sync()
}

// engine builds the engine on first use.
func (a *app) engine(ctx context.Context) (*engine.Engine, error) {
	if a.eng != nil {
		return a.eng, nil
	}

	cfg, err := loadConfig(resolveConfigPath(a.v.GetString(keyConfig), a.dir()))
	if err != nil {
		return nil, err
	}

	opts := append([]engine.Option{engine.WithLogger(a.log)}, a.engineOpts...)

	eng, err := engine.New(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	a.eng = eng

	return eng, nil
}

// loadDotEnv loads environment variables from a .env file. A missing file is
// silently ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}

// buildLogger returns a development logger at debug level when verbose is
// set, and a production logger that only reports warnings otherwise. Both
// write to stderr so stdout stays clean for results and the MCP transport.
func buildLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if verbose {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	return log, nil
}

// resolveConfigPath picks the configuration file: explicit flag, then
// <dir>/config.json. An empty result means built-in defaults.
func resolveConfigPath(flagPath string, d ultimadir.Dir) string {
	if flagPath != "" {
		return flagPath
	}

	if d.HasConfig() {
		return d.ConfigPath()
	}

	return ""
}

func loadConfig(path string) (engine.Config, error) {
	if path == "" {
		return engine.ParseConfig(nil)
	}

	return engine.LoadConfig(path)
}
