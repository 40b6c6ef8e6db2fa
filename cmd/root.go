// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/config"
	"github.com/GDMNiransith/Enhanzer-QA-Assignment/internal/observability"
)

// cli carries state shared by the root command and its subcommands for one invocation.
type cli struct {
	v       *viper.Viper
	cfgFile string
	envFile string
	cfg     *config.Config
}

// NewRootCommand builds a fresh command tree. Each call has its own viper instance so flag and
// config state never leaks between invocations.
func NewRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}
	config.SetDefaults(c.v)

	rootCmd := &cobra.Command{
		Use:           "formcheck",
		Short:         "formcheck verifies the practice registration form end to end in a real browser.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				// Config failed; keep a usable logger for the error path.
				observability.InitializeLogger(config.NewDefaultConfig().Logger)
				return err
			}
			observability.InitializeLogger(c.cfg.Logger)
			observability.GetLogger().Debug("Configuration loaded.", zap.String("version", Version), zap.String("config_file", c.v.ConfigFileUsed()))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	_ = c.v.BindPFlag("logger.level", rootCmd.PersistentFlags().Lookup("log-level"))
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newRunCmd(c),
		newServeCmd(c),
		newCasesCmd(c),
		newVersionCmd(),
	)
	return rootCmd
}

// flagKeys maps subcommand flags to configuration keys. Flags are bound for the executing command
// only, since several subcommands share flag names.
var flagKeys = map[string]string{
	"url":          "form.url",
	"cases":        "run.cases_file",
	"filter":       "run.filter",
	"upload-file":  "run.upload_file",
	"skip-builtin": "run.skip_builtin",
	"headless":     "browser.headless",
	"screenshots":  "report.screenshot_dir",
	"junit":        "report.junit_path",
	"json":         "report.json_path",
}

func (c *cli) bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && err == nil {
			err = c.v.BindPFlag(key, f)
		}
	})
	return err
}

// load resolves configuration: .env, then config file, then environment, then flags.
func (c *cli) load(cmd *cobra.Command) error {
	if c.envFile != "" {
		// Existing environment variables take precedence over the file.
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", c.envFile, err)
		}
	}

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		c.v.AddConfigPath(".")
		c.v.SetConfigName("config")
		c.v.SetConfigType("yaml")
	}
	config.BindEnv(c.v)
	if err := c.bindFlags(cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.NewConfigFromViper(c.v)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// Execute runs the command tree with ctx and logs any failure.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			observability.GetLogger().Info("Command canceled.")
			return err
		}
		if errors.Is(err, errScenariosFailed) {
			return err
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
