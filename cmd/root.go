package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/go-arrower/schoolstore"
	admin "github.com/go-arrower/schoolstore/contexts/admin/init"
)

// NewInterruptSignalChannel returns a channel listening for os.Signals the server will react to.
func NewInterruptSignalChannel() chan os.Signal {
	signalsToListenTo := []os.Signal{
		syscall.SIGINT,                   // Strg + c
		syscall.SIGTERM, syscall.SIGQUIT, // terminate but finish/cleanup first, e.g. kill
		os.Interrupt,
	}

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, signalsToListenTo...)

	return osSignal
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "schoolstore",
		Short: "schoolstore manages the books, rewards, store items, and students of a school.",
		Long: `schoolstore keeps each kind of record as one ordered set in a slot of the configured store.
It serves the records as JSON API and manages them from the command line.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is ./schoolstore.yaml)")
	flags.String("env", "", "environment: local, test, dev, or production")
	flags.String("storage", "", "storage driver: memory, file, sqlite, postgres, or s3")
	flags.String("codec", "", "encoding of the slots: json or yaml")
	flags.String("dir", "", "directory of the file storage")
	flags.String("sqlite-path", "", "database file of the sqlite storage")

	return rootCmd
}

// NewSchoolStoreCLI initialises the complete cli with its commands and returns the root command.
func NewSchoolStoreCLI(osSignal <-chan os.Signal) *cobra.Command {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(Version("schoolstore"))
	rootCmd.AddCommand(newServeCmd(osSignal))
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// Execute runs the schoolstore cli.
func Execute() {
	if err := NewSchoolStoreCLI(NewInterruptSignalChannel()).Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (*schoolstore.Config, error) {
	vip := schoolstore.DefaultViper()

	flags := cmd.Flags()

	if file, _ := flags.GetString("config"); file != "" {
		vip.SetConfigFile(file)
	}

	if err := vip.ReadInConfig(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped with ErrInvalidConfig
	}

	for key, flag := range map[string]string{
		"environment":         "env",
		"storage.driver":      "storage",
		"storage.codec":       "codec",
		"storage.dir":         "dir",
		"storage.sqlite_path": "sqlite-path",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := vip.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("%w: %v", schoolstore.ErrInvalidConfig, err) //nolint:errorlint // prevent err in api
			}
		}
	}

	conf := &schoolstore.Config{}
	if err := vip.Unmarshal(conf); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped with ErrInvalidConfig
	}

	if err := conf.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped with ErrInvalidConfig
	}

	return conf, nil
}

// setup initialises all dependencies and the admin context.
// Call the returned shutdown function to release them.
func setup(cmd *cobra.Command) (*schoolstore.Container, *admin.AdminContext, func(ctx context.Context) error, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	conf, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	di, err := schoolstore.InitialiseDefaultDependencies(ctx, conf)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not initialise dependencies: %w", err)
	}

	adminContext, err := admin.NewAdminContext(ctx, di)
	if err != nil {
		_ = di.Shutdown(ctx)

		return nil, nil, nil, err //nolint:wrapcheck // already wrapped by the context
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(adminContext.Shutdown(ctx), di.Shutdown(ctx))
	}

	return di, adminContext, shutdown, nil
}
