package cmd

import (
	"context"
	"fmt"
	"os"

	// Subcommands
	"github.com/cozy-creator/model-server/cmd/modelserver/client"
	db "github.com/cozy-creator/model-server/cmd/modelserver/db"
	run "github.com/cozy-creator/model-server/cmd/modelserver/run"
	"github.com/cozy-creator/model-server/cmd/modelserver/worker"
	"github.com/cozy-creator/model-server/internal/config"

	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "modelserver",
	Short: "Model serving front end",
	Long:  "A gRPC front end that keeps a registry of servable models and streams inference results from an execution pool",

	SilenceUsage: true,

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.BindEnvs()

		if err := config.BindFlags(cmd.Flags()); err != nil {
			return err
		}

		// Load config and env files
		return config.LoadEnvAndConfigFiles()
	},
}

func Execute() {
	if err := Cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("config-file", "", "Path to the config file")
	pflags.String("env-file", "", "Path to the env file")
	pflags.String("log-level", "", "Log level: debug, info, warn or error")

	config.KeyFlag(pflags, "config-file", "config_file")
	config.KeyFlag(pflags, "env-file", "env_file")
	config.KeyFlag(pflags, "log-level", "log_level")

	Cmd.AddCommand(run.Cmd, db.Cmd, worker.Cmd, client.ModelsCmd, client.GenerateCmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
