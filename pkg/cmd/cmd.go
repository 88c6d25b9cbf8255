// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/auditiq/auditiq-gateway/pkg/app"
	"github.com/auditiq/auditiq-gateway/pkg/log"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "auditiq",
		Short: "AuditIQ gateway: dataset ingestion and self-healing compute proxy",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Init()

			a := app.NewApp(configPath)
			defer a.Close() //nolint:errcheck

			return a.Run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	rootCmd.AddCommand(serveCmd)

	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
