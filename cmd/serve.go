package cmd

import (
	"github.com/emrgen/linkgraph/internal/config"
	"github.com/emrgen/linkgraph/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port string

	command := &cobra.Command{
		Use:   "serve",
		Short: "Start the link service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.GrpcPort = port
			}

			return server.Start(cfg)
		},
	}

	command.Flags().StringVarP(&port, "port", "p", "", "grpc port (default GRPC_PORT)")

	return command
}
