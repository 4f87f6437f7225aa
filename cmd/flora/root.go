package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	envServer     = "FLORA_SERVER"
	defaultServer = "http://localhost:8080"
)

type commandContext struct {
	serverFlag *string
	apiPath    string
}

func (c *commandContext) client() *client {
	server := strings.TrimSpace(*c.serverFlag)
	if server == "" {
		server = defaultServer
	}
	return newClient(server, c.apiPath)
}

func newRootCommand() *cobra.Command {
	var serverFlag string

	ctx := &commandContext{
		serverFlag: &serverFlag,
		apiPath:    "/api",
	}

	rootCmd := &cobra.Command{
		Use:           "flora",
		Short:         "Identify plants from photos",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	server := os.Getenv(envServer)
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", server, "Flora server URL (env "+envServer+")")

	rootCmd.AddCommand(newIdentifyCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))

	return rootCmd
}
