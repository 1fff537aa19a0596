package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkgraph",
	Short: "link graph management tool",
	Example: `linkgraph serve
linkgraph db migrate
linkgraph db purge --retention 24h
linkgraph link insert -l source=a -l target=b
linkgraph link list -l source=a --sort target
linkgraph link update -i <link-id> -s target=c
linkgraph link remove -l source=a
linkgraph link watch -e link`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(linkCmd)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
