package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/kinocat/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an annotated config file",
	Long: `Write the default config for kinocatd.

The file references $KINOCAT_JWT_SECRET; set it (or edit the file)
before starting the server.`,
	Args: cobra.NoArgs,
	RunE: runInitCmd,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("path", "", "Config path (default: "+config.DefaultPath()+")")
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
