// @title        Blog API
// @version      1.0
// @description  Multi-user blog: session authentication and ownership-checked posts.
// @BasePath     /
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "blog",
		Short:        "Multi-user blog service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		initDBCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
