// Package main is the operator CLI for inspecting and repairing the state a
// client keeps in the shared key-value store.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Inspect and repair per-client state",
	Long:          "admin reads and writes the client namespaces of the redis or postgres store used by the api and worker.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagClient string
	flagDriver string
	flagDBHost string
	flagDBPort int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagClient, "client", "c", "", "client id (required)")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "storage driver override, redis or postgres (default reads STORAGE_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&flagDBHost, "db-host", "", "database host override (default reads DATABASE_HOST)")
	rootCmd.PersistentFlags().IntVar(&flagDBPort, "db-port", 0, "database port override (default reads DATABASE_PORT)")
	if err := rootCmd.MarkPersistentFlagRequired("client"); err != nil {
		panic(fmt.Sprintf("failed to mark client flag as required: %v", err))
	}
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
