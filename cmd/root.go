package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facematch",
	Short: "Face recognition matching against enrolled identities",
	Long: `Facematch detects faces in photos and matches them against a roster of
enrolled identities using embeddings from an external embedding service.
It runs either as an HTTP API (serve) or as a local CLI for one-off
matching, diagnostics and enrollment extraction.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
