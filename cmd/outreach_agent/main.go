// Package main provides the entry point for the Outreach CRM HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "outreach_agent",
	Short: "Outreach CRM HTTP API Server",
	Long:  "Outreach CRM manages sales leads and drives a three-agent LLM pipeline that extracts website signals, drafts outreach emails, and verifies them before send.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
