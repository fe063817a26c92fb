// Package cli provides the cobra command tree driving the core
// services.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/quarrylabs/hearth/internal/core/ports/driving"
	"github.com/quarrylabs/hearth/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected before Execute. Tests swap these for fakes.
var (
	indexerService   driving.Indexer
	retrieverService driving.Retriever
	libraryService   driving.Library
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hearth",
	Short: "Local document retrieval for grounded answers",
	Long: `Hearth indexes local documents into an embedded vector store and
answers queries with relevant, diverse excerpts ready to ground a
language model response.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable diagnostic logging")
}

// Configure injects the services the commands run against.
func Configure(indexer driving.Indexer, retriever driving.Retriever, library driving.Library) {
	indexerService = indexer
	retrieverService = retriever
	libraryService = library
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
