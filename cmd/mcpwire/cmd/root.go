package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagJournal   = "journal"
	flagMaxBytes  = "max-message-bytes"
)

// NewRootCommand builds the mcpwire command tree around cfg. Persistent flags
// default to the values in cfg.
func NewRootCommand(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "mcpwire",
		Short:         "classify, inspect and serve JSON-RPC 2.0 messages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.LogLevel, flagLogLevel, cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&cfg.LogFormat, flagLogFormat, cfg.LogFormat, "log format (text, json)")
	pf.StringVar(&cfg.Journal, flagJournal, cfg.Journal, "journal backend (none, memory, redis); only redis persists, memory is limited to serve")
	pf.Int64Var(&cfg.MaxMessageBytes, flagMaxBytes, cfg.MaxMessageBytes, "maximum size of a single message")

	root.AddCommand(
		newClassifyCommand(cfg),
		newSchemaCommand(),
		newServeCommand(cfg),
		newJournalCommand(cfg),
	)
	return root
}

func Execute() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCommand(&cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
