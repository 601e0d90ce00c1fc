package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/threadforge/internal/app"
)

// ExitError carries a specific process exit code up to main.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Parse processes command-line arguments. The boolean is true when the
// program should exit cleanly without running (help requested).
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("threadforge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
threadforge - rebuild, dedup, and filter forum conversation trees from JSONL dumps.

Usage:
  threadforge -input <root> -output <dir> [options]

Input layout is one directory per subreddit: <root>/<subreddit>/*.jsonl.
Each subreddit is written to <dir>/<subreddit>.jsonl.

Options:
`)
		flagSet.PrintDefaults()
	}

	inputFlag := flagSet.String("input", "", "Root directory of subreddit dumps.")
	iFlag := flagSet.String("i", "", "Root directory of subreddit dumps (shorthand).")
	outputFlag := flagSet.String("output", "", "Destination directory for per-subreddit JSONL files.")
	oFlag := flagSet.String("o", "", "Destination directory (shorthand).")
	tokenizerFlag := flagSet.String("tokenizer", "", "Path to a tokenizer.json vocabulary. Empty counts words.")
	policyFlag := flagSet.String("policy", "", "Path to an HCL policy file with filter/dedup tuning.")
	safeFlag := flagSet.Bool("safe", true, "Refuse to overwrite existing output files.")
	workersFlag := flagSet.Int("workers", 0, "Worker pool size. 0 uses one worker per CPU.")
	maxMalformedFlag := flagSet.Int64("max-malformed", 0, "Abort dispatching once this many malformed lines were seen. 0 disables.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Log level: 'debug', 'info', 'warn', or 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	input := *inputFlag
	if input == "" {
		input = *iFlag
	}
	out := *outputFlag
	if out == "" {
		out = *oFlag
	}

	if input == "" || out == "" {
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "both -input and -output are required"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg, err := app.NewConfig(app.Config{
		InputDir:      input,
		OutputDir:     out,
		TokenizerPath: *tokenizerFlag,
		PolicyPath:    *policyFlag,
		Safe:          *safeFlag,
		Workers:       *workersFlag,
		MaxMalformed:  *maxMalformedFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, false, nil
}
