// Package cli wires the budget allocator into a command line tool: it
// reads a context document, runs one optimization, and emits the result
// in the requested form.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/promptops/ctxpack/internal/core/budget"
	"github.com/promptops/ctxpack/internal/core/schema"
	"github.com/promptops/ctxpack/internal/tui"
	"github.com/promptops/ctxpack/pkg/render"
)

// Run executes one optimization using the provided CLI arguments. It
// returns a POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	defaultCategory := os.Getenv("CTXPACK_CATEGORY")
	defaultMax := envInt("CTXPACK_MAX_TOKENS", 0)
	defaultReserve := envInt("CTXPACK_RESERVE_TOKENS", 0)

	flagSet := flag.NewFlagSet("ctxpack", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	contextPath := flagSet.String("context", "-", "path to the context JSON document, or - for stdin")
	category := flagSet.String("category", defaultCategory, "caller category selecting a packing strategy")
	maxTokens := flagSet.Int("max-tokens", defaultMax, "total context window size in tokens")
	reserveTokens := flagSet.Int("reserve-tokens", defaultReserve, "tokens held back from the window")
	strategyPath := flagSet.String("strategy", "", "optional YAML strategy document to register before packing")
	output := flagSet.String("output", "json", "output form: json, markdown, or report")
	inspect := flagSet.Bool("tui", false, "open the interactive report viewer instead of printing")
	verbose := flagSet.Bool("verbose", false, "log debug detail to stderr")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	raw, err := readContext(*contextPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read context: %v\n", err)
		return 1
	}

	registry := budget.NewRegistry()
	if *strategyPath != "" {
		registered, err := registerStrategy(registry, *strategyPath)
		if err != nil {
			fmt.Fprintf(stderr, "failed to load strategy: %v\n", err)
			return 1
		}
		if *category == "" {
			*category = registered
		}
	}

	level := budget.LogLevelWarn
	if *verbose {
		level = budget.LogLevelDebug
	}
	optimizer, err := budget.NewOptimizer(budget.OptimizerOptions{
		MaxContextTokens: *maxTokens,
		ReserveTokens:    *reserveTokens,
		Strategies:       registry,
		Logger:           budget.NewStdLogger(level, stderr),
		Metrics:          budget.NewInMemoryMetrics(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 1
	}

	result := optimizer.Optimize(ctx, raw, *category)

	if *inspect {
		if err := tui.Run(result); err != nil {
			fmt.Fprintf(stderr, "viewer error: %v\n", err)
			return 1
		}
		return 0
	}

	switch *output {
	case "json":
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			fmt.Fprintf(stderr, "failed to encode result: %v\n", err)
			return 1
		}
	case "markdown":
		fmt.Fprint(stdout, render.Markdown(&result.PackedContext))
	case "report":
		fmt.Fprint(stdout, render.Report(result))
	default:
		fmt.Fprintf(stderr, "unknown output form %q\n", *output)
		return 2
	}
	return 0
}

func readContext(path string, stdin io.Reader) (*budget.Fields, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return budget.ParseFields(data)
}

// strategyDocument is the YAML/JSON shape of a user-supplied strategy.
type strategyDocument struct {
	Category        string             `yaml:"category" json:"category"`
	CriticalFields  []string           `yaml:"criticalFields" json:"criticalFields"`
	ImportantFields []string           `yaml:"importantFields" json:"importantFields"`
	Weights         map[string]float64 `yaml:"weights" json:"weights"`
}

// registerStrategy loads a YAML strategy document, checks it against the
// schema, and registers it. It returns the document's category.
func registerStrategy(registry *budget.Registry, path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	// Route through the JSON schema so YAML and JSON callers share one
	// contract.
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", path, err)
	}
	if err := schema.ValidateStrategyDocument(asJSON); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	var doc strategyDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	registry.Register(doc.Category, budget.Strategy{
		Name:            doc.Category,
		CriticalFields:  doc.CriticalFields,
		ImportantFields: doc.ImportantFields,
		Weights:         doc.Weights,
	})
	return doc.Category, nil
}

func envInt(name string, fallback int) int {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
