package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/contactmerge/internal/app"
	"github.com/agenthands/contactmerge/internal/config"
	"github.com/agenthands/contactmerge/internal/core"
	"github.com/agenthands/contactmerge/internal/export"
	"github.com/agenthands/contactmerge/internal/logger"
	"github.com/agenthands/contactmerge/internal/vcard"
)

type options struct {
	input          string
	output         string
	csvPath        string
	reportPath     string
	configPath     string
	logLevel       string
	region         string
	fuzzyThreshold int
	workers        int
	noValidate     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "contactmerge",
		Short: "Find and merge duplicate contacts in a vCard file",
		Long: `contactmerge reads a vCard file, groups records that describe the same
person (shared phone or email, exact or similar names) and writes one merged
record per group. Contacts marked ICE are never merged.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "Input vCard file")
	f.StringVarP(&opts.output, "output", "o", "", "Output vCard file")
	f.IntVar(&opts.fuzzyThreshold, "fuzzy-threshold", 85, "Name similarity threshold (0-100)")
	f.StringVar(&opts.region, "region", "", "Region for phone numbers without a country code (default from config, US)")
	f.StringVar(&opts.csvPath, "csv", "", "Also export the result as CSV")
	f.StringVar(&opts.reportPath, "report", "", "Write a JSON report of merged groups")
	f.StringVar(&opts.configPath, "config", "config/config.toml", "Path to TOML config")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.IntVar(&opts.workers, "workers", 0, "Goroutines for pairwise comparison")
	f.BoolVar(&opts.noValidate, "no-validate", false, "Skip re-reading the output file")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// loadConfig layers config file, environment and explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("fuzzy-threshold") {
		cfg.Detection.FuzzyThreshold = opts.fuzzyThreshold
	}
	if flags.Changed("region") {
		cfg.Detection.Region = opts.region
	}
	if flags.Changed("workers") {
		cfg.Detection.Workers = opts.workers
	}
	if flags.Changed("log-level") {
		if !logger.ValidLevel(opts.logLevel) {
			return nil, fmt.Errorf("invalid log level %q", opts.logLevel)
		}
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cobra.Command, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	l := logger.NewLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Output: cmd.ErrOrStderr(),
		JSON:   cfg.Log.JSON,
	})

	services, err := app.Connect(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer services.Close(ctx)

	l.Info("Reading contacts", "path", opts.input)
	contacts, err := vcard.ReadFile(opts.input)
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		return errors.New("no contacts found in input file")
	}
	l.Info("Loaded contacts", "count", len(contacts))

	out, err := services.Deduplicator(cfg.Detection.FuzzyThreshold).Run(ctx, contacts)
	if err != nil {
		return err
	}

	l.Info("Writing contacts", "count", len(out.Final), "path", opts.output)
	if err := vcard.WriteFile(opts.output, out.Final); err != nil {
		return err
	}
	var validation *vcard.Validation
	if !opts.noValidate {
		validation, err = vcard.ValidateFile(opts.output, len(out.Final))
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		for _, w := range validation.Warnings {
			l.Warn("Validation warning", "detail", w)
		}
		if !validation.Valid() {
			return fmt.Errorf("validation failed: %s", strings.Join(validation.Errors, "; "))
		}
		l.Info("Output validated", "contacts", validation.OutputContacts)
	}

	if opts.csvPath != "" {
		if err := export.WriteFile(opts.csvPath, out.Final); err != nil {
			return err
		}
		l.Info("Exported CSV", "path", opts.csvPath)
	}
	if opts.reportPath != "" {
		if err := writeReport(opts.reportPath, out, validation); err != nil {
			return err
		}
	}

	printStats(cmd.OutOrStdout(), out.Stats, validation)
	return nil
}

func writeReport(path string, out *core.Outcome, validation *vcard.Validation) error {
	report := struct {
		RunID      string             `json:"run_id"`
		Groups     []core.GroupReport `json:"groups"`
		Stats      core.Stats         `json:"stats"`
		Validation *vcard.Validation  `json:"validation,omitempty"`
	}{out.RunID, out.Groups, out.Stats, validation}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func printStats(w io.Writer, s core.Stats, v *vcard.Validation) {
	fmt.Fprintln(w, "Deduplication statistics:")
	fmt.Fprintf(w, "  Total contacts:     %d\n", s.TotalContacts)
	fmt.Fprintf(w, "  Duplicate groups:   %d\n", s.DuplicateGroups)
	fmt.Fprintf(w, "  Contacts merged:    %d\n", s.ContactsMerged)
	fmt.Fprintf(w, "  Protected excluded: %d\n", s.ProtectedExcluded)
	fmt.Fprintf(w, "  Final contacts:     %d\n", s.FinalContacts)
	fmt.Fprintf(w, "  Reduction:          %.1f%%\n", s.ReductionPercent)
	if v != nil && v.TotalPhones > 0 {
		fmt.Fprintf(w, "  Phone types kept:   %d/%d (%.1f%%)\n", v.TypedPhones, v.TotalPhones, v.PhoneTypePercent())
	}
}
