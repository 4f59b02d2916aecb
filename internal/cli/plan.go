package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/sourcedit/internal/catalog"
	"github.com/MrSnakeDoc/sourcedit/internal/domain"
)

var validate = validator.New()

type planOptions struct {
	Bundle  string `validate:"required,file"`
	Values  string `validate:"required,file"`
	Edited  string `validate:"required,file"`
	Catalog string `validate:"omitempty,file"`
}

type aggregateOptions struct {
	Bundle  string `validate:"required,file"`
	Catalog string `validate:"omitempty,file"`
}

type aggregateOutput struct {
	Values   map[string]any            `json:"values"`
	Messages map[string]domain.Message `json:"messages"`
}

func newPlanCmd() *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the submission plan for a set of edits, offline",
		Long: `Read a source bundle, the form values and the edited flags from JSON files
and print what a submission would send, including the applications to
revalidate. Nothing is sent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Bundle, "bundle", "", "source bundle JSON file")
	cmd.Flags().StringVar(&opts.Values, "values", "", "form values JSON file")
	cmd.Flags().StringVar(&opts.Edited, "edited", "", "edited flags JSON file")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "type catalog YAML file")
	return cmd
}

func newAggregateCmd() *cobra.Command {
	var opts aggregateOptions

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Print the edit model and status messages of a source bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Bundle, "bundle", "", "source bundle JSON file")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "type catalog YAML file")
	return cmd
}

func runPlan(out io.Writer, opts planOptions) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	var (
		bundle domain.SourceBundle
		values map[string]any
		edited domain.EditedFields
	)
	if err := readJSON(opts.Bundle, &bundle); err != nil {
		return err
	}
	if err := readJSON(opts.Values, &values); err != nil {
		return err
	}
	if err := readJSON(opts.Edited, &edited); err != nil {
		return err
	}

	types, err := loadCatalog(opts.Catalog)
	if err != nil {
		return err
	}

	return writeJSON(out, domain.BuildPlan(bundle, values, edited, types.ApplicationTypes))
}

func runAggregate(out io.Writer, opts aggregateOptions) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	var bundle domain.SourceBundle
	if err := readJSON(opts.Bundle, &bundle); err != nil {
		return err
	}

	types, err := loadCatalog(opts.Catalog)
	if err != nil {
		return err
	}

	sourceType := domain.FindSourceTypeName(types.SourceTypes, bundle.Source.SourceTypeID)
	values, err := domain.Aggregate(bundle, sourceType).Values()
	if err != nil {
		return err
	}

	return writeJSON(out, aggregateOutput{
		Values:   values,
		Messages: domain.SynthesizeMessages(bundle, nil, types.ApplicationTypes),
	})
}

// loadCatalog returns an empty catalog when path is empty.
func loadCatalog(path string) (domain.Catalog, error) {
	if path == "" {
		return domain.Catalog{}, nil
	}

	file, err := catalog.NewLoader(path).Load()
	if err != nil {
		return domain.Catalog{}, err
	}
	types, skipped, err := catalog.NewMapper().MapCatalog(file)
	if err != nil {
		return domain.Catalog{}, err
	}
	for _, s := range skipped {
		fmt.Fprintf(os.Stderr, "⚠️  skipped %s #%d: %s\n", s.Kind, s.Index, s.Reason)
	}
	return types, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
