package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/labelpal/backend/internal/app"
	"github.com/labelpal/backend/internal/domain"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	defaultRecipeInput  = "recipe.json"
	defaultRecipeOutput = "recipe_nutrition.json"
)

// ValidFormats defines the allowed report formats.
var ValidFormats = []string{"json", "yaml"}

// RecipeOptions holds flags of the recipe command.
type RecipeOptions struct {
	Input  string
	Output string
	Format string
}

// recipeProcessor builds a nutrition report from a recipe
type recipeProcessor interface {
	ProcessRecipe(ctx context.Context, request *domain.RecipeRequest) (*domain.RecipeNutritionReport, error)
}

// NewRecipeCommand creates the recipe command.
func NewRecipeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecipeOptions{Input: defaultRecipeInput, Output: defaultRecipeOutput}

	cmd := &cobra.Command{
		Use:   "recipe [input] [output]",
		Short: "Build the nutrition report of a recipe file",
		Long: `Read a recipe JSON file, look every ingredient up in FoodData Central
and write the nutrition report.

The input holds {"recipe_name": ..., "ingredients": [{"name": ..., "amount": ...}]}.
Input defaults to recipe.json and output to recipe_nutrition.json.`,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Input = args[0]
			}
			if len(args) > 1 {
				opts.Output = args[1]
			}
			if !isValidFormat(opts.Format) {
				return errors.Newf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			cfg, logger, err := loadRuntime(rootOpts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return runRecipe(cmd.Context(), afero.NewOsFs(), a.Recipes, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "json", "report format (json|yaml)")

	return cmd
}

func runRecipe(ctx context.Context, fs afero.Fs, processor recipeProcessor, opts *RecipeOptions, w io.Writer) error {
	request, err := readRecipeFile(fs, opts.Input)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s\n", pterm.Gray("Processing recipe:"), pterm.LightCyan(request.RecipeName))

	report, err := processor.ProcessRecipe(ctx, request)
	if err != nil {
		return errors.Wrap(err, "failed to process recipe")
	}

	body, err := encodeReport(report, opts.Format)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, opts.Output, body, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", opts.Output)
	}

	printSummary(w, report)
	fmt.Fprintf(w, "%s %s\n", pterm.LightGreen("Nutrition data saved to"), opts.Output)
	return nil
}

// readRecipeFile loads a recipe request from a JSON file
func readRecipeFile(fs afero.Fs, path string) (*domain.RecipeRequest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Newf("input file %s not found", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var request domain.RecipeRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, errors.Wrapf(err, "invalid JSON in %s", path)
	}
	if request.RecipeName == "" {
		request.RecipeName = domain.DefaultRecipeName
	}
	return &request, nil
}

// encodeReport renders report as indented JSON or YAML
func encodeReport(report *domain.RecipeNutritionReport, format string) ([]byte, error) {
	switch format {
	case "yaml":
		body, err := yaml.Marshal(report)
		return body, errors.Wrap(err, "failed to encode report as yaml")
	default:
		body, err := json.MarshalIndent(report, "", "  ")
		return body, errors.Wrap(err, "failed to encode report as json")
	}
}

func printSummary(w io.Writer, report *domain.RecipeNutritionReport) {
	for _, record := range report.IngredientsNutrition {
		if record.Status == domain.StatusFound {
			fmt.Fprintf(w, "  %s %s %s %s\n",
				pterm.LightGreen("✓"),
				record.Name,
				pterm.Gray("→"),
				pterm.White(*record.MatchedFood))
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", pterm.Yellow("✗"), record.Name, pterm.Gray("(not found)"))
	}
	fmt.Fprintf(w, "%s %d/%d ingredients matched\n",
		pterm.LightCyan("Summary:"), report.Found(), len(report.IngredientsNutrition))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
