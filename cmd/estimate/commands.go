package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/homechef/api/internal/di"
	"github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/estimator"
	"github.com/homechef/api/internal/format"
	"github.com/homechef/api/internal/platform/config"
	"github.com/homechef/api/internal/repositories/memory"
)

type estimateFlags struct {
	recipe      string
	recipeID    string
	people      int
	repetitions int
	budget      float64
	seed        uint64
	variation   float64
	band        float64
	priceTable  string
	timePolicy  string
	currency    string
	locale      string
}

func newRootCommand(out io.Writer) *cobra.Command {
	flags := estimateFlags{}
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate ingredient cost and cooking time for a recipe",
		Long: `Scale a recipe to a headcount and estimate what it costs and how long it takes.

Examples:
  estimate --recipe ndole.yaml --people 8
  estimate --recipe ndole.yaml --people 6 --repetitions 2 --budget 15000
  estimate --recipe ndole.yaml --people 4 --seed 42 --time-policy sqrt
  estimate prices --price-table prices.yaml`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEstimate(cmd, out, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.recipe, "recipe", "r", "", "Recipe YAML file")
	f.StringVar(&flags.recipeID, "id", "", "Recipe id when the file holds several recipes (default: first)")
	f.IntVarP(&flags.people, "people", "p", 0, "Number of people to cook for (1-20)")
	f.IntVarP(&flags.repetitions, "repetitions", "n", 1, "Number of times the dish is cooked (1-10)")
	f.Float64Var(&flags.budget, "budget", 0, "Optional budget ceiling; 0 disables the check")
	f.Uint64Var(&flags.seed, "seed", 0, "Seed for a reproducible market variation draw")
	f.Float64Var(&flags.variation, "variation", 0, "Fixed market variation factor, e.g. 0.05 for +5%")
	f.Float64Var(&flags.band, "band", estimator.DefaultVariationBand, "Half-width of the market variation band")
	_ = cmd.MarkFlagRequired("recipe")
	_ = cmd.MarkFlagRequired("people")
	cmd.MarkFlagsMutuallyExclusive("seed", "variation")

	addTableFlags(cmd, &flags)
	cmd.AddCommand(newPricesCommand(out))
	return cmd
}

func addTableFlags(cmd *cobra.Command, flags *estimateFlags) {
	f := cmd.Flags()
	f.StringVar(&flags.priceTable, "price-table", "", "Price table YAML file (default: built-in table)")
	f.StringVar(&flags.timePolicy, "time-policy", string(estimator.TimePolicyLinear), "Time scaling policy: linear or sqrt")
	f.StringVar(&flags.currency, "currency", format.DefaultCurrency, "ISO 4217 currency code")
	f.StringVar(&flags.locale, "locale", "fr-CM", "Locale used to format amounts")
}

func newPricesCommand(out io.Writer) *cobra.Command {
	flags := estimateFlags{}
	cmd := &cobra.Command{
		Use:          "prices",
		Short:        "Print the active price and unit tables as YAML",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			est, err := di.NewEstimator(estimatorConfig(flags), estimator.NoVariation)
			if err != nil {
				return err
			}
			cfg := est.Config()
			data, err := estimator.MarshalTables(strings.ToUpper(flags.currency), cfg.Prices, cfg.Units)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	addTableFlags(cmd, &flags)
	return cmd
}

func estimatorConfig(flags estimateFlags) config.EstimatorConfig {
	return config.EstimatorConfig{
		PriceTableFile: flags.priceTable,
		TimePolicy:     flags.timePolicy,
		VariationBand:  flags.band,
		Currency:       strings.ToUpper(flags.currency),
		Locale:         flags.locale,
	}
}

func runEstimate(cmd *cobra.Command, out io.Writer, flags estimateFlags) error {
	recipe, err := loadRecipe(flags.recipe, flags.recipeID)
	if err != nil {
		return err
	}

	var variation estimator.VariationSource
	switch {
	case cmd.Flags().Changed("variation"):
		variation = estimator.FixedVariation(flags.variation)
	case cmd.Flags().Changed("seed"):
		variation = estimator.NewSeededVariation(flags.seed)
	}
	est, err := di.NewEstimator(estimatorConfig(flags), variation)
	if err != nil {
		return err
	}
	currency, err := format.NewCurrency(strings.ToUpper(flags.currency), flags.locale)
	if err != nil {
		return err
	}

	result, err := est.Estimate(estimator.Request{
		Recipe:       recipe,
		TargetPeople: flags.people,
		Repetitions:  flags.repetitions,
		Budget:       flags.budget,
	})
	if err != nil {
		if verr, ok := estimator.IsValidationError(err); ok {
			return fmt.Errorf("invalid --%s: %w", flagName(verr.Field), err)
		}
		return err
	}
	return printResult(out, result, currency)
}

func loadRecipe(path, id string) (domain.Recipe, error) {
	recipes, err := memory.LoadRecipesFile(path)
	if err != nil {
		return domain.Recipe{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return recipes[0], nil
	}
	for _, recipe := range recipes {
		if recipe.ID == id {
			return recipe, nil
		}
	}
	return domain.Recipe{}, fmt.Errorf("recipe %q not found in %s", id, path)
}

func flagName(field string) string {
	if field == estimator.FieldTargetPeople {
		return "people"
	}
	return field
}

func printResult(out io.Writer, result estimator.Result, currency format.Currency) error {
	fmt.Fprintf(out, "%s for %d people x%d\n\n", result.RecipeName, result.TargetPeople, result.Repetitions)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INGREDIENT\tQUANTITY\tUNIT\tCATEGORY\tCOST")
	for _, ing := range result.AdjustedIngredients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ing.Name, formatQuantity(ing.AdjustedQuantity), ing.Unit, ing.Category, currency.Format(ing.LineCost))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Subtotal: %s\n", currency.Format(result.IngredientsSubtotal))
	if result.Repetitions > 1 {
		fmt.Fprintf(out, "Repeated: %s\n", currency.Format(result.RepeatedTotal))
	}
	if result.Overhead > 0 {
		fmt.Fprintf(out, "Overhead: %s\n", currency.Format(result.Overhead))
	}
	fmt.Fprintf(out, "Variation: %+.1f%%\n", result.Variation*100)
	fmt.Fprintf(out, "Total: %s (%s per serving)\n", currency.Format(result.TotalCost), currency.Format(result.CostPerServing))
	if result.FloorApplied {
		fmt.Fprintln(out, "Minimum cost applied")
	}
	fmt.Fprintf(out, "Time: %d min (%s, base %d min)\n", result.TotalTimeMinutes, result.TimePolicy, result.BaseTimeMinutes)
	if result.Budget > 0 {
		status := "within budget"
		if result.BudgetExceeded {
			status = "exceeded"
		}
		fmt.Fprintf(out, "Budget: %s %s\n", currency.Format(result.Budget), status)
	}
	return nil
}

func formatQuantity(q float64) string {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return "-"
	}
	return strconv.FormatFloat(math.Round(q*100)/100, 'f', -1, 64)
}
