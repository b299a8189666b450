// cmd/iie is the local/offline CLI for the Ingredient Intelligence Engine:
// normalize a raw ingredient name, run a full safety analysis, or look up
// substitutes, all without standing up the HTTP API server. There is no
// persistence here — the catalog is seed data plus whatever the registries
// return for this one invocation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ingredient-intel/iie/internal/catalog"
	"github.com/ingredient-intel/iie/internal/config"
	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/embedding"
	"github.com/ingredient-intel/iie/internal/normalize"
	"github.com/ingredient-intel/iie/internal/orchestrator"
	"github.com/ingredient-intel/iie/internal/registry"
	"github.com/ingredient-intel/iie/internal/substitution"
)

var (
	conditionsFlag string
	kFlag          int
)

func main() {
	root := &cobra.Command{
		Use:   "iie",
		Short: "Ingredient Intelligence Engine command-line client",
	}

	root.AddCommand(normalizeCmd(), analyzeCmd(), substitutesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <raw-name>",
		Short: "Normalize a raw ingredient name to its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lex, err := normalize.LoadLexicon()
			if err != nil {
				return fmt.Errorf("load lexicon: %w", err)
			}
			normalizer := normalize.New(lex, nil)

			canonical, ok := normalizer.Normalize(ingredient.RawName(args[0]))
			if !ok {
				return fmt.Errorf("could not normalize %q", args[0])
			}
			return printJSON(struct {
				Raw       string `json:"raw"`
				Canonical string `json:"canonical"`
			}{Raw: args[0], Canonical: string(canonical)})
		},
	}
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <ingredient> [ingredient...]",
		Short: "Run a full safety analysis over one or more ingredients",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := buildStack(cmd.Context())
			if err != nil {
				return err
			}

			raws := make([]ingredient.RawName, len(args))
			for i, a := range args {
				raws[i] = ingredient.RawName(a)
			}

			analysis, err := stack.orchestrator.Analyze(cmd.Context(), raws, splitConditions(conditionsFlag))
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
			return printJSON(analysis)
		},
	}
	cmd.Flags().StringVar(&conditionsFlag, "conditions", "", "comma-separated user skin/health conditions")
	return cmd
}

func substitutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "substitutes <ingredient>",
		Short: "Recommend safer substitutes for an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := buildStack(cmd.Context())
			if err != nil {
				return err
			}

			candidates, err := stack.substitution.FindSubstitutes(
				cmd.Context(),
				ingredient.CanonicalName(args[0]),
				splitConditions(conditionsFlag),
				kFlag,
			)
			if err != nil {
				return fmt.Errorf("find substitutes: %w", err)
			}
			return printJSON(candidates)
		},
	}
	cmd.Flags().StringVar(&conditionsFlag, "conditions", "", "comma-separated user skin/health conditions")
	cmd.Flags().IntVar(&kFlag, "k", substitution.DefaultK, "number of substitutes to return")
	return cmd
}

// stack bundles the collaborators every analysis/substitutes invocation
// needs, built fresh per run since the CLI keeps no persistent state.
type stack struct {
	orchestrator *orchestrator.Orchestrator
	substitution *substitution.Engine
}

func buildStack(ctx context.Context) (*stack, error) {
	lex, err := normalize.LoadLexicon()
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	normalizer := normalize.New(lex, nil)

	cat, err := catalog.NewSeeded(nil)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	taxonomy := ingredient.NewTaxonomy()
	for _, profile := range cat.All() {
		for _, category := range lex.CategoriesOf(string(profile.CanonicalName)) {
			taxonomy.Assign(profile.CanonicalName, ingredient.FunctionalCategory(category))
		}
	}

	space := embedding.New(embedding.DefaultConfig())
	space.Build(cat.All())

	fetchers := registry.BuildTable(registry.DefaultEndpoints(), nil)
	scheduler := registry.NewScheduler(config.DefaultRegistryMaxConcurrentCalls, registry.DefaultPerRegistryConcurrency())
	resolver := orchestrator.NewResolver(cat, scheduler, fetchers)

	substEngine := substitution.New(cat, resolver, taxonomy, space, nil)
	orch := orchestrator.New(normalizer, cat, resolver, substEngine, orchestrator.DefaultConfig())

	return &stack{orchestrator: orch, substitution: substEngine}, nil
}

func splitConditions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
