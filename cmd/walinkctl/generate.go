package main

import (
	"context"
	"encoding/json"
	"fmt"

	"walink/internal/domain"
	"walink/internal/generator"

	"github.com/spf13/cobra"
)

var (
	generateLang    string
	generateWithSEO bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Run the article generation chain and print the draft as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		providers, err := generator.NewProviders(cfg.AI.Providers, cfg.AI.MaxTokens, nil)
		if err != nil {
			return fmt.Errorf("building providers: %w", err)
		}
		chain := generator.NewChain(providers, cfg.AI.Timeout, newLogger())

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AI.TotalTimeout)
		defer cancel()

		draft, err := chain.Generate(ctx, args[0], domain.Language(generateLang))
		if err != nil {
			return err
		}
		if generateWithSEO && draft.Source != generator.TemplateSource {
			draft.SEO = chain.GenerateSEOData(ctx, draft.Title, draft.Excerpt, draft.Language)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(draft)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateLang, "lang", string(domain.DefaultLanguage), "Article language (ar or en)")
	generateCmd.Flags().BoolVar(&generateWithSEO, "seo", false, "Also ask the providers for SEO metadata")
	rootCmd.AddCommand(generateCmd)
}
