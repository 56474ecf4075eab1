package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bookloader/bookloader/internal/classify"
	"github.com/bookloader/bookloader/internal/config"
)

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var (
		explain  bool
		adjacent bool
	)

	cmd := &cobra.Command{
		Use:   "classify SUBJECT...",
		Short: "Map raw subject strings onto the configured categories",
		Example: `  bookloader classify "Cooking--Regional" "Travel"

  # Show which alias matched and its score
  bookloader classify --explain "History, Modern"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}

			taxonomy, _ := classify.NewTaxonomy(cfg.Categories, cfg.AliasesFor)
			var opts []classify.Option
			if adjacent {
				opts = append(opts, classify.WithPairing(classify.PairingAdjacent))
			}
			classifier := classify.New(taxonomy, cfg.Discard, cfg.Threshold, opts...)

			out := cmd.OutOrStdout()
			if !explain {
				for _, category := range classifier.Classify(args) {
					fmt.Fprintln(out, category)
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tALIAS\tMATCHED\tSCORE")
			for _, m := range classifier.Explain(args) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", m.Category, m.Alias, m.Matched, m.Score)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "Show the alias, matched string and score per category")
	cmd.Flags().BoolVar(&adjacent, "adjacent", false, "Only pair neighbouring words when rebuilding compound names")

	return cmd
}
