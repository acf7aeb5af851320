package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/theopenlane/consentaudit/internal/taxonomy"
)

// taxonomyCmd groups the rule data commands
var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "inspect and validate the pattern taxonomy",
}

var taxonomyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "load the builtin and user rule files and report errors",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return validateTaxonomy(cmd.OutOrStdout(), k.String("dir"))
	},
}

var taxonomyListCmd = &cobra.Command{
	Use:   "list",
	Short: "list the rule sets and their rule counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listTaxonomy(cmd.OutOrStdout(), k.String("dir"))
	},
}

var taxonomyShowCmd = &cobra.Command{
	Use:   "show <rule set> [rule id]",
	Short: "print a rule set, or a single rule of it, as yaml",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ruleID string
		if len(args) > 1 {
			ruleID = args[1]
		}

		return showTaxonomy(cmd.OutOrStdout(), k.String("dir"), args[0], ruleID)
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.AddCommand(taxonomyValidateCmd, taxonomyListCmd, taxonomyShowCmd)

	taxonomyCmd.PersistentFlags().String("dir", "", "directory of user rule files")
}

func validateTaxonomy(out io.Writer, dir string) error {
	loader := taxonomy.NewLoader(dir)

	tax, err := loader.Load()
	if err != nil {
		return fmt.Errorf("taxonomy is invalid: %w", err)
	}

	source := "builtin rules"
	if loader.UserDir() != "" {
		source = "builtin rules and " + loader.UserDir()
	}

	_, err = fmt.Fprintf(out, "taxonomy %s is valid: %d rule sets from %s\n", tax.Version(), len(tax.Sets()), source)

	return err
}

func listTaxonomy(out io.Writer, dir string) error {
	tax, err := taxonomy.NewLoader(dir).Load()
	if err != nil {
		return fmt.Errorf("loading taxonomy: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "RULE SET\tRULES\tDESCRIPTION\n") //nolint:errcheck

	for _, set := range tax.Sets() {
		fmt.Fprintf(w, "%s\t%d\t%s\n", set.Name, len(set.Rules), set.Description) //nolint:errcheck
	}

	return w.Flush()
}

func showTaxonomy(out io.Writer, dir, setName, ruleID string) error {
	tax, err := taxonomy.NewLoader(dir).Load()
	if err != nil {
		return fmt.Errorf("loading taxonomy: %w", err)
	}

	if !tax.Has(setName) {
		return fmt.Errorf("%w: %s", ErrUnknownRuleSet, setName)
	}

	var doc any = tax.Set(setName)

	if ruleID != "" {
		rule := tax.Set(setName).Rule(ruleID)
		if rule == nil {
			return fmt.Errorf("%w: %s in %s", ErrUnknownRule, ruleID, setName)
		}

		doc = rule
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}

	return enc.Close()
}
