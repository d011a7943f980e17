package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/easyapply/internal/config"
	"github.com/jonathan/easyapply/internal/heuristic"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the question rule table",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in match order with rendered answers",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesTestCmd = &cobra.Command{
	Use:   "test <question>",
	Short: "Show which rule answers a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesTest,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd, rulesTestCmd)
	rootCmd.AddCommand(rulesCmd)
}

// ruleTable returns the configured rules, or the built-in table when none are set.
func ruleTable(cfg *config.Config) (*heuristic.Answerer, error) {
	rules := cfg.Answers.Rules
	if len(rules) == 0 {
		rules = heuristic.DefaultRules()
	}
	return heuristic.New(rules, cfg.TemplateVars(), nil, commandLogger())
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return err
	}
	rules := cfg.Answers.Rules
	if len(rules) == 0 {
		rules = heuristic.DefaultRules()
	}
	if _, err := ruleTable(cfg); err != nil {
		return err
	}

	vars := cfg.TemplateVars()
	out := cmd.OutOrStdout()
	for i, r := range rules {
		answer := heuristic.Render(r.Answer, vars)
		if strings.TrimSpace(answer) == "" {
			answer = "(empty, falls through)"
		}
		_, _ = fmt.Fprintf(out, "%2d. %-40s -> %s\n", i+1, r.Pattern, answer)
	}
	return nil
}

func runRulesTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return err
	}
	table, err := ruleTable(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	m, ok := table.Match(args[0])
	if !ok {
		_, _ = fmt.Fprintln(out, "No rule matches; the fallback would be asked")
		return nil
	}
	if strings.TrimSpace(m.Answer) == "" {
		_, _ = fmt.Fprintf(out, "Rule %d (%s) matches but renders empty; the fallback would be asked\n", m.Index+1, m.Pattern)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Rule %d (%s) -> %s\n", m.Index+1, m.Pattern, m.Answer)
	return nil
}
