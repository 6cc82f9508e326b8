package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/fixtures"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "List and validate fixture bundles",
	Long: `Work with the canned-response fixture bundles used for deterministic
operation.

Subcommands:
  list   - List the fixture ids available in the fixtures directory
  check  - Load one fixture and print its contents summary

Examples:
  callisto fixtures list
  callisto fixtures check demo-session`,
}

var fixturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available fixture ids",
	RunE:  listFixtures,
}

var fixturesCheckCmd = &cobra.Command{
	Use:   "check <fixture-id>",
	Short: "Load one fixture and summarize it",
	Long: `Load one fixture the same way deterministic completions do and print
what it contains. A fixture that fails to load here fails the same way at
completion time, so check doubles as validation.`,
	Args: cobra.ExactArgs(1),
	RunE: checkFixture,
}

func init() {
	rootCmd.AddCommand(fixturesCmd)
	fixturesCmd.AddCommand(fixturesListCmd, fixturesCheckCmd)
}

func listFixtures(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	loader := fixtures.NewLoader(cfg.Completion.FixturesDir)
	available := loader.Available()

	if len(available) == 0 {
		fmt.Printf("no fixtures found in %s\n", loader.Dir())
		return nil
	}

	for _, id := range available {
		fmt.Println(id)
	}
	return nil
}

func checkFixture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	loader := fixtures.NewLoader(cfg.Completion.FixturesDir)
	fixture, err := loader.Load(args[0])
	if err != nil {
		return cli.NewCommandError("fixtures", err)
	}

	fmt.Printf("Fixture: %s\n", fixture.ID())
	if fixture.Name != "" {
		fmt.Printf("Name: %s\n", fixture.Name)
	}
	if fixture.Description != "" {
		fmt.Printf("Description: %s\n", fixture.Description)
	}
	fmt.Printf("Indexed responses: %d\n", fixture.ResponseCount())

	if keys := fixture.Storyline.Keys(); len(keys) > 0 {
		fmt.Printf("Storyline keys: %s\n", strings.Join(keys, ", "))
	}
	if len(fixture.Operations) > 0 {
		names := make([]string, 0, len(fixture.Operations))
		for name := range fixture.Operations {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("Operations: %s\n", strings.Join(names, ", "))
	}
	return nil
}
