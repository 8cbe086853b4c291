package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joingate/joingate/internal/config"
	"github.com/joingate/joingate/internal/rules"
)

var rulesConfigPath string

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.PersistentFlags().StringVarP(&rulesConfigPath, "config", "c", "", "Path to config YAML")
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesGetCmd)
	rulesCmd.AddCommand(rulesSetCmd)
	rulesCmd.AddCommand(rulesRemoveCmd)
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and edit per-group admission rules",
	Long:  "Commands for reading and writing the persisted group rules that the\nserve and check commands evaluate against.",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups with stored rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(rulesConfigPath)
		if err != nil {
			return err
		}
		groups := store.Groups()
		if len(groups) == 0 {
			fmt.Println("no stored rules")
			return nil
		}
		for _, g := range groups {
			fmt.Println(g)
		}
		return nil
	},
}

var rulesGetCmd = &cobra.Command{
	Use:   "get <group>",
	Short: "Show a group's rules as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(rulesConfigPath)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(store.Get(args[0]), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var rulesSetCmd = &cobra.Command{
	Use:   "set <group> <field> <value>...",
	Short: "Set one rule field for a group",
	Long: "Fields:\n" +
		"  switch        on|off\n" +
		"  accept        space-separated keywords (empty clears)\n" +
		"  reject        space-separated keywords (empty clears)\n" +
		"  minlevel      non-negative number (0 disables)\n" +
		"  maxattempts   non-negative number (0 disables)\n" +
		"  blacklist     space-separated user ids (empty clears)",
	Args: cobra.MinimumNArgs(2),
	RunE: runRulesSet,
}

func runRulesSet(cmd *cobra.Command, args []string) error {
	store, err := openStore(rulesConfigPath)
	if err != nil {
		return err
	}
	group, field, values := args[0], args[1], args[2:]

	switch field {
	case "switch":
		if len(values) != 1 {
			return fmt.Errorf("switch takes exactly one value: on|off")
		}
		switch strings.ToLower(values[0]) {
		case "on", "true", "1":
			store.SetEnabled(group, true)
		case "off", "false", "0":
			store.SetEnabled(group, false)
		default:
			return fmt.Errorf("invalid switch value %q", values[0])
		}

	case "accept":
		store.SetAcceptKeywords(group, values)

	case "reject":
		store.SetRejectKeywords(group, values)

	case "minlevel":
		n, err := parseNonNegative(values)
		if err != nil {
			return err
		}
		store.SetMinLevel(group, n)

	case "maxattempts":
		n, err := parseNonNegative(values)
		if err != nil {
			return err
		}
		store.SetMaxAttempts(group, n)

	case "blacklist":
		store.SetBlockedUsers(group, values)

	default:
		return fmt.Errorf("unknown field %q", field)
	}

	fmt.Printf("updated %s for group %s\n", field, group)
	return nil
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <group>",
	Short: "Delete a group's stored rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(rulesConfigPath)
		if err != nil {
			return err
		}
		store.Remove(args[0])
		fmt.Printf("removed rules for group %s\n", args[0])
		return nil
	},
}

func parseNonNegative(values []string) (int, error) {
	if len(values) != 1 {
		return 0, fmt.Errorf("expected exactly one numeric value")
	}
	n, err := strconv.Atoi(values[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid value %q: want a non-negative number", values[0])
	}
	return n, nil
}

// openStore loads the config and opens the rule store it points at.
func openStore(configPath string) (*rules.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return rules.NewStore(rules.NewFilePersister(cfg.DataDir), cfg.RuleDefaults()), nil
}
