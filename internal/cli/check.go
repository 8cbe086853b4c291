package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joingate/joingate/internal/attempts"
	"github.com/joingate/joingate/internal/config"
	"github.com/joingate/joingate/internal/engine"
	"github.com/joingate/joingate/internal/rules"
)

var (
	checkConfigPath string
	checkGroup      string
	checkUser       string
	checkComment    string
	checkLevel      int
	checkFormat     string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkConfigPath, "config", "c", "", "Path to config YAML")
	checkCmd.Flags().StringVar(&checkGroup, "group", "", "Group the request targets (required)")
	checkCmd.Flags().StringVar(&checkUser, "user", "", "Requesting user (required)")
	checkCmd.Flags().StringVar(&checkComment, "comment", "", "Join request comment")
	checkCmd.Flags().IntVar(&checkLevel, "level", -1, "Requester account level (-1 for unknown)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.MarkFlagRequired("group")
	checkCmd.MarkFlagRequired("user")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run a join request against the stored rules",
	Long: "Evaluates a hypothetical join request against a group's stored\n" +
		"rules without touching any state: no blacklist insert, no attempt\n" +
		"counted, nothing resolved.\n\n" +
		"Exit code 0 when the request would be approved, 1 when rejected.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(checkConfigPath)
	if err != nil {
		return err
	}

	store := rules.NewStore(rules.NewFilePersister(cfg.DataDir), cfg.RuleDefaults())
	eng := engine.New(store, attempts.NewTracker())

	var level *int
	if checkLevel >= 0 {
		level = &checkLevel
	}

	v := eng.Check(checkGroup, checkUser, checkComment, level)

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(map[string]any{
			"approve": v.Approve,
			"reason":  v.Reason,
			"rule":    v.Rule,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		decision := "approve"
		if !v.Approve {
			decision = "reject"
		}
		fmt.Printf("decision: %s\n", decision)
		if v.Reason != "" {
			fmt.Printf("reason:   %s\n", v.Reason)
		}
		fmt.Printf("rule:     %s\n", v.Rule)
	}

	if !v.Approve {
		os.Exit(1)
	}
	return nil
}
