package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var blockConfigPath string

func init() {
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(unblockCmd)
	blockCmd.Flags().StringVarP(&blockConfigPath, "config", "c", "", "Path to config YAML")
	unblockCmd.Flags().StringVarP(&blockConfigPath, "config", "c", "", "Path to config YAML")
}

var blockCmd = &cobra.Command{
	Use:   "block <group> <user>",
	Short: "Add a user to a group's blacklist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(blockConfigPath)
		if err != nil {
			return err
		}
		if store.AddBlockedUser(args[0], args[1]) {
			fmt.Printf("blocked %s in group %s\n", args[1], args[0])
		} else {
			fmt.Printf("%s is already blocked in group %s\n", args[1], args[0])
		}
		return nil
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <group> <user>",
	Short: "Remove a user from a group's blacklist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(blockConfigPath)
		if err != nil {
			return err
		}
		if store.RemoveBlockedUser(args[0], args[1]) {
			fmt.Printf("unblocked %s in group %s\n", args[1], args[0])
		} else {
			fmt.Printf("%s is not on the blacklist of group %s\n", args[1], args[0])
		}
		return nil
	},
}
