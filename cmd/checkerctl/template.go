package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/interchange"
)

var templateCmd = &cobra.Command{
	Use:       "template <character|weapon|summon>",
	Short:     "Print the blank bulk sheet for an item type",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"character", "weapon", "summon"},
	RunE: func(cmd *cobra.Command, args []string) error {
		t, ok := domain.ParseItemType(args[0])
		if !ok {
			return fmt.Errorf("unknown item type %q", args[0])
		}
		return interchange.WriteTemplate(cmd.OutOrStdout(), t)
	},
}
