package main

import (
	"fmt"
	"strings"

	"lumi/internal/system"

	"github.com/spf13/cobra"
)

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := system.Boot(ctx, bootConfig())
	if err != nil {
		return err
	}
	defer rt.Close()

	turn, err := rt.Loop.ProcessTurn(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), turn.Content)
	return nil
}
