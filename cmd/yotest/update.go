package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yotest/internal/update"
)

func newUpdateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [SUBSUBCOMMAND]",
		Short: "Update the input or output of the tests",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				c.usage()
				return fmt.Errorf("unknown subcommand `update %s`. Available commands are `update input` or `update output`", args[0])
			}
			return c.updateOutput(cmd, nil)
		},
	}
	cmd.AddCommand(newUpdateOutputCmd(c))
	cmd.AddCommand(newUpdateInputCmd(c))
	return cmd
}

func newUpdateOutputCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "output [TARGET] [SUBCOMMAND|all]",
		Short: "Re-record the output of a fixture or a folder of fixtures",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.updateOutput(cmd, args)
		},
	}
}

func (c *cli) updateOutput(cmd *cobra.Command, args []string) error {
	target := c.cfg.Fixtures.Target
	sub := update.AllSubcommands
	if len(args) > 0 {
		target = args[0]
	}
	if len(args) > 1 {
		sub = args[1]
	}
	if err := c.checkSubcommand(sub); err != nil {
		return err
	}
	idx := c.timer.Begin("update")
	err := c.newUpdater().OutputTree(cmd.Context(), target, sub)
	c.timer.End(idx, "")
	if err != nil {
		return err
	}
	c.printTimings()
	return nil
}

func newUpdateInputCmd(c *cli) *cobra.Command {
	var sub string
	cmd := &cobra.Command{
		Use:   "input <FIXTURE> [ARGS...]",
		Short: "Record argv and stdin for a fixture; stdin is read until EOF",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				c.usage()
				return fmt.Errorf("no file is provided for `update input` subcommand")
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if err := c.checkSubcommand(sub); err != nil {
				return err
			}
			return c.newUpdater().Input(args[0], sub, args[1:], c.stdin)
		},
	}
	cmd.Flags().StringVar(&sub, "subcommand", update.AllSubcommands, "record to update (a configured subcommand or all)")
	// Everything after the fixture belongs to the recorded argv.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// checkSubcommand rejects names that are neither configured nor "all".
func (c *cli) checkSubcommand(sub string) error {
	if sub == update.AllSubcommands {
		return nil
	}
	for _, known := range c.cfg.Fixtures.Subcommands {
		if known == sub {
			return nil
		}
	}
	return fmt.Errorf("unknown compiler subcommand %q (configured: %v)", sub, c.cfg.Fixtures.Subcommands)
}
