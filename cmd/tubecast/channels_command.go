package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tubecast/internal/artifact"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List configured channels and their resolved policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			headers := []string{"Key", "Name", "Look back", "Duration", "Local", "Remote", "Items", "Feed items", "Feed URL"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
			rows := make([][]string, 0, len(cfg.Channels))
			for _, ch := range cfg.Channels {
				policy := cfg.PolicyFor(ch)
				rows = append(rows, []string{
					ch.Key,
					ch.Name,
					fmt.Sprintf("%dd", policy.LookBackDays),
					fmt.Sprintf("%ds-%ds", policy.MinDuration, policy.MaxDuration),
					fmt.Sprintf("%dd", policy.LocalExpireDays),
					fmt.Sprintf("%dd", policy.RemoteExpireDays),
					strconv.Itoa(policy.MaxItems),
					strconv.Itoa(policy.MaxRSSItems),
					cfg.ChannelLink(ch.Key) + artifact.FeedFileName,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			return nil
		},
	}
}
