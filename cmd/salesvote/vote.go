package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/services"
)

func newVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <candidate>",
		Short: "Cast the signed-in account's vote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.session.Identity() == nil {
				return errors.New("sign in to vote")
			}
			if _, err := a.session.Status(); err != nil {
				return err
			}

			candidate := domain.Candidate(args[0])
			if err := a.session.Vote(cmd.Context(), candidate); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Vote recorded for %s\n", candidate)
			return nil
		},
	}
}

func newResultsCmd() *cobra.Command {
	var summarize bool
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the vote tally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			summary := services.NewSummaryService(a.backend.Results, a.cfg.CandidateList())
			if summarize {
				if err := summary.SummarizeAllVotes(cmd.Context()); err != nil {
					return err
				}
			}
			results, err := summary.Results(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CANDIDATE\tVOTES\tPERCENT")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%d\t%.1f%%\n", r.Candidate, r.VoteCount, r.Percentage)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&summarize, "summarize", true, "recount stored votes before printing")
	return cmd
}
