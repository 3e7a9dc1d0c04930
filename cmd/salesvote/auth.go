package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

var errMissingCredentials = errors.New("--email and --password are required")

type credentials struct {
	email    string
	password string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "account email")
	cmd.Flags().StringVar(&c.password, "password", os.Getenv("SALESVOTE_PASSWORD"), "account password (default $SALESVOTE_PASSWORD)")
}

func (c *credentials) validate() error {
	if c.email == "" || c.password == "" {
		return errMissingCredentials
	}
	return nil
}

func newSignUpCmd() *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignIn(cmd, creds, true)
		},
	}
	creds.bind(cmd)
	return cmd
}

func newSignInCmd() *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in to an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignIn(cmd, creds, false)
		},
	}
	creds.bind(cmd)
	return cmd
}

func runSignIn(cmd *cobra.Command, creds credentials, create bool) error {
	if err := creds.validate(); err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	signIn := a.provider.SignIn
	if create {
		signIn = a.provider.SignUp
	}
	identity, err := signIn(cmd.Context(), creds.email, creds.password)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Signed in as %s\n", identity.Email)
	printStatus(cmd, a)
	return nil
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.provider.SignOut(context.WithoutCancel(cmd.Context())); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in account and its vote status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			identity := a.session.Identity()
			if identity == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", identity.Email)
			printStatus(cmd, a)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, a *app) {
	out := cmd.OutOrStdout()
	status, err := a.session.Status()
	switch {
	case err != nil || status.Unknown:
		fmt.Fprintf(out, "Vote status unknown: %v\n", err)
	case status.HasVoted && status.Candidate != nil:
		fmt.Fprintf(out, "You voted for %s\n", *status.Candidate)
	case status.HasVoted:
		fmt.Fprintln(out, "You have already voted")
	default:
		fmt.Fprintf(out, "You have not voted yet. Candidates: %s\n", candidateNames(a.ledger.Candidates()))
	}
}

func candidateNames(candidates []domain.Candidate) string {
	names := ""
	for i, c := range candidates {
		if i > 0 {
			names += ", "
		}
		names += string(c)
	}
	return names
}
