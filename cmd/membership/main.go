package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/membership/internal/membership/app"
	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := newServeCommand()

	cmd := &cobra.Command{
		Use:           "membership",
		Short:         "Membership and access-control service",
		Version:       app.BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newPurgeCommand())
	cmd.AddCommand(newBootstrapCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func newMigrateCommand() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations, or roll back with --down",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			status, err := app.Migrate(cfg, down)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", status.Version, status.Dirty)
			return nil
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "Number of migrations to roll back")
	return cmd
}

func newPurgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete spent codes and reset keys, and expire lapsed invitations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			report, err := app.Purge(commandContext(cmd), cfg)
			fmt.Fprintf(cmd.OutOrStdout(), "otps deleted: %d, resets deleted: %d, invitations expired: %d\n",
				report.OTPsDeleted, report.ResetsDeleted, report.InvitationsExpired)
			return err
		},
	}
}

func newBootstrapCommand() *cobra.Command {
	var (
		email     string
		password  string
		firstName string
		lastName  string
		phone     string
		language  string
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the first captain account (requires BOOTSTRAP_TOKEN)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("BOOTSTRAP_PASSWORD")
			}

			id, err := app.Bootstrap(commandContext(cmd), cfg, domain.BootstrapData{
				Email:    email,
				Password: password,
				Profile: domain.Profile{
					Phone: phone,
					Translations: []domain.Translation{{
						LanguageCode: language,
						FirstName:    firstName,
						LastName:     lastName,
					}},
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "captain created: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Captain e-mail address")
	cmd.Flags().StringVar(&password, "password", "", "Captain password (default $BOOTSTRAP_PASSWORD)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "Captain first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Captain last name")
	cmd.Flags().StringVar(&phone, "phone", "", "Captain phone number")
	cmd.Flags().StringVar(&language, "language", "en", "Language code of the name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
