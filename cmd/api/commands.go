package main

import (
	"asset-management-api/internal/auth"
	"asset-management-api/internal/database"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect the embedded schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{database.MigrateUp, database.MigrateDown, database.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := database.MigrateUp
			if len(args) == 1 {
				command = args[0]
			}

			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			db, err := database.InitDB(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db, command, logger); err != nil {
				return err
			}
			logger.WithField("command", command).Info("migrations finished")
			return nil
		},
	}
}

// newTokenCmd issues a session token for operators and service accounts.
func newTokenCmd() *cobra.Command {
	var (
		userID     string
		username   string
		level      string
		employeeID string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			accessLevel, err := parseLevel(level)
			if err != nil {
				return err
			}
			cfg, _, err := loadRuntime()
			if err != nil {
				return err
			}

			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
			token, err := tokens.Issue(auth.Principal{
				UserID:     userID,
				Username:   username,
				Level:      accessLevel,
				EmployeeID: employeeID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&username, "name", "", "display name")
	cmd.Flags().StringVar(&level, "level", "viewer", "access level: viewer, technician, manager or admin")
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id linked to the user")
	cmd.MarkFlagRequired("user")
	return cmd
}

func parseLevel(s string) (auth.AccessLevel, error) {
	for l := auth.LevelViewer; l <= auth.LevelAdmin; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown access level %q", s)
}
