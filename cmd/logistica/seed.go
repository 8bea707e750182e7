package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"logistica/frontend/login"
	"logistica/infrastructure/config"
	"logistica/infrastructure/rbac"
)

func newSeedAdminCmd(load configLoader) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account or reset its password",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if username == "" {
				username = cfg.Admin.Username
			}
			if password == "" {
				password = cfg.Admin.Password
			}
			if password == "" {
				return fmt.Errorf("admin password is required (--password or %s_ADMIN_PASSWORD)", config.EnvPrefix)
			}

			db, _, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := login.UpsertUserPasswordHash(cmd.Context(), db, username, rbac.RoleAdmin, password); err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded admin user (username=%s)\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username (default from config)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (default from config)")
	return cmd
}
