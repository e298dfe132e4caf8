package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/student-toolkit/internal/auth/jwt"
	"github.com/gokatarajesh/student-toolkit/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development access token for an email",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		sec, err := config.LoadSection[config.Security]()
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("issuer")

		token, err := jwt.NewManager(jwt.TokenConfig{
			Secret: []byte(sec.JWTSecret),
			TTL:    sec.TokenTTL,
			Issuer: name,
		}).Issue(email)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("email", "", "email the token identifies")
	tokenCmd.Flags().String("issuer", "student-toolkit", "token issuer; must match APP_NAME of the API")
	_ = tokenCmd.MarkFlagRequired("email")
}
