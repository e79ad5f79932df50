package main

import (
	"errors"
	"fmt"

	"yamdb/internal/api/service"

	"github.com/spf13/cobra"
)

var (
	superuserName  string
	superuserEmail string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an admin account",
	Long: `Create a user with the admin role and superuser flag. The account has no
password; sign in through POST /api/v1/auth/signup/ with the same username and
email to receive a confirmation code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, log, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := newRepositories(db.Gorm).userService().CreateSuperuser(ctx, superuserName, superuserEmail)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("invalid superuser: %s", verr.Fields.Error())
			}
			return fmt.Errorf("failed to create superuser: %w", err)
		}

		log.Info().Str("username", user.Username).Msg("superuser created")
		fmt.Printf("✓ Superuser %s created\n", user.Username)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserName, "username", "", "username of the new admin")
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "email of the new admin")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("email")
}
