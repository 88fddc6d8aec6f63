package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"yamdb/internal/database"
	"yamdb/internal/http-api/apperror"
	"yamdb/internal/http-api/dto"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
)

var (
	superuserName  string
	superuserEmail string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrator account",
	Long: `Create an active superuser. It signs in like everyone else: request a
confirmation code at /api/v1/auth/signup with the same username and email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateSuperuser(superuserName, superuserEmail); err != nil {
			return err
		}

		db, _, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db)

		user := &models.User{
			Username:    superuserName,
			Email:       superuserEmail,
			Role:        models.RoleAdmin,
			IsActive:    true,
			IsSuperuser: true,
		}
		if err := repository.NewUserRepository(db).Create(cmd.Context(), user); err != nil {
			if ve, ok := apperror.AsValidation(err); ok {
				return fmt.Errorf("cannot create superuser: %v", ve.Fields)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func validateSuperuser(username, email string) error {
	switch {
	case username == "" || email == "":
		return fmt.Errorf("--username and --email are required")
	case username == models.ReservedUsername || !dto.ValidUsername(username):
		return fmt.Errorf("invalid username %q", username)
	}
	return nil
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserName, "username", "", "username")
	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "email address")
}
