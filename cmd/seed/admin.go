package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rentfunnel/internal/domain"
	"rentfunnel/internal/domain/auth"
	"rentfunnel/internal/pkg/jwt"
	"rentfunnel/internal/repository"
)

var staffFlags struct {
	email    string
	password string
	name     string
	role     string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a back office account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(staffFlags.password) < 8 {
			return eris.New("create-admin: password must be at least 8 characters")
		}

		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		p, err := repository.New(ctx, db)
		if err != nil {
			return eris.Wrap(err, "create-admin")
		}

		svc := auth.NewService(p.Users(), jwt.New(cfg.JWTSecret, cfg.JWTTTL))
		u, err := svc.CreateStaff(ctx, domain.CreateUserData{
			Email:    staffFlags.email,
			Password: staffFlags.password,
			Name:     staffFlags.name,
			Role:     domain.UserRole(staffFlags.role),
		})
		if err != nil {
			return eris.Wrap(err, "create-admin")
		}

		zap.L().Info("staff account created",
			zap.String("user_id", u.ID),
			zap.String("email", u.Email),
			zap.String("role", string(u.Role)),
		)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&staffFlags.email, "email", "", "login email")
	f.StringVar(&staffFlags.password, "password", "", "login password, at least 8 characters")
	f.StringVar(&staffFlags.name, "name", "Admin", "display name")
	f.StringVar(&staffFlags.role, "role", string(domain.RoleAdmin), "admin or agent")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}
