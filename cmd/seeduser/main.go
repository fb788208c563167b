// Command seeduser creates or refreshes a demo POS profile and its users.
// Usage: go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"os"

	"klikpos/internal/config"
	"klikpos/internal/infra"
	"klikpos/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedUser struct {
	username, fullName, role string
}

var demoUsers = []seedUser{
	{"admin", "Admin Demo", model.RoleAdmin},
	{"supervisor", "Supervisor Demo", model.RoleSupervisor},
	{"cashier", "Cashier Demo", model.RoleCashier},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "klikpos2026"
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	profile, err := seedProfile(context.Background(), db, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("seed POS profile")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	for _, u := range demoUsers {
		user := model.User{
			Username:     u.username,
			FullName:     u.fullName,
			PasswordHash: string(hash),
			Role:         u.role,
			POSProfileID: &profile.ID,
			Active:       true,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"password_hash", "full_name", "role", "pos_profile_id", "active"}),
		}).Create(&user).Error
		if err != nil {
			log.Fatal().Err(err).Str("username", u.username).Msg("upsert user")
		}
		fmt.Printf("user %q (%s) ready\n", u.username, u.role)
	}
}

func seedProfile(ctx context.Context, db *gorm.DB, cfg *config.Config) (*model.POSProfile, error) {
	var profile model.POSProfile
	err := db.WithContext(ctx).Where("name = ?", "Main Till").First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	profile = model.POSProfile{
		Name:            "Main Till",
		Company:         cfg.CompanyName,
		Currency:        cfg.BaseCurrency,
		WriteOffAccount: "Write Off - " + cfg.CompanyName,
		CashMode:        "Cash",
		PaymentModes: []model.POSPaymentMode{
			{Position: 0, ModeOfPayment: "Cash", Type: "Cash", IsDefault: true},
			{Position: 1, ModeOfPayment: "M-Pesa", Type: "Phone"},
			{Position: 2, ModeOfPayment: "Card", Type: "Bank"},
		},
	}
	if err := db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
