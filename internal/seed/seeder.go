package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/internal/users"
	"github.com/angelmondragon/storeadmin-backend/pkg/config"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/security"
)

const tempPasswordLength = 16

type settingsStore interface {
	FindByKey(ctx context.Context, key string) (*models.Setting, error)
	Create(ctx context.Context, setting *models.Setting) error
	Save(ctx context.Context, setting *models.Setting) error
}

// Params wire a Seeder.
type Params struct {
	Settings settingsStore
	Users    *users.Repository
	Password config.PasswordConfig
	Logger   *logger.Logger
}

// Seeder writes default settings and the bootstrap admin account.
type Seeder struct {
	settings settingsStore
	users    *users.Repository
	password config.PasswordConfig
	logg     *logger.Logger
}

// SettingsReport counts what SeedSettings did.
type SettingsReport struct {
	Created   int
	Refreshed int
}

// AdminOptions control EnsureAdmin.
type AdminOptions struct {
	Name     string
	Email    string
	Password string
	Reset    bool
}

// AdminResult reports what EnsureAdmin did. TempPassword is set only when a
// password was generated.
type AdminResult struct {
	Email        string
	Created      bool
	Reset        bool
	TempPassword string
}

// New constructs a Seeder.
func New(params Params) (*Seeder, error) {
	if params.Settings == nil {
		return nil, fmt.Errorf("settings store required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Seeder{
		settings: params.Settings,
		users:    params.Users,
		password: params.Password,
		logg:     params.Logger,
	}, nil
}

// SeedSettings creates missing default settings and refreshes the type and
// description of existing ones. Stored values are never overwritten. Every
// key is attempted; failures are combined.
func (s *Seeder) SeedSettings(ctx context.Context) (SettingsReport, error) {
	var (
		report SettingsReport
		errs   error
	)
	for _, def := range DefaultSettings {
		keyCtx := s.logg.WithField(ctx, "setting_key", def.Key)
		created, err := s.upsertSetting(ctx, def)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("seed setting %s: %w", def.Key, err))
			continue
		}
		if created {
			report.Created++
			s.logg.Info(s.logg.WithField(keyCtx, "value", def.Value), "setting created")
		} else {
			report.Refreshed++
			s.logg.Info(keyCtx, "setting refreshed")
		}
	}
	return report, errs
}

func (s *Seeder) upsertSetting(ctx context.Context, def DefaultSetting) (bool, error) {
	description := def.Description
	existing, err := s.settings.FindByKey(ctx, def.Key)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		value := def.Value
		return true, s.settings.Create(ctx, &models.Setting{
			Key:         def.Key,
			Value:       &value,
			Type:        def.Type,
			Description: &description,
		})
	case err != nil:
		return false, err
	}
	existing.Type = def.Type
	existing.Description = &description
	return false, s.settings.Save(ctx, existing)
}

// EnsureAdmin creates the admin account when missing. With Reset set an
// existing account gets a new password. A temporary password is generated
// when none is supplied.
func (s *Seeder) EnsureAdmin(ctx context.Context, opts AdminOptions) (*AdminResult, error) {
	email := users.NormalizeEmail(opts.Email)
	if email == "" {
		return nil, fmt.Errorf("admin email required")
	}
	result := &AdminResult{Email: email}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}
	if existing != nil && !opts.Reset {
		s.logg.Info(s.logg.WithUserID(ctx, existing.ID.String()), "admin already exists")
		return result, nil
	}

	password := opts.Password
	if password == "" {
		password, err = security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, err
		}
		result.TempPassword = password
	}
	hash, err := security.HashPassword(password, s.password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	if existing != nil {
		if err := s.users.UpdatePasswordHash(ctx, existing.ID, hash); err != nil {
			return nil, fmt.Errorf("reset admin password: %w", err)
		}
		result.Reset = true
		s.logg.Info(s.logg.WithUserID(ctx, existing.ID.String()), "admin password reset")
		return result, nil
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "Administrator"
	}
	active := true
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleAdmin,
		IsActive:     &active,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	result.Created = true
	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "admin created")
	return result, nil
}
