package settings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/pkg/db"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
)

var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Service is the admin surface over settings rows.
type Service interface {
	List(ctx context.Context) (*ListResult, error)
	Get(ctx context.Context, key string) (*SettingDTO, error)
	Create(ctx context.Context, input CreateSettingInput) (*SettingDTO, error)
	Update(ctx context.Context, key string, input UpdateSettingInput) (*SettingDTO, error)
	Delete(ctx context.Context, key string) error
}

type settingsRepository interface {
	FindByKey(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Create(ctx context.Context, setting *models.Setting) error
	Save(ctx context.Context, setting *models.Setting) error
	Delete(ctx context.Context, key string) (bool, error)
}

type valueCache interface {
	GetAll(ctx context.Context) (map[string]any, error)
	Update(ctx context.Context, key string, value any) (bool, error)
	Clear()
}

// ServiceParams configure the settings admin service.
type ServiceParams struct {
	Repo   settingsRepository
	Cache  valueCache
	Logger *logger.Logger
}

type service struct {
	repo  settingsRepository
	cache valueCache
	logg  *logger.Logger
}

// NewService builds the settings admin service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("settings cache required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: params.Repo, cache: params.Cache, logg: params.Logger}, nil
}

func (s *service) List(ctx context.Context) (*ListResult, error) {
	values, err := s.cache.GetAll(ctx)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list settings")
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list settings")
	}
	out := &ListResult{Values: values, Settings: make([]SettingDTO, 0, len(rows))}
	for _, row := range rows {
		out.Settings = append(out.Settings, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, key string) (*SettingDTO, error) {
	row, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateSettingInput) (*SettingDTO, error) {
	key := strings.TrimSpace(input.Key)
	if !keyPattern.MatchString(key) {
		return nil, pkgerrors.Validation("invalid setting", map[string]string{"key": "must be UPPER_SNAKE_CASE"})
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.Validation("invalid setting", map[string]string{"type": "must be one of string, number, boolean, json"})
	}

	encoded, err := encodeChecked(key, input.Type, input.Value)
	if err != nil {
		return nil, err
	}

	row := &models.Setting{Key: key, Value: encoded, Type: input.Type, Description: input.Description}
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "setting key already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create setting")
	}
	s.cache.Clear()
	s.logg.Info(s.logg.WithField(ctx, "setting_key", key), "setting created")

	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, key string, input UpdateSettingInput) (*SettingDTO, error) {
	row, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}

	metaChanged := false
	if input.Type != nil && *input.Type != row.Type {
		if !input.Type.IsValid() {
			return nil, pkgerrors.Validation("invalid setting", map[string]string{"type": "must be one of string, number, boolean, json"})
		}
		row.Type = *input.Type
		metaChanged = true
	}
	if input.Description != nil {
		row.Description = input.Description
		metaChanged = true
	}

	value, hasValue, err := decodeRaw(input.Value)
	if err != nil {
		return nil, pkgerrors.Validation("invalid setting", map[string]string{"value": "must be valid json"})
	}
	if hasValue {
		if _, err := encodeChecked(key, row.Type, input.Value); err != nil {
			return nil, err
		}
	} else if metaChanged {
		if _, err := Decode(*row); err != nil {
			return nil, pkgerrors.Validation("invalid setting", map[string]string{"type": "stored value does not decode under the new type"})
		}
	}

	if metaChanged {
		if err := s.repo.Save(ctx, row); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update setting")
		}
		s.cache.Clear()
	}
	if hasValue {
		found, err := s.cache.Update(ctx, key, value)
		if err != nil {
			if pkgerrors.As(err) != nil {
				return nil, err
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update setting value")
		}
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
	}

	return s.Get(ctx, key)
}

func (s *service) Delete(ctx context.Context, key string) error {
	deleted, err := s.repo.Delete(ctx, key)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete setting")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
	}
	s.cache.Clear()
	s.logg.Info(s.logg.WithField(ctx, "setting_key", key), "setting deleted")
	return nil
}

func (s *service) find(ctx context.Context, key string) (*models.Setting, error) {
	row, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load setting")
	}
	return row, nil
}

// encodeChecked encodes a raw JSON value under typ and rejects results that
// would not decode.
func encodeChecked(key string, typ enums.SettingType, raw []byte) (*string, error) {
	value, _, err := decodeRaw(raw)
	if err != nil {
		return nil, pkgerrors.Validation("invalid setting", map[string]string{"value": "must be valid json"})
	}
	encoded, err := Encode(typ, value)
	if err != nil {
		return nil, err
	}
	if _, err := Decode(models.Setting{Key: key, Type: typ, Value: encoded}); err != nil {
		return nil, pkgerrors.Validation("invalid setting", map[string]string{"value": fmt.Sprintf("does not decode as %s", typ)})
	}
	return encoded, nil
}
