package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/atlas-hrms/atlas-hrms/internal/shared"
)

// Service handles system settings business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListSettings returns settings, optionally filtered by category.
func (s *Service) ListSettings(ctx context.Context, category string) ([]Setting, error) {
	return s.repo.ListSettings(ctx, category)
}

// ListGrouped returns all settings grouped by category.
func (s *Service) ListGrouped(ctx context.Context) ([]CategoryGroup, error) {
	settings, err := s.repo.ListSettings(ctx, "")
	if err != nil {
		return nil, err
	}
	groups := make([]CategoryGroup, 0)
	for _, setting := range settings {
		if n := len(groups); n == 0 || groups[n-1].Category != setting.Category {
			groups = append(groups, CategoryGroup{Category: setting.Category})
		}
		last := &groups[len(groups)-1]
		last.Settings = append(last.Settings, setting)
	}
	return groups, nil
}

// GetSetting returns one setting by key.
func (s *Service) GetSetting(ctx context.Context, key string) (Setting, error) {
	return s.repo.GetSetting(ctx, key)
}

// CreateSettingInput carries fields for a new setting.
type CreateSettingInput struct {
	Key         string `json:"key" validate:"required"`
	Value       string `json:"value"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
	IsEditable  *bool  `json:"isEditable"`
}

// CreateSetting registers a setting. Settings default to editable.
func (s *Service) CreateSetting(ctx context.Context, input CreateSettingInput) (Setting, error) {
	input.Key = strings.TrimSpace(input.Key)
	input.Category = strings.TrimSpace(input.Category)
	if input.Key == "" || input.Category == "" {
		return Setting{}, fmt.Errorf("%w: key and category are required", shared.ErrValidation)
	}
	editable := true
	if input.IsEditable != nil {
		editable = *input.IsEditable
	}
	return s.repo.InsertSetting(ctx, Setting{
		Key:         input.Key,
		Value:       input.Value,
		Category:    input.Category,
		Description: input.Description,
		IsEditable:  editable,
	})
}

// UpdateSetting stores a new value. Non-editable settings are locked.
func (s *Service) UpdateSetting(ctx context.Context, key, value string) (Setting, error) {
	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return Setting{}, err
	}
	if !setting.IsEditable {
		return Setting{}, fmt.Errorf("%w: setting %q is not editable", shared.ErrValidation, key)
	}
	return s.repo.UpdateSettingValue(ctx, key, value)
}

// BatchUpdate applies many key/value updates, reporting the outcome per key.
// A bad key never aborts the rest of the batch.
func (s *Service) BatchUpdate(ctx context.Context, values map[string]string) ([]BatchResult, error) {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	results := make([]BatchResult, 0, len(keys))
	for _, key := range keys {
		if _, err := s.UpdateSetting(ctx, key, values[key]); err != nil {
			results = append(results, BatchResult{Key: key, Error: err.Error()})
			continue
		}
		results = append(results, BatchResult{Key: key, Updated: true})
	}
	return results, nil
}

// DeleteSetting removes a setting. Non-editable settings are locked.
func (s *Service) DeleteSetting(ctx context.Context, key string) error {
	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return err
	}
	if !setting.IsEditable {
		return fmt.Errorf("%w: setting %q is not editable", shared.ErrValidation, key)
	}
	return s.repo.DeleteSetting(ctx, key)
}
