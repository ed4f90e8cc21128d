package settings

import "context"

// RepositoryPort defines data access methods for system settings.
type RepositoryPort interface {
	ListSettings(ctx context.Context, category string) ([]Setting, error)
	GetSetting(ctx context.Context, key string) (Setting, error)
	InsertSetting(ctx context.Context, setting Setting) (Setting, error)
	UpdateSettingValue(ctx context.Context, key, value string) (Setting, error)
	DeleteSetting(ctx context.Context, key string) error
}
