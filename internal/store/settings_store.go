package store

import "context"

// SettingsStore reads and writes the approval thresholds. The table may be
// absent on older deployments; callers decide how to treat a failed read.
type SettingsStore struct {
	db DB
}

type settingRow struct {
	Name  string `db:"setting_name"`
	Value string `db:"setting_value"`
}

func NewSettingsStore(db DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) All(ctx context.Context) (map[string]string, error) {
	var rows []settingRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT setting_name, setting_value
		FROM transaction_approval_settings
	`)
	if err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Name] = row.Value
	}
	return settings, nil
}

func (s *SettingsStore) Set(ctx context.Context, tx Execer, name, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transaction_approval_settings (setting_name, setting_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (setting_name) DO UPDATE
		SET setting_value = EXCLUDED.setting_value, updated_at = NOW()
	`, name, value)
	return err
}
