package toml

import "fmt"

const currentSchemaVersion = 1

type sessionFileSchema struct {
	Version    int              `toml:"version"`
	Credential string           `toml:"credential"`
	SavedAt    string           `toml:"saved_at,omitempty"`
	Principal  *principalSchema `toml:"principal,omitempty"`
}

type principalSchema struct {
	ID          int64  `toml:"id"`
	Username    string `toml:"username"`
	DisplayName string `toml:"display_name,omitempty"`
}

type quotaFileSchema struct {
	Version    int           `toml:"version"`
	CapturedAt string        `toml:"captured_at"`
	Quotas     []quotaSchema `toml:"quotas"`
}

type quotaSchema struct {
	Type        string `toml:"type"`
	Limit       int    `toml:"limit"`
	Used        int    `toml:"used"`
	ResetCycle  string `toml:"reset_cycle,omitempty"`
	LastResetAt string `toml:"last_reset_at,omitempty"`
}

func validateVersion(label string, version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported %s schema version %d (current %d)", label, version, currentSchemaVersion)
	}

	return nil
}
