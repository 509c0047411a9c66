package migrations

// V2Migration adds message pinning across all workspace schemas.
type V2Migration struct{}

func (m *V2Migration) Version() int {
	return 2
}

func (m *V2Migration) SystemStatements() []string {
	return nil
}

func (m *V2Migration) TenantStatements() []string {
	return []string{
		`ALTER TABLE %[1]s.messages ADD COLUMN IF NOT EXISTS is_pinned BOOLEAN NOT NULL DEFAULT FALSE`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pinned ON %[1]s.messages(channel_id) WHERE is_pinned`,
	}
}

func init() {
	Register(&V2Migration{})
}
