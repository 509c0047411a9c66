package migrations

// AdditiveMigration is one versioned, additive change set. Tenant statements
// carry a single %s placeholder for the schema name and must be individually
// idempotent (ADD COLUMN IF NOT EXISTS, CREATE INDEX IF NOT EXISTS), so a
// schema that received part of the set in an interrupted earlier run is
// caught up safely. Destructive or renaming changes never go through this
// path; they need tenant-specific validation and manual supervision.
type AdditiveMigration interface {
	// Version orders migrations and gates execution against the recorded
	// database version.
	Version() int

	// SystemStatements returns DDL applied once to the shared schema.
	SystemStatements() []string

	// TenantStatements returns DDL applied to every tenant schema, with %s
	// substituted by the schema name.
	TenantStatements() []string
}
