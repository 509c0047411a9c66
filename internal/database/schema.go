package database

import (
	"regexp"
	"strings"

	"github.com/teamgrid/teamgrid/internal/domain"
)

// SchemaName is a schema identifier produced by SchemaNameFor. Components
// that interpolate a schema into SQL take this type so that raw strings
// cannot reach identifier position.
type SchemaName string

// sanitizedPattern is everything a sanitized slug may contain. The slug
// grammar only allows lowercase alphanumerics and hyphens, and hyphens are
// the single translation the sanitizer performs, so anything else left after
// the substitution is an upstream validation bug.
var sanitizedPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// SanitizeSlug converts a workspace slug into a fragment safe to interpolate
// as a SQL identifier. Schema names cannot be bound as parameters, so this
// function is the only place in the codebase where user-influenced input is
// turned into identifier text. Disallowed characters are rejected, never
// stripped.
func SanitizeSlug(slug string) (string, error) {
	fragment := strings.ReplaceAll(slug, "-", "_")
	if fragment == "" || !sanitizedPattern.MatchString(fragment) {
		return "", &domain.ErrIdentifierRejected{Input: slug}
	}
	return fragment, nil
}

// SchemaNameFor derives the tenant schema name from a workspace slug:
// prefix + sanitized slug, e.g. slug "acme-corp" with prefix "workspace_"
// names the schema "workspace_acme_corp". The convention is a persisted
// contract; changing the prefix or the substitution rule orphans every
// existing tenant schema.
func SchemaNameFor(prefix, slug string) (SchemaName, error) {
	fragment, err := SanitizeSlug(slug)
	if err != nil {
		return "", err
	}
	return SchemaName(prefix + fragment), nil
}
