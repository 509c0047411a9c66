package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/teamgrid/internal/domain"
)

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		want    string
		wantErr bool
	}{
		{name: "plain slug", slug: "acme", want: "acme"},
		{name: "hyphens become underscores", slug: "acme-corp", want: "acme_corp"},
		{name: "multiple hyphens", slug: "a-b-c-d", want: "a_b_c_d"},
		{name: "digits preserved", slug: "team42", want: "team42"},
		{name: "underscores pass through", slug: "already_safe", want: "already_safe"},
		{name: "empty rejected", slug: "", wantErr: true},
		{name: "uppercase rejected", slug: "Acme", wantErr: true},
		{name: "dot rejected", slug: "acme.corp", wantErr: true},
		{name: "space rejected", slug: "acme corp", wantErr: true},
		{name: "quote rejected", slug: `acme";drop`, wantErr: true},
		{name: "semicolon rejected", slug: "acme;--", wantErr: true},
		{name: "unicode rejected", slug: "acmé", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeSlug(tt.slug)
			if tt.wantErr {
				require.Error(t, err)
				var rejected *domain.ErrIdentifierRejected
				assert.ErrorAs(t, err, &rejected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeSlug_Deterministic(t *testing.T) {
	first, err := SanitizeSlug("acme-corp")
	require.NoError(t, err)
	second, err := SanitizeSlug("acme-corp")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSanitizeSlug_RejectsDoesNotStrip(t *testing.T) {
	// Disallowed characters signal an upstream validation bug; silently
	// stripping them would mask it and could collapse distinct slugs onto
	// one schema name.
	_, err := SanitizeSlug("acme!corp")
	require.Error(t, err)

	var rejected *domain.ErrIdentifierRejected
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "acme!corp", rejected.Input)
}

func TestSchemaNameFor(t *testing.T) {
	schema, err := SchemaNameFor("workspace_", "acme-corp")
	require.NoError(t, err)
	assert.Equal(t, SchemaName("workspace_acme_corp"), schema)
}

func TestSchemaNameFor_InvalidSlug(t *testing.T) {
	_, err := SchemaNameFor("workspace_", "acme corp")
	require.Error(t, err)
}
