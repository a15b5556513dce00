package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema_ResetsData(t *testing.T) {
	conn := openTestConn(t)
	ctx := context.Background()

	_, err := conn.InsertEntry(ctx, "first", "body", "cat")
	require.NoError(t, err)

	require.NoError(t, conn.InitSchema(ctx))

	entries, err := conn.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	id, err := conn.InsertEntry(ctx, "again", "body", "cat")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestSplitSQLStatements(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			name:     "schema script",
			sql:      schemaSQL,
			expected: nil, // checked by length below
		},
		{
			name:     "comments and blank lines",
			sql:      "-- comment\n\nSELECT 1;\n-- another\nSELECT 2;\n",
			expected: []string{"SELECT 1;", "SELECT 2;"},
		},
		{
			name:     "trailing statement without semicolon",
			sql:      "SELECT 1;\nSELECT 2",
			expected: []string{"SELECT 1;", "SELECT 2"},
		},
		{
			name:     "multi-line statement",
			sql:      "CREATE TABLE t (\n  id INTEGER\n);",
			expected: []string{"CREATE TABLE t (\n  id INTEGER\n);"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSQLStatements(tt.sql)
			if tt.expected == nil {
				assert.Len(t, got, 2)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}
