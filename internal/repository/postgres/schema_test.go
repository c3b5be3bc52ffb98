package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_UsesTableNames(t *testing.T) {
	ddl := Schema("dev_")
	tables := NewTableNames("dev_")

	assert.NotContains(t, ddl, "{{prefix}}")
	for _, name := range []string{tables.Drafts, tables.PublishLog, tables.CreditGrants} {
		assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS "+name+" (")
	}
}
