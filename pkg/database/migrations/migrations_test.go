package migrations

import (
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsCollect(t *testing.T) {
	goose.SetBaseFS(FS)
	defer goose.SetBaseFS(nil)

	require.NoError(t, goose.SetDialect("postgres"))

	found, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	require.NoError(t, err)
	assert.NotEmpty(t, found)

	for _, m := range found {
		assert.Greater(t, m.Version, int64(0))
	}
}
