package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/entregas/core"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	conf := &core.Config{Database: core.DatabaseConfig{Engine: core.EngineMemory}}
	store, err := Open(ctx, conf)
	require.NoError(t, err)
	assert.NotNil(t, store.Users)
	assert.NotNil(t, store.Deliveries)
	assert.NoError(t, store.Pinger.Ping(ctx))
	assert.Nil(t, store.Migrate)
	assert.NoError(t, store.Close())

	conf.Database.Engine = "oracle"
	_, err = Open(ctx, conf)
	assert.EqualError(t, err, `unknown database engine "oracle"`)
}
