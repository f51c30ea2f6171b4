package database

import (
	"context"
	"testing"

	"drobeo/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool_SQLiteSingleConnection(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, &config.Config{DBDriver: "sqlite"}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Postgres(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, configurePool(db, &config.Config{DBConnMaxLifetimeMinutes: 15}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{name: "hybrid dev", cfg: config.Config{Env: "development"}, runSQL: true, runAuto: true},
		{name: "hybrid prod", cfg: config.Config{Env: "production"}, runSQL: true},
		{name: "hybrid sqlite", cfg: config.Config{Env: "test", DBDriver: "sqlite"}, runAuto: true},
		{name: "sql", cfg: config.Config{DBSchemaMode: "sql"}, runSQL: true},
		{name: "sql sqlite", cfg: config.Config{DBSchemaMode: "sql", DBDriver: "sqlite"}, wantErr: true},
		{name: "auto dev", cfg: config.Config{DBSchemaMode: "AUTO", Env: "development"}, runAuto: true},
		{name: "auto prod", cfg: config.Config{DBSchemaMode: "auto", Env: "prod"}, wantErr: true},
		{name: "unknown", cfg: config.Config{DBSchemaMode: "magic"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestApplySchema_SQLite(t *testing.T) {
	cfg := &config.Config{Env: "test", DBDriver: "sqlite", SQLitePath: ":memory:"}
	db, err := gorm.Open(Dialector(cfg), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, ApplySchema(context.Background(), db, cfg))
	for _, table := range []string{"users", "categories", "clothing_items", "outfits", "outfit_calendar_entries", "wishlist_items", "phone_verifications"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	status, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
}

func TestMigrations_RegisteredInOrder(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)
	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Version, ms[i].Version)
	}
	for _, m := range ms {
		assert.NotEmpty(t, m.DownScript, m.String())
	}
	assert.NotNil(t, GetMigrationByVersion(ms[0].Version))
	assert.Nil(t, GetMigrationByVersion(999999))
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))
	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}
