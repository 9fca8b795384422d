package trackingevents

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// postgresDryRun builds statements with the postgres dialect without a server.
func postgresDryRun(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	conn, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=shiptrack dbname=shiptrack sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	statements := []string{}
	require.NoError(t, conn.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))
	return conn, &statements
}

func TestLockShipmentSelectsForUpdateOnPostgres(t *testing.T) {
	conn, statements := postgresDryRun(t)

	_, err := NewRepository(conn).LockShipment(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, *statements, 1)
	sql := (*statements)[0]
	assert.Contains(t, sql, `FROM "shipments"`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(sql), "FOR UPDATE"), sql)
}
