package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T, schema []string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	return db
}

func TestDetectCapabilitiesExtendedSchema(t *testing.T) {
	db := setupStore(t, extendedSchema)

	caps := DetectCapabilities(db)
	assert.True(t, caps.HasCreatedAt)
	assert.True(t, caps.HasCompletedAt)
	assert.Equal(t, "completed_at", caps.CompletionField())
}

func TestDetectCapabilitiesMinimalSchema(t *testing.T) {
	db := setupStore(t, minimalSchema)

	caps := DetectCapabilities(db)
	assert.False(t, caps.HasCreatedAt)
	assert.False(t, caps.HasCompletedAt)
	assert.Equal(t, "deadline", caps.CompletionField())
}

func TestDetectCapabilitiesCreatedAtOnly(t *testing.T) {
	db := setupStore(t, []string{
		extendedSchema[0],
		`CREATE TABLE tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			area TEXT,
			deadline TEXT,
			status TEXT NOT NULL DEFAULT 'Pending',
			assigned_to INTEGER,
			created_at TEXT
		)`,
	})

	caps := DetectCapabilities(db)
	assert.True(t, caps.HasCreatedAt)
	assert.False(t, caps.HasCompletedAt)
	assert.Equal(t, "deadline", caps.CompletionField())
}

func TestHasColumn(t *testing.T) {
	db := setupStore(t, extendedSchema)

	assert.True(t, HasColumn(db, "tasks", "completed_at"))
	assert.True(t, HasColumn(db, "users", "username"))
	assert.False(t, HasColumn(db, "tasks", "proof_file"))
}

func minimalAggregator(t *testing.T, db *gorm.DB) *Aggregator {
	t.Helper()
	return NewAggregator(db, DetectCapabilities(db)).
		WithClock(func() time.Time { return testNow })
}

func TestLeaderboardMinimalSchemaCountsAllDone(t *testing.T) {
	db := setupStore(t, minimalSchema)
	require.NoError(t, db.Exec(
		"INSERT INTO users (id, username, password_hash, role) VALUES (1, 'alice', '', 'worker')").Error)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Exec(
			"INSERT INTO tasks (title, status, assigned_to) VALUES ('t', 'Done', 1)").Error)
	}

	board, err := minimalAggregator(t, db).GetLeaderboard(5)
	require.NoError(t, err)
	assert.Equal(t, []LeaderboardEntry{
		{WorkerName: "alice", TasksDone: 3, AvgDays: 0},
	}, board)
}

func TestCycleTimeMinimalSchemaIsZero(t *testing.T) {
	db := setupStore(t, minimalSchema)
	require.NoError(t, db.Exec(
		"INSERT INTO tasks (title, status, deadline) VALUES ('t', 'Done', '2024-01-10')").Error)

	avg, err := minimalAggregator(t, db).GetCycleTimeAvg()
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestThroughputMinimalSchemaUsesDeadlineProxy(t *testing.T) {
	db := setupStore(t, minimalSchema)
	require.NoError(t, db.Exec(
		"INSERT INTO tasks (title, status, deadline) VALUES ('t', 'Done', '2024-01-10 09:00:00')").Error)

	points, err := minimalAggregator(t, db).GetTaskThroughput(7)
	require.NoError(t, err)
	assert.Equal(t, []ThroughputPoint{{Date: "2024-01-10", Count: 1}}, points)
}

func TestOnTimeMinimalSchemaComparesDeadlineToItself(t *testing.T) {
	db := setupStore(t, minimalSchema)
	require.NoError(t, db.Exec(
		"INSERT INTO tasks (title, status, deadline) VALUES ('t', 'Done', '2024-01-10')").Error)

	// With deadline standing in for completion, every parseable row is
	// "on time". The degraded mode reports optimistically and that is
	// the documented contract.
	pct, err := minimalAggregator(t, db).GetOnTimePercentage()
	require.NoError(t, err)
	assert.Equal(t, 100.0, pct)
}
