package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"github.com/craftbazaar/moderation-engine/internal/tasks"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens a gorm connection backed by sqlmock so a service's query
// sequence can be asserted without a live database.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	return gdb, mock
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(context.Context, tasks.Task) error { return nil }

func newTestDecisionService(gdb *gorm.DB) *DecisionService {
	cases := NewCaseService(gdb)
	queues := NewQueueService(gdb, cases, []string{"listing-review"})
	registry := actions.NewRegistry(nopDispatcher{})
	notifier := NewNotifyService(gdb, cases, registry, &notify.LogSender{},
		184, "https://example.com/appeal", nil)
	return NewDecisionService(gdb, cases, queues, registry, notifier, nopDispatcher{})
}
