package payment

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"artmarket/notify"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	return gdb, mock
}

// recordSink captures notification events for assertions.
type recordSink struct {
	events []notify.Event
}

func (s *recordSink) Notify(e notify.Event) {
	s.events = append(s.events, e)
}

// stubGateway returns a canned push result without any network traffic.
type stubGateway struct {
	result *PushResult
	err    error
}

func (g *stubGateway) InitiateSTKPush(_ context.Context, _ string, _ int64, _, _ string) (*PushResult, error) {
	return g.result, g.err
}

func newTestProcessor(t *testing.T) (*Processor, sqlmock.Sqlmock, *recordSink) {
	t.Helper()
	gdb, mock := newTestDB(t)
	sink := &recordSink{}
	return &Processor{
		DB:            gdb,
		Notifier:      sink,
		Codes:         DefaultCodeTable(),
		PickupAddress: DefaultPickupAddress,
	}, mock, sink
}
