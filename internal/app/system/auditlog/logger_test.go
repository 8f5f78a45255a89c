package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/store/audit"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (r *recorder) Log(_ context.Context, ev audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	req := httptest.NewRequest("POST", "/", nil)

	logger.Log(context.Background(), audit.Event{EventType: "test"})
	logger.LoginSuccess(context.Background(), req, primitive.NewObjectID(), "organization", "a@b.org")
}

func TestLogger_Modes(t *testing.T) {
	tests := []struct {
		mode    string
		wantDB  int
		wantLog int
	}{
		{auditlog.ModeAll, 1, 1},
		{auditlog.ModeDB, 1, 0},
		{auditlog.ModeLog, 0, 1},
		{auditlog.ModeOff, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			rec := &recorder{}
			logger := auditlog.New(rec, zap.New(core), auditlog.Config{Auth: tt.mode})

			req := httptest.NewRequest("POST", "/api/v1/ngo/login", nil)
			req.RemoteAddr = "10.1.1.1:1234"
			logger.LoginSuccess(context.Background(), req, primitive.NewObjectID(), "organization", "a@b.org")

			if len(rec.events) != tt.wantDB {
				t.Errorf("db events: got %d, want %d", len(rec.events), tt.wantDB)
			}
			if logs.Len() != tt.wantLog {
				t.Errorf("zap entries: got %d, want %d", logs.Len(), tt.wantLog)
			}
			if tt.wantDB == 1 && rec.events[0].IP != "10.1.1.1" {
				t.Errorf("IP: got %q", rec.events[0].IP)
			}
		})
	}
}

func TestLogger_ZapFieldsTaggedAudit(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{})

	logger.LoginFailedWrongPassword(context.Background(), nil, primitive.NewObjectID(), "individual", "u@x.org")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("failure should log at Warn, got %v", entries[0].Level)
	}
	fields := entries[0].ContextMap()
	if fields["audit"] != true {
		t.Error("expected audit=true")
	}
	if fields["subject_kind"] != "individual" {
		t.Errorf("subject_kind: got %v", fields["subject_kind"])
	}
}

func TestLogger_StoreFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &recorder{err: errors.New("db down")}
	logger := auditlog.New(rec, zap.New(core), auditlog.Config{Resource: auditlog.ModeDB})

	logger.AssetReplaced(context.Background(), nil, primitive.NewObjectID(), "organization", "avatar", "old", "new")

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Error("expected store failure to be logged")
	}
}
