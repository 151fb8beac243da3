package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/regdesk-api/internal/models"
	"github.com/noah-isme/regdesk-api/internal/repository/memory"
	"github.com/noah-isme/regdesk-api/pkg/config"
)

func TestAuditServiceFlushesOnStop(t *testing.T) {
	store := memory.NewStore(0)
	audit := NewAuditService(store.Audit(), config.AuditConfig{Workers: 2, BufferSize: 16, RetryDelay: time.Millisecond}, nil)
	audit.Start(context.Background())

	audit.Record("desk-1", testAdmin, models.AuditActionLogin, models.AuditResourceDesk, "desk-1", nil)
	audit.Record("desk-1", testAdmin, models.AuditActionCollegeCreate, models.AuditResourceCollege, "1001", models.CreateCollegeRequest{Name: "GEC Kannur"})
	audit.Stop()

	entries := store.Audit().List()
	require.Len(t, entries, 2)

	byAction := make(map[string]models.AuditLog)
	for _, e := range entries {
		byAction[e.Action] = e
	}
	login := byAction[models.AuditActionLogin]
	require.NotNil(t, login.AdminID)
	assert.Equal(t, testAdmin.ID, *login.AdminID)
	assert.Equal(t, "desk-1", login.DeskID)
	assert.Nil(t, login.NewValues)

	created := byAction[models.AuditActionCollegeCreate]
	require.NotNil(t, created.ResourceID)
	assert.Equal(t, "1001", *created.ResourceID)
	var values map[string]string
	require.NoError(t, json.Unmarshal(created.NewValues, &values))
	assert.Equal(t, "GEC Kannur", values["name"])
}

func TestAuditServiceNilAndStoppedAreSilent(t *testing.T) {
	var nilAudit *AuditService
	nilAudit.Start(context.Background())
	nilAudit.Record("desk", testAdmin, models.AuditActionLogout, models.AuditResourceDesk, "desk", nil)
	nilAudit.Stop()

	store := memory.NewStore(0)
	audit := NewAuditService(store.Audit(), config.AuditConfig{}, nil)
	audit.Record("desk", testAdmin, models.AuditActionLogout, models.AuditResourceDesk, "desk", nil)
	assert.Empty(t, store.Audit().List())
}
