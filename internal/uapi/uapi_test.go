package uapi

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructSizes(t *testing.T) {
	cases := []struct {
		name string
		got  uintptr
	}{
		{"SharedHeader", unsafe.Sizeof(SharedHeader{})},
		{"AuditRecord", unsafe.Sizeof(AuditRecord{})},
		{"Package", unsafe.Sizeof(Package{})},
		{"TruckState", unsafe.Sizeof(TruckState{})},
		{"UserSession", unsafe.Sizeof(UserSession{})},
		{"CommandMessage", unsafe.Sizeof(CommandMessage{})},
	}
	for _, tc := range cases {
		assert.NotZerof(t, tc.got, "%s must have non-zero size", tc.name)
	}
}

func TestPackageAppendAudit(t *testing.T) {
	var p Package
	for i := 0; i < MaxAuditTrail+2; i++ {
		p.AppendAudit(AuditCreated, ActorWorker, 100, int64(i))
	}
	assert.Equal(t, uint8(MaxAuditTrail), p.AuditCount)
	assert.Equal(t, int64(0), p.Audit[0].Timestamp)
	assert.Equal(t, int64(MaxAuditTrail-1), p.Audit[MaxAuditTrail-1].Timestamp)
}

func TestUserSessionUsernameRoundTrip(t *testing.T) {
	var u UserSession
	u.SetUsername("alice")
	assert.Equal(t, "alice", u.GetUsername())

	u.SetUsername("a-very-long-username-that-exceeds-thirty-two-bytes")
	assert.LessOrEqual(t, len(u.GetUsername()), 32)
}

func TestMarshalUnmarshalCommandMessage(t *testing.T) {
	original := &CommandMessage{RecipientTag: 4242, CommandID: 2}
	data := Marshal(original)
	require.Len(t, data, 16)

	var got CommandMessage
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, original.RecipientTag, got.RecipientTag)
	assert.Equal(t, original.CommandID, got.CommandID)
}

func TestMarshalUnmarshalAuditRecord(t *testing.T) {
	original := &AuditRecord{Action: AuditLoadedToTruck, Actor: ActorDispatcher, ActorPID: 777, Timestamp: 123456}
	data := Marshal(original)
	require.Len(t, data, 16)

	var got AuditRecord
	require.NoError(t, Unmarshal(data, &got))
	assert.Equal(t, *original, got)
}

func TestUnmarshalInsufficientData(t *testing.T) {
	var m CommandMessage
	assert.ErrorIs(t, Unmarshal([]byte{1, 2, 3}, &m), ErrInsufficientData)
}

func TestUnmarshalInvalidType(t *testing.T) {
	var x int
	assert.ErrorIs(t, Unmarshal([]byte{1, 2, 3}, &x), ErrInvalidType)
}
