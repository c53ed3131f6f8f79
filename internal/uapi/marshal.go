package uapi

import "encoding/binary"

// Marshal converts a CommandMessage or AuditRecord to bytes using explicit
// little-endian field order, rather than unsafe memory copies, so the
// encoding never depends on the reader's struct padding. Shared-memory
// structs are addressed directly through pointers into the mapped segment,
// and the sysv facade passes CommandMessage to msgsnd/msgrcv in its
// in-memory layout; neither goes through Marshal.
func Marshal(v interface{}) []byte {
	switch val := v.(type) {
	case *CommandMessage:
		return marshalCommandMessage(val)
	case *AuditRecord:
		return marshalAuditRecord(val)
	default:
		return nil
	}
}

// Unmarshal parses bytes produced by Marshal back into v.
func Unmarshal(data []byte, v interface{}) error {
	switch val := v.(type) {
	case *CommandMessage:
		return unmarshalCommandMessage(data, val)
	case *AuditRecord:
		return unmarshalAuditRecord(data, val)
	default:
		return ErrInvalidType
	}
}

func marshalCommandMessage(m *CommandMessage) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.RecipientTag))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(m.CommandID))
	return buf
}

func unmarshalCommandMessage(data []byte, m *CommandMessage) error {
	if len(data) < 16 {
		return ErrInsufficientData
	}
	m.RecipientTag = int64(binary.LittleEndian.Uint64(data[0:8]))
	m.CommandID = int32(binary.LittleEndian.Uint32(data[8:12]))
	return nil
}

func marshalAuditRecord(r *AuditRecord) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint16(buf[0:2], r.Action)
	buf[2] = r.Actor
	binary.LittleEndian.PutUint32(buf[4:8], uint32(r.ActorPID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(r.Timestamp))
	return buf
}

func unmarshalAuditRecord(data []byte, r *AuditRecord) error {
	if len(data) < 16 {
		return ErrInsufficientData
	}
	r.Action = binary.LittleEndian.Uint16(data[0:2])
	r.Actor = data[2]
	r.ActorPID = int32(binary.LittleEndian.Uint32(data[4:8]))
	r.Timestamp = int64(binary.LittleEndian.Uint64(data[8:16]))
	return nil
}

// MarshalError reports a wire-format problem distinct from the domain
// *Error type used elsewhere: these never cross an IPC boundary themselves.
type MarshalError string

func (e MarshalError) Error() string { return string(e) }

const (
	ErrInsufficientData MarshalError = "insufficient data for unmarshaling"
	ErrInvalidType      MarshalError = "invalid type for marshaling"
)
