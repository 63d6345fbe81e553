package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix enables future algorithm migration.
const (
	DomainRecord = "syncphysics/record/v1"
	DomainCauses = "syncphysics/causes/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordID computes the content-addressed id for an action record.
// The id is stable across restarts and replays given the same inputs.
// Returns an error if the input cannot be canonically marshaled.
func RecordID(flow string, action ActionRef, input IRObject, seq int64) (string, error) {
	obj := IRObject{
		"flow":   IRString(flow),
		"action": IRString(string(action)),
		"input":  input,
		"seq":    IRInt(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("RecordID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainRecord, canonical), nil
}

// CauseKey computes the hash of an ordered cause-record-id list.
// Used by the cycle guard: a rule firing is keyed by exactly which records
// satisfied which when positions, so clause order is significant.
func CauseKey(recordIDs []string) (string, error) {
	arr := make(IRArray, len(recordIDs))
	for i, id := range recordIDs {
		arr[i] = IRString(id)
	}

	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("CauseKey: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainCauses, canonical), nil
}

// MustRecordID is like RecordID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRecordID(flow string, action ActionRef, input IRObject, seq int64) string {
	id, err := RecordID(flow, action, input, seq)
	if err != nil {
		panic(err)
	}
	return id
}

// MustCauseKey is like CauseKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCauseKey(recordIDs []string) string {
	key, err := CauseKey(recordIDs)
	if err != nil {
		panic(err)
	}
	return key
}
