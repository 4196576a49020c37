package signature

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Digest computes the hex SHA-256 over the canonical JSON encoding of the
// payload. Payloads must be structs with a fixed field order — encoding/json
// serializes struct fields in declaration order, which keeps the digest
// deterministic. Dynamic maps must never be signed directly.
//
// No secret key is involved: this is tamper evidence, not tamper prevention.
// Anyone with write access to the store can recompute a matching digest for
// altered fields.
func Digest(payload interface{}) (string, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the payload digest and compares it to the stored
// signature. Returns false for an absent signature.
func Verify(payload interface{}, signature string) bool {
	if signature == "" {
		return false
	}
	computed, err := Digest(payload)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(signature)) == 1
}

// canonicalTime collapses timestamps to whole UTC seconds so a digest can be
// recomputed from a database column regardless of driver precision.
func canonicalTime(t time.Time) int64 {
	return t.UTC().Truncate(time.Second).Unix()
}

// SubmissionPayload is signed when a timesheet is submitted; the digest is
// stored as the sheet's integrity hash.
type SubmissionPayload struct {
	OwnerID      int64 `json:"owner_id"`
	TimesheetID  int64 `json:"timesheet_id"`
	TotalMinutes int64 `json:"total_minutes"`
	EntryCount   int64 `json:"entry_count"`
	Timestamp    int64 `json:"timestamp"`
}

func NewSubmissionPayload(ownerID, timesheetID, totalMinutes, entryCount int64, at time.Time) SubmissionPayload {
	return SubmissionPayload{
		OwnerID:      ownerID,
		TimesheetID:  timesheetID,
		TotalMinutes: totalMinutes,
		EntryCount:   entryCount,
		Timestamp:    canonicalTime(at),
	}
}

// DecisionPayload is signed on every validator decision.
type DecisionPayload struct {
	TimesheetID int64  `json:"timesheet_id"`
	ValidatorID int64  `json:"validator_id"`
	Decision    string `json:"decision"`
	Timestamp   int64  `json:"timestamp"`
}

func NewDecisionPayload(timesheetID, validatorID int64, decision string, at time.Time) DecisionPayload {
	return DecisionPayload{
		TimesheetID: timesheetID,
		ValidatorID: validatorID,
		Decision:    decision,
		Timestamp:   canonicalTime(at),
	}
}

// AuditPayload is signed for every audit log record.
type AuditPayload struct {
	Action       string `json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	ActorID      int64  `json:"actor_id"`
	Timestamp    int64  `json:"timestamp"`
	Details      string `json:"details"`
}

func NewAuditPayload(action, resourceType, resourceID string, actorID int64, at time.Time, details string) AuditPayload {
	return AuditPayload{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ActorID:      actorID,
		Timestamp:    canonicalTime(at),
		Details:      details,
	}
}
