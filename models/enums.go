package models

import "errors"

type MutationType string

const (
	MutationTypeIncrease MutationType = "Increase"
	MutationTypeDecrease MutationType = "Decrease"
	MutationTypeTransfer MutationType = "Transfer"
)

func (t MutationType) Valid() bool {
	switch t {
	case MutationTypeIncrease, MutationTypeDecrease, MutationTypeTransfer:
		return true
	}
	return false
}

type MatchMethod string

const (
	MatchMethodSku    MatchMethod = "sku"
	MatchMethodFuzzy  MatchMethod = "name-fuzzy"
	MatchMethodManual MatchMethod = "manual"
)

func (m *MatchMethod) UnmarshalText(b []byte) error {
	switch string(b) {
	case "sku":
		*m = MatchMethodSku
	case "name-fuzzy":
		*m = MatchMethodFuzzy
	case "manual":
		*m = MatchMethodManual
	default:
		return errors.New("invalid match method")
	}
	return nil
}

type SyncState string

const (
	// SyncStateSynced means the primary system acknowledged the quantity change.
	SyncStateSynced SyncState = "synced"
	// SyncStatePending means the local write succeeded but the primary-system
	// signal has not been acknowledged yet. Retried at-least-once.
	SyncStatePending SyncState = "pending"
)

type DiscrepancyStatus string

const (
	DiscrepancyStatusSynced      DiscrepancyStatus = "synced"
	DiscrepancyStatusDiscrepancy DiscrepancyStatus = "discrepancy"
)
