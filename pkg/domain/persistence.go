package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// DefaultStoreKey names the persisted snapshot when no restaurant scope is set.
const DefaultStoreKey = "haccp-storage"

// Snapshot is the full persisted state of the core. Every mutation writes a
// new snapshot through the configured SnapshotStore.
type Snapshot struct {
	Plans                []HACCPPlan           `json:"plans"`
	MonitoringLogs       []CCPMonitoringLog    `json:"monitoringLogs"`
	CorrectiveActionLogs []CorrectiveActionLog `json:"correctiveActionLogs"`

	Equipment       []Equipment      `json:"equipment"`
	TemperatureLogs []TemperatureLog `json:"temperatureLogs"`
	Alerts          []Alert          `json:"alerts"`
	CoolingLogs     []CoolingLog     `json:"coolingLogs"`
	Checklists      []Checklist      `json:"checklists"`
	SanitationTasks []SanitationTask `json:"sanitationTasks"`
	SanitationLogs  []SanitationLog  `json:"sanitationLogs"`
}

// SnapshotStore is the persistence boundary of the core: read once on
// startup, written after every committed mutation. Load on an empty backend
// returns an empty Snapshot and no error.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
	Close() error
}

// Snapshot bucket names used by backends that split the state per collection.
const (
	BucketPlans             = "plans"
	BucketMonitoringLogs    = "monitoring_logs"
	BucketCorrectiveActions = "corrective_action_logs"
	BucketEquipment         = "equipment"
	BucketTemperatureLogs   = "temperature_logs"
	BucketAlerts            = "alerts"
	BucketCoolingLogs       = "cooling_logs"
	BucketChecklists        = "checklists"
	BucketSanitationTasks   = "sanitation_tasks"
	BucketSanitationLogs    = "sanitation_logs"
)

// SnapshotBuckets lists buckets in the order backends write them.
var SnapshotBuckets = []string{
	BucketPlans, BucketMonitoringLogs, BucketCorrectiveActions,
	BucketEquipment, BucketTemperatureLogs, BucketAlerts,
	BucketCoolingLogs, BucketChecklists, BucketSanitationTasks, BucketSanitationLogs,
}

// buckets maps bucket names to pointers at the matching collections.
func (s *Snapshot) buckets() map[string]any {
	return map[string]any{
		BucketPlans:             &s.Plans,
		BucketMonitoringLogs:    &s.MonitoringLogs,
		BucketCorrectiveActions: &s.CorrectiveActionLogs,
		BucketEquipment:         &s.Equipment,
		BucketTemperatureLogs:   &s.TemperatureLogs,
		BucketAlerts:            &s.Alerts,
		BucketCoolingLogs:       &s.CoolingLogs,
		BucketChecklists:        &s.Checklists,
		BucketSanitationTasks:   &s.SanitationTasks,
		BucketSanitationLogs:    &s.SanitationLogs,
	}
}

// EncodeBuckets serialises each collection of the snapshot as its own JSON
// payload. Empty collections encode as [].
func (s Snapshot) EncodeBuckets() (map[string][]byte, error) {
	full := s.withEmptyCollections()
	targets := full.buckets()
	out := make(map[string][]byte, len(SnapshotBuckets))
	for _, bucket := range SnapshotBuckets {
		data, err := json.Marshal(targets[bucket])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBuckets rebuilds a snapshot from per-bucket payloads. Unknown buckets
// and empty payloads are ignored.
func DecodeBuckets(payloads map[string][]byte) (Snapshot, error) {
	var snapshot Snapshot
	targets := snapshot.buckets()
	for bucket, data := range payloads {
		if len(data) == 0 {
			continue
		}
		target, ok := targets[bucket]
		if !ok {
			continue
		}
		if err := json.Unmarshal(data, target); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	return snapshot, nil
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Plans:                cloneEach(s.Plans),
		MonitoringLogs:       cloneEach(s.MonitoringLogs),
		CorrectiveActionLogs: cloneEach(s.CorrectiveActionLogs),
		Equipment:            copyOf(s.Equipment),
		TemperatureLogs:      copyOf(s.TemperatureLogs),
		Alerts:               copyOf(s.Alerts),
		CoolingLogs:          cloneEach(s.CoolingLogs),
		Checklists:           cloneEach(s.Checklists),
		SanitationTasks:      cloneEach(s.SanitationTasks),
		SanitationLogs:       copyOf(s.SanitationLogs),
	}
}

func (s Snapshot) withEmptyCollections() Snapshot {
	s.Plans = nonNil(s.Plans)
	s.MonitoringLogs = nonNil(s.MonitoringLogs)
	s.CorrectiveActionLogs = nonNil(s.CorrectiveActionLogs)
	s.Equipment = nonNil(s.Equipment)
	s.TemperatureLogs = nonNil(s.TemperatureLogs)
	s.Alerts = nonNil(s.Alerts)
	s.CoolingLogs = nonNil(s.CoolingLogs)
	s.Checklists = nonNil(s.Checklists)
	s.SanitationTasks = nonNil(s.SanitationTasks)
	s.SanitationLogs = nonNil(s.SanitationLogs)
	return s
}

func cloneEach[T interface{ Clone() T }](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

// copyOf copies a slice of pointer-free values.
func copyOf[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
