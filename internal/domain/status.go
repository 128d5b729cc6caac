package domain

import "time"

// ShipState is the derived operating state of one ship, computed purely
// from the task set — ships have no persistent record of their own.
type ShipState string

const (
	// ShipStateWorking means the ship holds at least one in_progress
	// task that is not stale.
	ShipStateWorking ShipState = "working"
	// ShipStateStale means the ship's only in_progress task(s) are stale.
	ShipStateStale ShipState = "stale"
	// ShipStateIdle means the ship has completed work and holds no
	// in_progress task.
	ShipStateIdle ShipState = "idle"
	// ShipStateUnknown means the ship was observed only via historic or
	// otherwise inconclusive metadata.
	ShipStateUnknown ShipState = "unknown"
)

// VoyageState is the derived aggregate state of the whole voyage.
type VoyageState string

const (
	// VoyageStatePlanning means the task set is empty.
	VoyageStatePlanning VoyageState = "planning"
	// VoyageStateRunning means work is proceeding normally.
	VoyageStateRunning VoyageState = "running"
	// VoyageStateStalled means pending work exists but every in_progress
	// task is stale.
	VoyageStateStalled VoyageState = "stalled"
	// VoyageStateComplete means every task is complete.
	VoyageStateComplete VoyageState = "complete"
)

// ShipStatus is one ship's derived status.
type ShipStatus struct {
	ID             string
	State          ShipState
	CurrentTask    string
	ClaimedAt      *time.Time
	CompletedCount int
}

// VoyageStatus is the full derived status of a voyage: per-ship states
// plus the aggregate voyage state and task counters.
type VoyageStatus struct {
	VoyageState   VoyageState
	Ships         map[string]ShipStatus
	TotalTasks    int
	PendingCount  int
	RunningCount  int
	CompleteCount int
	StaleCount    int
	DataFaults    []string
}

// IsStale reports whether an in_progress task claimed at claimedAt is
// stale relative to now, given threshold. A nil claimedAt (malformed
// task) is never considered stale by this check alone; callers should
// treat a missing claimed_at on an in_progress task as a data fault
// instead (invariant 2 in the data model).
func IsStale(claimedAt *time.Time, now time.Time, threshold time.Duration) bool {
	if claimedAt == nil {
		return false
	}
	elapsed := now.Sub(*claimedAt)
	return elapsed > threshold
}

// DefaultStaleThreshold is used when no configuration overrides it.
const DefaultStaleThreshold = 30 * time.Minute

// Derive is the pure status-deriving function: from a voyage's task set,
// the current time, and the configured staleness threshold, it computes
// per-ship and aggregate voyage state. It is side-effect free and
// deterministic in its inputs; it never returns an error because a
// malformed task set is reported as data faults in the result rather than
// failing the whole derivation (spec invariant: status never crashes on
// bad data).
func Derive(tasks []Task, now time.Time, staleThreshold time.Duration) VoyageStatus {
	if staleThreshold <= 0 {
		staleThreshold = DefaultStaleThreshold
	}

	status := VoyageStatus{
		Ships:      map[string]ShipStatus{},
		TotalTasks: len(tasks),
	}

	if len(tasks) == 0 {
		status.VoyageState = VoyageStatePlanning
		return status
	}

	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	// First pass: seed the ships map from every assignee/completed_by
	// observed anywhere, and classify per-task contribution to each ship.
	for _, t := range tasks {
		for _, shipID := range []string{t.Metadata.Assignee, t.Metadata.CompletedBy} {
			if shipID == "" {
				continue
			}
			if _, ok := status.Ships[shipID]; !ok {
				status.Ships[shipID] = ShipStatus{ID: shipID, State: ShipStateUnknown}
			}
		}

		if !t.Status.Valid() {
			status.DataFaults = append(status.DataFaults,
				"task "+t.ID+": invalid status "+string(t.Status))
			continue
		}

		for _, blockerID := range t.BlockedBy {
			if _, ok := byID[blockerID]; !ok {
				status.DataFaults = append(status.DataFaults,
					"task "+t.ID+": blocked_by references missing task "+blockerID)
			}
		}

		switch t.Status {
		case TaskStatusPending:
			status.PendingCount++
		case TaskStatusInProgress:
			status.RunningCount++
			if hasIncompleteBlockers(t, byID) {
				status.DataFaults = append(status.DataFaults,
					"task "+t.ID+": in_progress with incomplete blockers")
			}
			if t.Metadata.Assignee == "" {
				status.DataFaults = append(status.DataFaults,
					"task "+t.ID+": in_progress without metadata.assignee")
				continue
			}
			if t.Metadata.ClaimedAt == nil {
				status.DataFaults = append(status.DataFaults,
					"task "+t.ID+": in_progress without metadata.claimed_at")
			}
			ship := status.Ships[t.Metadata.Assignee]
			ship.ID = t.Metadata.Assignee
			stale := IsStale(t.Metadata.ClaimedAt, now, staleThreshold)
			if stale {
				status.StaleCount++
				if ship.State != ShipStateWorking {
					ship.State = ShipStateStale
				}
			} else {
				ship.State = ShipStateWorking
			}
			ship.CurrentTask = t.ID
			ship.ClaimedAt = t.Metadata.ClaimedAt
			status.Ships[t.Metadata.Assignee] = ship
		case TaskStatusComplete:
			status.CompleteCount++
			if t.Metadata.CompletedBy != "" {
				ship := status.Ships[t.Metadata.CompletedBy]
				ship.ID = t.Metadata.CompletedBy
				ship.CompletedCount++
				status.Ships[t.Metadata.CompletedBy] = ship
			}
		}
	}

	// Second pass: any ship left at its zero-value unknown state but with
	// completed work is promoted to idle.
	for id, ship := range status.Ships {
		if ship.State == ShipStateUnknown && ship.CompletedCount > 0 {
			ship.State = ShipStateIdle
			status.Ships[id] = ship
		}
	}

	status.VoyageState = deriveVoyageState(status)
	return status
}

func hasIncompleteBlockers(t Task, byID map[string]Task) bool {
	for _, blockerID := range t.BlockedBy {
		blocker, ok := byID[blockerID]
		if !ok || blocker.Status != TaskStatusComplete {
			return true
		}
	}
	return false
}

func deriveVoyageState(status VoyageStatus) VoyageState {
	switch {
	case status.CompleteCount == status.TotalTasks:
		return VoyageStateComplete
	case status.PendingCount > 0 && status.RunningCount > 0 && status.StaleCount == status.RunningCount:
		return VoyageStateStalled
	default:
		return VoyageStateRunning
	}
}
