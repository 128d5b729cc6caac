// Package domain provides the core value types for voyager: the voyage
// descriptor, tasks, and derived ship/voyage status.
//
// Import rules: this package may import internal/constants and
// internal/voyageerr, and the standard library, but no other internal
// package. Everything here is data plus pure functions; no I/O.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// VoyagePrefix is the fixed prefix every voyage id begins with.
const VoyagePrefix = "voyage-"

// Voyage is the immutable record created by sail. Once constructed its
// fields never change; Task Store writes and Status Deriver reads treat
// it as a value.
type Voyage struct {
	ID         string    `json:"id"`
	Objective  string    `json:"objective"`
	Repo       string    `json:"repo"`
	Branch     string    `json:"branch"`
	TaskSetID  string    `json:"task_set_id"`
	ShipCount  int       `json:"ship_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewVoyage constructs a fresh Voyage. The id embeds 6 bytes (12 hex
// characters) of crypto randomness, matching the entropy budget of the
// system this was distilled from, which is enough to make collision with
// any other live voyage negligible without operator coordination.
func NewVoyage(objective, repo string, shipCount int, now time.Time) (Voyage, error) {
	id, err := newVoyageID()
	if err != nil {
		return Voyage{}, fmt.Errorf("generate voyage id: %w", err)
	}
	return Voyage{
		ID:        id,
		Objective: objective,
		Repo:      repo,
		Branch:    id,
		TaskSetID: id + "-tasks",
		ShipCount: shipCount,
		CreatedAt: now.UTC(),
	}, nil
}

func newVoyageID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return VoyagePrefix + hex.EncodeToString(buf), nil
}

// StorageName returns the deterministic VM name for this voyage's storage
// node: "<voyage-id>-storage".
func (v Voyage) StorageName() string {
	return v.ID + "-storage"
}

// ShipName returns the deterministic VM name for ship index i within this
// voyage: "<voyage-id>-ship-<i>".
func (v Voyage) ShipName(index int) string {
	return fmt.Sprintf("%s-ship-%d", v.ID, index)
}

// MarshalCanonicalJSON serializes the voyage to indented, stable-key JSON
// for persistence as the single voyage.json artifact.
func (v Voyage) MarshalCanonicalJSON() ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// ParseVoyage reconstructs a Voyage from its canonical JSON serialization.
func ParseVoyage(data []byte) (Voyage, error) {
	var v Voyage
	if err := json.Unmarshal(data, &v); err != nil {
		return Voyage{}, fmt.Errorf("parse voyage descriptor: %w", err)
	}
	return v, nil
}
