package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// modelSchemaVersion guards the serialised layout. Bump on any incompatible
// change to modelSnapshot.
const modelSchemaVersion = 1

// ErrCorruptModel is returned when a persisted model cannot be decoded or
// fails structural validation. Callers typically fall back to a fresh agent.
var ErrCorruptModel = errors.New("corrupt model")

// modelSnapshot is the on-disk layout. Unknown fields written by newer code
// are ignored on load; absent optional sections restore to their zero values,
// so older snapshots remain loadable.
type modelSnapshot struct {
	Version       int                                  `json:"version"`
	AgentID       string                               `json:"agent_id"`
	Config        Config                               `json:"config"`
	Stats         AgentStats                           `json:"stats"`
	Epsilon       float64                              `json:"epsilon"`
	RNGSeed       int64                                `json:"rng_seed"`
	RNGDraws      int64                                `json:"rng_draws"`
	Q             map[string]map[string]ValueEntry `json:"q"`
	Q2            map[string]map[string]ValueEntry `json:"q2,omitempty"`
	Replay        []Experience                     `json:"replay,omitempty"`
	RecentRewards []float64                        `json:"recent_rewards,omitempty"`
}

// SaveModel serialises the agent's learned state: value tables, replay
// buffer, statistics, the current epsilon, and the RNG position. An in-flight
// trajectory is not captured; save between hands.
func SaveModel(a *Agent) ([]byte, error) {
	snap := modelSnapshot{
		Version:       modelSchemaVersion,
		AgentID:       a.id,
		Config:        a.cfg,
		Stats:         a.stats,
		Epsilon:       a.schedule.Epsilon(),
		RNGSeed:       a.rng.Seed(),
		RNGDraws:      a.rng.Draws(),
		Q:             snapshotTable(a.table.q),
		RecentRewards: append([]float64(nil), a.recent...),
	}
	if a.table.double {
		snap.Q2 = snapshotTable(a.table.q2)
	}
	if a.replay != nil {
		snap.Replay = a.replay.Snapshot()
	}
	return json.MarshalIndent(snap, "", "  ")
}

// LoadModel reconstructs an agent from a SaveModel blob. The restored agent
// reproduces the saved one's decision stream exactly: the RNG is re-seeded
// and fast-forwarded to the recorded draw position.
func LoadModel(data []byte) (*Agent, error) {
	var snap modelSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	if snap.Version != modelSchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", ErrCorruptModel, snap.Version, modelSchemaVersion)
	}
	if snap.AgentID == "" {
		return nil, fmt.Errorf("%w: missing agent id", ErrCorruptModel)
	}
	if err := snap.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	if snap.RNGDraws < 0 {
		return nil, fmt.Errorf("%w: negative rng draw count", ErrCorruptModel)
	}
	if snap.Config.UseDoubleQ && snap.Q2 == nil {
		return nil, fmt.Errorf("%w: double-q model missing second table", ErrCorruptModel)
	}

	a, err := New(snap.AgentID, snap.Config, snap.RNGSeed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	a.rng.Skip(snap.RNGDraws)
	a.schedule.SetEpsilon(snap.Epsilon)
	a.stats = snap.Stats
	a.recent = snap.RecentRewards
	a.table.q = restoreTable(snap.Q)
	if a.table.double {
		a.table.q2 = restoreTable(snap.Q2)
	}
	if a.replay != nil {
		a.replay.Restore(snap.Replay)
	}
	return a, nil
}

// SaveModelFile writes the model atomically: serialise to a temp file in the
// target directory, then rename over the destination. A crash mid-write
// leaves the previous model intact.
func SaveModelFile(a *Agent, path string) error {
	data, err := SaveModel(a)
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp model file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("installing model file: %w", err)
	}
	return nil
}

// LoadModelFile reads and reconstructs a model saved with SaveModelFile.
func LoadModelFile(path string) (*Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return LoadModel(data)
}
