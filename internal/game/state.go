package game

import (
	"encoding/json"
	"fmt"
	"sync"
)

// State is the adventure variant's in-memory game state. It is mutated by
// tool calls and snapshotted/restored whole over the UI channel.
type State struct {
	mu        sync.RWMutex
	location  string
	health    int
	inventory []string
}

// Snapshot is the wire shape of a game state, the payload of SAVE_RESP and
// LOAD_REQ messages.
type Snapshot struct {
	Location  string   `json:"location"`
	Health    int      `json:"health"`
	Inventory []string `json:"inventory"`
}

const maxHealth = 100

func New(startLocation string) *State {
	return &State{location: startLocation, health: maxHealth}
}

func (s *State) Location() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.location
}

func (s *State) MoveTo(location string) {
	s.mu.Lock()
	s.location = location
	s.mu.Unlock()
}

func (s *State) Health() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// Damage lowers health, clamped at zero. Returns the new value.
func (s *State) Damage(points int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health -= points
	if s.health < 0 {
		s.health = 0
	}
	return s.health
}

// Heal raises health, clamped at the maximum. Returns the new value.
func (s *State) Heal(points int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health += points
	if s.health > maxHealth {
		s.health = maxHealth
	}
	return s.health
}

// Take adds an item to the inventory; duplicates are allowed.
func (s *State) Take(item string) {
	s.mu.Lock()
	s.inventory = append(s.inventory, item)
	s.mu.Unlock()
}

// Drop removes one occurrence of item, reporting whether it was held.
func (s *State) Drop(item string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, held := range s.inventory {
		if held == item {
			s.inventory = append(s.inventory[:i], s.inventory[i+1:]...)
			return true
		}
	}
	return false
}

// Inventory returns a copy of the held items.
func (s *State) Inventory() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.inventory))
	copy(out, s.inventory)
	return out
}

// Save captures the current state.
func (s *State) Save() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv := make([]string, len(s.inventory))
	copy(inv, s.inventory)
	return Snapshot{Location: s.location, Health: s.health, Inventory: inv}
}

// Restore replaces the whole state with a snapshot.
func (s *State) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = snap.Location
	s.health = snap.Health
	s.inventory = append([]string(nil), snap.Inventory...)
}

// RestoreJSON decodes and applies a snapshot received over the UI channel.
func (s *State) RestoreJSON(raw []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode game state: %w", err)
	}
	s.Restore(snap)
	return nil
}
