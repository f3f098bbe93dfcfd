// Package store provides lead persistence backends for Leadline.
//
// This file implements an in-memory store used by tests and demo
// deployments that have no database configured.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FinalExpenseIQ/leadline/internal/models"
	"github.com/FinalExpenseIQ/leadline/internal/phone"
)

// InMemoryStore keeps leads in a map keyed by canonical phone number.
type InMemoryStore struct {
	mu    sync.Mutex
	leads map[string]*models.Lead
}

// NewInMemoryStore creates an empty in-memory lead store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{leads: make(map[string]*models.Lead)}
}

// FetchOrCreate returns the lead for a phone number, creating one at
// step 1 with active status if none exists.
func (s *InMemoryStore) FetchOrCreate(ctx context.Context, phoneNumber string) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lead, ok := s.leads[phoneNumber]; ok {
		copied := *lead
		return &copied, nil
	}

	now := time.Now().UTC()
	lead := &models.Lead{
		ID:          uuid.NewString(),
		PhoneNumber: phoneNumber,
		Step:        1,
		Status:      models.LeadStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.leads[phoneNumber] = lead
	copied := *lead
	return &copied, nil
}

// GetLeadByPhone returns a copy of the stored lead, or nil if none exists.
func (s *InMemoryStore) GetLeadByPhone(ctx context.Context, phoneNumber string) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[phoneNumber]
	if !ok {
		return nil, nil
	}
	copied := *lead
	return &copied, nil
}

// UpdateLead merges non-nil fields into the stored lead.
func (s *InMemoryStore) UpdateLead(ctx context.Context, phoneNumber string, update models.LeadUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[phoneNumber]
	if !ok {
		return 0, nil
	}

	if update.State != nil {
		lead.State = *update.State
	}
	if update.Preference != nil {
		lead.Preference = *update.Preference
	}
	if update.Tobacco != nil {
		lead.Tobacco = *update.Tobacco
	}
	if update.Oxygen != nil {
		lead.Oxygen = *update.Oxygen
	}
	if update.Hospitalized != nil {
		lead.Hospitalized = *update.Hospitalized
	}
	if update.Controlled != nil {
		lead.Controlled = *update.Controlled
	}
	if update.Serious != nil {
		lead.Serious = *update.Serious
	}
	if update.Step != nil {
		lead.Step = *update.Step
	}
	if update.Status != nil {
		lead.Status = *update.Status
	}
	if update.AgentTakeover != nil {
		lead.AgentTakeover = *update.AgentTakeover
	}
	lead.UpdatedAt = time.Now().UTC()

	return 1, nil
}

// ListLeads returns all leads, newest first.
func (s *InMemoryStore) ListLeads(ctx context.Context) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads := make([]models.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		leads = append(leads, *lead)
	}
	sort.Slice(leads, func(i, j int) bool {
		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})
	return leads, nil
}

// CanonicalizePhoneNumbers rewrites legacy keys to canonical form,
// skipping collisions with existing canonical entries.
func (s *InMemoryStore) CanonicalizePhoneNumbers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var migrated int64
	for stored, lead := range s.leads {
		canonical := phone.Normalize(stored)
		if canonical == stored {
			continue
		}
		if _, exists := s.leads[canonical]; exists {
			continue
		}
		delete(s.leads, stored)
		lead.PhoneNumber = canonical
		s.leads[canonical] = lead
		migrated++
	}
	return migrated, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
