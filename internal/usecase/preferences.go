package usecase

import (
	"context"
	"fmt"
	"sync"

	"quantumdaily/internal/domain"
	"quantumdaily/internal/ports"
)

const weightEpsilon = 1e-6

// PreferenceUpdate carries the writable fields of a direct update. Nil
// fields are left unchanged.
type PreferenceUpdate struct {
	IndustryWeight *float64
	TechWeight     *float64
	Email          *string
	SendHourLocal  *int
}

// Preferences exposes direct reads and writes of the preference record.
// Direct weight writes renormalize proportionally, unlike the feedback
// path, which clamps and complements.
type Preferences struct {
	store ports.PreferenceStore
	mu    sync.Mutex
}

// NewPreferences builds the preferences usecase.
func NewPreferences(store ports.PreferenceStore) *Preferences {
	return &Preferences{store: store}
}

// Get returns the current record, creating defaults on first access.
func (p *Preferences) Get(ctx context.Context) (domain.Preferences, error) {
	return p.store.LoadPreferences(ctx)
}

// Update validates and applies a direct update, returning the new record.
func (p *Preferences) Update(ctx context.Context, upd PreferenceUpdate) (domain.Preferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefs, err := p.store.LoadPreferences(ctx)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}

	if (upd.IndustryWeight == nil) != (upd.TechWeight == nil) {
		return domain.Preferences{}, fmt.Errorf("industry and tech weights must be updated together")
	}
	if upd.IndustryWeight != nil {
		iw, tw := *upd.IndustryWeight, *upd.TechWeight
		if iw < 0 || tw < 0 {
			return domain.Preferences{}, fmt.Errorf("weights must be non-negative")
		}
		sum := iw + tw
		if sum < weightEpsilon {
			sum = weightEpsilon
		}
		prefs.IndustryWeight = iw / sum
		prefs.TechWeight = tw / sum
	}

	if upd.Email != nil {
		prefs.Email = *upd.Email
	}
	if upd.SendHourLocal != nil {
		hour := *upd.SendHourLocal
		if hour < 0 || hour > 23 {
			return domain.Preferences{}, fmt.Errorf("send hour must be within 0..23")
		}
		prefs.SendHourLocal = hour
	}

	if err := p.store.SavePreferences(ctx, prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return prefs, nil
}
