package usecase

import (
	"context"
	"math"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(s string) *string     { return &s }

func TestUpdateRenormalizesWeights(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	prefs := NewPreferences(store)

	got, err := prefs.Update(context.Background(), PreferenceUpdate{
		IndustryWeight: floatPtr(3),
		TechWeight:     floatPtr(1),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if math.Abs(got.IndustryWeight-0.75) > 1e-9 || math.Abs(got.TechWeight-0.25) > 1e-9 {
		t.Fatalf("expected 0.75/0.25, got %+v", got)
	}
}

func TestUpdateZeroWeightsDoNotDivideByZero(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	prefs := NewPreferences(store)

	got, err := prefs.Update(context.Background(), PreferenceUpdate{
		IndustryWeight: floatPtr(0),
		TechWeight:     floatPtr(0),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if math.IsNaN(got.IndustryWeight) || math.IsNaN(got.TechWeight) {
		t.Fatalf("weights became NaN: %+v", got)
	}
}

func TestUpdateRejectsLoneWeight(t *testing.T) {
	t.Parallel()

	prefs := NewPreferences(newFakeStore())

	_, err := prefs.Update(context.Background(), PreferenceUpdate{IndustryWeight: floatPtr(0.9)})
	if err == nil {
		t.Fatalf("expected error for lone weight update")
	}
}

func TestUpdateRejectsBadHour(t *testing.T) {
	t.Parallel()

	prefs := NewPreferences(newFakeStore())

	_, err := prefs.Update(context.Background(), PreferenceUpdate{SendHourLocal: intPtr(24)})
	if err == nil {
		t.Fatalf("expected error for hour 24")
	}
}

func TestUpdateDeliveryFields(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	prefs := NewPreferences(store)

	got, err := prefs.Update(context.Background(), PreferenceUpdate{
		Email:         strPtr("reader@example.com"),
		SendHourLocal: intPtr(6),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Email != "reader@example.com" || got.SendHourLocal != 6 {
		t.Fatalf("delivery fields not applied: %+v", got)
	}
	// weights untouched
	if got.IndustryWeight != 0.7 || got.TechWeight != 0.3 {
		t.Fatalf("weights should be unchanged: %+v", got)
	}
}
