package resolver

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"Nouméa", "noumea"},
		{"NOUMÉA", "noumea"},
		{"Païta", "paita"},
		{"Île des Pins", "ile des pins"},
		{"  Hienghène ", "hienghene"},
		{"koné", "kone"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.out {
			t.Errorf("NormalizeName(%q)=%q, want %q", tt.in, got, tt.out)
		}
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	for _, s := range []string{"Nouméa", "Païta", "Île des Pins", "already plain"} {
		once := NormalizeName(s)
		twice := NormalizeName(once)
		if once != twice {
			t.Errorf("NormalizeName not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestResolveByName(t *testing.T) {
	provider := &fakeProvider{regions: []models.Region{
		rectRegion("Nouméa", 0, 166.40, -22.33, 166.49, -22.23),
		rectRegion("Dumbéa", 1, 166.38, -22.23, 166.55, -22.10),
		rectRegion("Mont-Dore", 2, 166.49, -22.33, 166.70, -22.18),
	}}
	r := New(provider)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  string // empty means no match
	}{
		{"accentless lowercase substring", "noum", "Nouméa"},
		{"exact name", "Nouméa", "Nouméa"},
		{"accented query against accentless index", "dumbéa", "Dumbéa"},
		{"middle substring", "ont-dor", "Mont-Dore"},
		{"case insensitive", "MONT", "Mont-Dore"},
		{"no match", "tokyo", ""},
		{"blank query", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, err := r.ResolveByName(ctx, tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want == "" {
				if region != nil {
					t.Errorf("expected no match, got %+v", region)
				}
				return
			}
			if region == nil || region.Name != tt.want {
				t.Errorf("got %+v, want %s", region, tt.want)
			}
		})
	}
}

func TestResolveByName_FirstMatchWins(t *testing.T) {
	// Two names share the substring; the earlier one in dataset order must be
	// returned.
	provider := &fakeProvider{regions: []models.Region{
		rectRegion("Pouembout", 0, 164.8, -21.3, 165.1, -21.0),
		rectRegion("Pouébo", 1, 164.4, -20.5, 164.7, -20.2),
	}}
	r := New(provider)

	region, err := r.ResolveByName(context.Background(), "pou")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if region == nil || region.Name != "Pouembout" {
		t.Errorf("got %+v, want Pouembout", region)
	}
}

func TestResolveByName_DataUnavailable(t *testing.T) {
	r := New(&fakeProvider{err: apperrors.ErrDataUnavailable})
	_, err := r.ResolveByName(context.Background(), "noum")
	if !errors.Is(err, apperrors.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestResolveByName_EmptyDataset(t *testing.T) {
	r := New(&fakeProvider{})
	region, err := r.ResolveByName(context.Background(), "noum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if region != nil {
		t.Errorf("expected no match from empty dataset, got %+v", region)
	}
}
