package main

import (
	"testing"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

func TestAssignIDs(t *testing.T) {
	murals := []domain.Mural{
		{Name: "a"},
		{ID: 1602, Name: "b"},
		{Name: "c"},
	}
	got := assignIDs(murals, 1601)

	want := []int{1601, 1602, 1603}
	for i, m := range got {
		if m.ID != want[i] {
			t.Errorf("mural %s: expected id %d, got %d", m.Name, want[i], m.ID)
		}
	}
}
