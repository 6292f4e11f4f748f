package selection

import (
	"errors"
	"fmt"
	"testing"
)

func TestStore_CapIsHardLimit(t *testing.T) {
	store := NewStore()

	for i := 0; i < MaxSelections; i++ {
		err := store.Add(Selection{
			ID:          fmt.Sprintf("acct-%d", i),
			Name:        "Midland Funding",
			Reason:      "Account not mine",
			Instruction: "Remove from report",
		})
		if err != nil {
			t.Fatalf("add %d: unexpected error: %v", i, err)
		}
	}

	err := store.Add(Selection{ID: "acct-overflow", Reason: "x", Instruction: "y"})
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if store.Len() != MaxSelections {
		t.Fatalf("expected %d items, got %d", MaxSelections, store.Len())
	}

	// Removing one frees a slot.
	if !store.Remove("acct-0") {
		t.Fatal("expected remove to succeed")
	}
	if err := store.Add(Selection{ID: "acct-5", Reason: "x", Instruction: "y"}); err != nil {
		t.Fatalf("add after remove: %v", err)
	}
}

func TestStore_NeverExceedsCapUnderAnySequence(t *testing.T) {
	store := NewStore()
	for i := 0; i < 50; i++ {
		_ = store.Add(Selection{ID: fmt.Sprintf("a-%d", i), Reason: "r", Instruction: "i"})
		if i%7 == 0 {
			store.Remove(fmt.Sprintf("a-%d", i/2))
		}
		if store.Len() > MaxSelections {
			t.Fatalf("cap violated at step %d: len=%d", i, store.Len())
		}
	}
}

func TestStore_AddValidation(t *testing.T) {
	store := NewStore()

	if err := store.Add(Selection{}); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}

	if err := store.Add(Selection{ID: "a1"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(Selection{ID: "a1"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_UpdateMergesFields(t *testing.T) {
	store := NewStore()
	if err := store.Add(Selection{ID: "a1", Name: "Cap One", Reason: "old"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	reason := "Balance is incorrect"
	instruction := "Validate with creditor"
	if err := store.Update("a1", Patch{Reason: &reason, Instruction: &instruction}); err != nil {
		t.Fatalf("update: %v", err)
	}

	items := store.Items()
	if items[0].Name != "Cap One" {
		t.Fatalf("expected untouched name, got %q", items[0].Name)
	}
	if items[0].Reason != reason || items[0].Instruction != instruction {
		t.Fatalf("patch not applied: %+v", items[0])
	}

	if err := store.Update("missing", Patch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ReadyRequiresReasonAndInstruction(t *testing.T) {
	store := NewStore()
	_ = store.Add(Selection{ID: "a1", Reason: "Account not mine", Instruction: "Remove from report"})
	_ = store.Add(Selection{ID: "a2", Reason: "Balance is incorrect"})

	if err := store.Ready(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}

	instruction := "Validate with creditor"
	if err := store.Update("a2", Patch{Instruction: &instruction}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := store.Ready(); err != nil {
		t.Fatalf("expected ready store, got %v", err)
	}
}

func TestStore_ResetClearsAll(t *testing.T) {
	store := NewStore()
	_ = store.Add(Selection{ID: "a1", Reason: "r", Instruction: "i"})
	store.Reset()
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d items", store.Len())
	}
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	store := NewStore()
	_ = store.Add(Selection{ID: "a1", Reason: "r", Instruction: "i"})

	items := store.Items()
	items[0].Reason = "mutated"

	if store.Items()[0].Reason != "r" {
		t.Fatal("Items must return a defensive copy")
	}
}
