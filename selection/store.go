package selection

import "errors"

// MaxSelections caps how many tradelines can be queued for a single round.
const MaxSelections = 5

var (
	// ErrLimitReached signals the store already holds MaxSelections entries.
	ErrLimitReached = errors.New("selection: limit of 5 items reached")
	// ErrDuplicate signals an entry with the same id is already selected.
	ErrDuplicate = errors.New("selection: item already selected")
	// ErrNotFound signals the id is not in the store.
	ErrNotFound = errors.New("selection: item not found")
	// ErrIncomplete signals an entry is missing a reason or instruction.
	ErrIncomplete = errors.New("selection: reason and instruction required")
	// ErrEmptyID signals an entry without an identifier.
	ErrEmptyID = errors.New("selection: item id required")
)

// Selection is one tradeline queued for dispute.
type Selection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Reason      string `json:"reason"`
	Instruction string `json:"instruction"`
}

// Patch carries partial updates; nil fields are left untouched.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Reason      *string `json:"reason,omitempty"`
	Instruction *string `json:"instruction,omitempty"`
}

// Store is a bounded collection of selections owned by a single caller.
// It is not safe for concurrent use; callers serialize access per user.
type Store struct {
	items []Selection
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends a selection. Exceeding the cap is a typed rejection, not a
// silent drop.
func (s *Store) Add(item Selection) error {
	if item.ID == "" {
		return ErrEmptyID
	}
	if len(s.items) >= MaxSelections {
		return ErrLimitReached
	}
	for _, existing := range s.items {
		if existing.ID == item.ID {
			return ErrDuplicate
		}
	}
	s.items = append(s.items, item)
	return nil
}

// Remove deletes the selection with the given id, reporting whether it existed.
func (s *Store) Remove(id string) bool {
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Update merges non-nil patch fields into the selection with the given id.
func (s *Store) Update(id string, patch Patch) error {
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.items[i].Name = *patch.Name
		}
		if patch.Reason != nil {
			s.items[i].Reason = *patch.Reason
		}
		if patch.Instruction != nil {
			s.items[i].Instruction = *patch.Instruction
		}
		return nil
	}
	return ErrNotFound
}

// Reset clears all selections.
func (s *Store) Reset() {
	s.items = nil
}

// Len reports the number of selections held.
func (s *Store) Len() int {
	return len(s.items)
}

// Items returns a copy of the current selections in insertion order.
func (s *Store) Items() []Selection {
	out := make([]Selection, len(s.items))
	copy(out, s.items)
	return out
}

// Ready verifies every entry is eligible for submission.
func (s *Store) Ready() error {
	for _, item := range s.items {
		if item.Reason == "" || item.Instruction == "" {
			return ErrIncomplete
		}
	}
	return nil
}

// Restore replaces the store contents with a previously mirrored snapshot.
// Snapshots over the cap are truncated rather than rejected; the cap held
// when the snapshot was taken.
func (s *Store) Restore(items []Selection) {
	if len(items) > MaxSelections {
		items = items[:MaxSelections]
	}
	s.items = make([]Selection, len(items))
	copy(s.items, items)
}
