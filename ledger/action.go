package ledger

import "fmt"

// =============================================================================
// ACTION - Tagged description of a gated mutation
// =============================================================================

// ActionKind names the mutation an Action performs.
type ActionKind string

const (
	ActionAppend ActionKind = "append"
	ActionEdit   ActionKind = "edit"
	ActionDelete ActionKind = "delete"
)

// Action describes a ledger mutation waiting for authorization.
//
// Which fields are used depends on Kind:
//   - Append: Description, Delta
//   - Edit:   Index, Description, Date, Delta
//   - Delete: Index
type Action struct {
	Kind        ActionKind
	Index       int
	Description string
	Date        string
	Delta       int
}

// AppendAction describes adding an entry.
func AppendAction(description string, delta int) Action {
	return Action{Kind: ActionAppend, Description: description, Delta: delta}
}

// EditAction describes replacing the entry at index.
func EditAction(index int, description, date string, delta int) Action {
	return Action{Kind: ActionEdit, Index: index, Description: description, Date: date, Delta: delta}
}

// DeleteAction describes removing the entry at index.
func DeleteAction(index int) Action {
	return Action{Kind: ActionDelete, Index: index}
}

// Validate checks the action is well formed.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionAppend, ActionEdit:
		if a.Description == "" {
			return ErrEmptyDescription
		}
	case ActionDelete:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	return nil
}

func (a Action) String() string {
	switch a.Kind {
	case ActionAppend:
		return fmt.Sprintf("append(%q, %+d)", a.Description, a.Delta)
	case ActionEdit:
		return fmt.Sprintf("edit(#%d, %q, %q, %+d)", a.Index, a.Description, a.Date, a.Delta)
	case ActionDelete:
		return fmt.Sprintf("delete(#%d)", a.Index)
	default:
		return fmt.Sprintf("action(%q)", a.Kind)
	}
}
