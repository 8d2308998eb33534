/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Ledger:  LedgerDTO, EntryDTO, PayoutDTO
  Entries: CreateEntryRequest, EditEntryRequest, ActionResponse
  Gate:    GateDTO, ActionDTO, CredentialRequest
  Catalog: CatalogDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"github.com/warp/points-engine/ledger"
	"github.com/warp/points-engine/rewards"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EntryDTO is one ledger line.
type EntryDTO struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Date        string `json:"date"`
	IsPositive  bool   `json:"is_positive"`
}

// PayoutDTO is the summary shown above the history.
type PayoutDTO struct {
	Earned   bool   `json:"earned"`
	Shekels  int    `json:"shekels"`
	Bonus    int    `json:"bonus"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// LedgerDTO is the full view of the active period.
type LedgerDTO struct {
	Period  string     `json:"period"`
	Balance int        `json:"balance"`
	Entries []EntryDTO `json:"entries"`
	Payout  PayoutDTO  `json:"payout"`
	Gate    GateDTO    `json:"gate"`
}

// ActionDTO describes a gated mutation.
type ActionDTO struct {
	Kind        string `json:"kind"`
	Index       *int   `json:"index,omitempty"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Points      int    `json:"points"`
}

// GateDTO is the admin gate state.
type GateDTO struct {
	State   string     `json:"state"`
	Pending *ActionDTO `json:"pending,omitempty"`
}

// CreateEntryRequest adds an entry of one of the catalog entry types.
//
//	deduction/bonus: label
//	grade:           subject, grade
//	custom:          description, points
type CreateEntryRequest struct {
	Type        string   `json:"type"`
	Label       string   `json:"label,omitempty"`
	Subject     string   `json:"subject,omitempty"`
	Grade       *float64 `json:"grade,omitempty"`
	Description string   `json:"description,omitempty"`
	Points      *int     `json:"points,omitempty"`
}

// EditEntryRequest replaces an entry's fields.
type EditEntryRequest struct {
	Description string `json:"description"`
	Date        string `json:"date"`
	Points      *int   `json:"points"`
}

// CredentialRequest carries the admin code.
type CredentialRequest struct {
	Code string `json:"code"`
}

// ActionResponse is returned by every gated endpoint.
type ActionResponse struct {
	Outcome string     `json:"outcome"`
	Action  *ActionDTO `json:"action,omitempty"`
	EntryID *int       `json:"entry_id,omitempty"`
	Warning string     `json:"warning,omitempty"`
	Ledger  LedgerDTO  `json:"ledger"`
}

// ThresholdDTO is a subject's grade expectation.
type ThresholdDTO struct {
	Subject string `json:"subject"`
	Min     int    `json:"min"`
	Target  int    `json:"target"`
}

// ItemDTO is a catalog deduction or bonus.
type ItemDTO struct {
	Label    string `json:"label"`
	Points   int    `json:"points"`
	Category string `json:"category"`
}

// CatalogDTO lists the reference tables.
type CatalogDTO struct {
	EntryTypes []string       `json:"entry_types"`
	Subjects   []ThresholdDTO `json:"subjects"`
	Deductions []ItemDTO      `json:"deductions"`
	Bonuses    []ItemDTO      `json:"bonuses"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toLedgerDTO(period ledger.PeriodKey, state ledger.State, gate GateDTO) LedgerDTO {
	entries := make([]EntryDTO, len(state.Entries))
	for i, e := range state.Entries {
		entries[i] = EntryDTO{
			Index:       i,
			Description: e.Description,
			Points:      e.Delta,
			Date:        e.Date,
			IsPositive:  e.IsPositive(),
		}
	}
	p := rewards.Summarize(state.Balance)
	return LedgerDTO{
		Period:  string(period),
		Balance: state.Balance,
		Entries: entries,
		Payout: PayoutDTO{
			Earned:   p.Earned,
			Shekels:  p.Shekels,
			Bonus:    p.Bonus,
			Progress: p.Progress,
			Message:  p.Message,
		},
		Gate: gate,
	}
}

func toActionDTO(a ledger.Action) *ActionDTO {
	dto := &ActionDTO{
		Kind:        string(a.Kind),
		Description: a.Description,
		Date:        a.Date,
		Points:      a.Delta,
	}
	if a.Kind == ledger.ActionEdit || a.Kind == ledger.ActionDelete {
		index := a.Index
		dto.Index = &index
	}
	return dto
}

func toGateDTO(state ledger.GateState, pending ledger.Action, ok bool) GateDTO {
	dto := GateDTO{State: string(state)}
	if ok {
		dto.Pending = toActionDTO(pending)
	}
	return dto
}

func toCatalogDTO(c rewards.Catalog) CatalogDTO {
	dto := CatalogDTO{
		EntryTypes: make([]string, 0, len(rewards.EntryTypes)),
		Subjects:   make([]ThresholdDTO, 0, len(c.Subjects)),
		Deductions: toItemDTOs(c.Deductions),
		Bonuses:    toItemDTOs(c.Bonuses),
	}
	for _, et := range rewards.EntryTypes {
		dto.EntryTypes = append(dto.EntryTypes, string(et))
	}
	for _, t := range c.Subjects {
		dto.Subjects = append(dto.Subjects, ThresholdDTO{Subject: t.Subject, Min: t.Min, Target: t.Target})
	}
	return dto
}

func toItemDTOs(items []rewards.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, ItemDTO{Label: it.Label, Points: it.Points, Category: string(it.Category)})
	}
	return out
}
