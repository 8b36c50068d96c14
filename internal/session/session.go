// Package session holds the ephemeral per-user conversation state. Nothing
// here is persisted: a restart drops every in-flight dialogue.
package session

import (
	"sync"

	"github.com/SM-TRIBE/bot/internal/discovery"
	"github.com/SM-TRIBE/bot/internal/models"
)

// Kind tags the active multi-turn flow of a session.
type Kind int

const (
	KindWizard Kind = iota + 1
	KindEditField
	KindSearch
	KindGift
	KindReport
	KindBroadcast
	KindGrant
	KindAdminPrompt
)

// WizardStep is the cursor of the profile-creation wizard.
type WizardStep int

const (
	StepName WizardStep = iota
	StepAge
	StepGender
	StepCity
	StepInterests
	StepPhotos
)

// SearchStep is the cursor of the criteria-collection dialogue.
type SearchStep int

const (
	SearchStepGender SearchStep = iota
	SearchStepAge
	SearchStepInterests
)

// GiftStep is the cursor of the two-step gift flow plus confirmation.
type GiftStep int

const (
	GiftStepRecipient GiftStep = iota
	GiftStepAmount
	GiftStepConfirm
)

// GrantStep is the cursor of the admin coin-grant flow.
type GrantStep int

const (
	GrantStepTarget GrantStep = iota
	GrantStepAmount
)

// Prompt identifies which single-input admin prompt is pending.
type Prompt int

const (
	PromptLookup Prompt = iota + 1
	PromptBan
	PromptUnban
	PromptPromote
	PromptDemote
)

// WizardState carries the in-progress profile draft.
type WizardState struct {
	Step  WizardStep
	Draft *models.User
}

// EditState carries a single-field profile edit.
type EditState struct {
	Field string
	// Photos is set when re-collecting photos; inbound photos append here
	// until the user finishes.
	Photos []string
}

// SearchState carries the criteria gathered so far.
type SearchState struct {
	Step     SearchStep
	Criteria discovery.Criteria
}

// GiftState carries the pending peer-to-peer transfer.
type GiftState struct {
	Step        GiftStep
	RecipientID int64
	Amount      int64
}

// ReportState carries the target the reason is being collected for.
type ReportState struct {
	TargetID int64
}

// GrantState carries the pending admin coin grant.
type GrantState struct {
	Step     GrantStep
	TargetID int64
}

// AdminPromptState carries which one-input admin prompt is open.
type AdminPromptState struct {
	Prompt Prompt
}

// Session is the per-user dialogue state. Exactly one payload matching
// Kind is populated.
type Session struct {
	Kind   Kind
	Wizard *WizardState
	Edit   *EditState
	Search *SearchState
	Gift   *GiftState
	Report *ReportState
	Grant  *GrantState
	Admin  *AdminPromptState
}

// Registry stores sessions keyed by user id. It is safe for concurrent use
// since every webhook update runs on its own goroutine.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[int64]*Session)}
}

// Get returns the open session for userID, if any.
func (r *Registry) Get(userID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Set opens or replaces the session for userID.
func (r *Registry) Set(userID int64, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = s
}

// Clear drops the session for userID, if any.
func (r *Registry) Clear(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}
