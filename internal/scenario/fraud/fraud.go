// Package fraud is the outbound fraud-verification demo: the agent pulls up
// the customer's pending case, verifies identity against the security
// question, and resolves the case one way.
package fraud

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"parley/agent/internal/casedb"
	"parley/agent/internal/tools"
)

type Facade struct {
	db *casedb.Store
	ui tools.Notifier

	mu       sync.Mutex
	current  *casedb.Case
	verified bool
}

func New(db *casedb.Store, ui tools.Notifier) *Facade {
	if ui == nil {
		ui = tools.NopNotifier{}
	}
	return &Facade{db: db, ui: ui}
}

func (f *Facade) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "lookup_case",
			Description: "Find the customer's fraud case. Args: phone_identity (the caller id) or name.",
			Handler:     f.lookupCase,
		},
		{
			Name:        "verify_identity",
			Description: "Check the customer's answer to the security question. Args: answer.",
			Handler:     f.verifyIdentity,
		},
		{
			Name:        "resolve_case",
			Description: "Resolve the case. Args: decision (confirmed_safe, confirmed_fraud, or verification_failed), note.",
			Handler:     f.resolveCase,
		},
	}
}

func (f *Facade) lookupCase(ctx context.Context, args map[string]any) tools.Result {
	var (
		c   casedb.Case
		err error
	)
	if identity, ok := tools.String(args, "phone_identity"); ok {
		c, err = f.db.CaseByPhone(identity)
	} else if name, ok := tools.String(args, "name"); ok {
		c, err = f.db.CaseByName(name)
	} else {
		return tools.Incomplete("I need the caller id or the customer's name to look up a case.")
	}
	if errors.Is(err, casedb.ErrCaseNotFound) {
		return tools.NotFound("No fraud case on file for this customer.")
	}
	if err != nil {
		log.Printf("fraud: lookup case: %v", err)
		return tools.Failed("The case system is unavailable right now.")
	}

	f.mu.Lock()
	f.current = &c
	f.verified = false
	f.mu.Unlock()

	f.ui.Broadcast(ctx, "case_loaded", map[string]any{"customer_id": c.CustomerID, "status": c.Status})
	return tools.OK(
		"Case for %s: $%s charge at %s, %s, %s, card ending %s, status %s. Security question: %s",
		c.Name, strings.TrimPrefix(c.Amount, "$"), c.Merchant, c.Location, c.Timestamp,
		c.CardLast4, c.Status, c.SecurityQuestion).
		WithData(map[string]any{"customer_id": c.CustomerID})
}

func (f *Facade) verifyIdentity(ctx context.Context, args map[string]any) tools.Result {
	answer, ok := tools.String(args, "answer")
	if !ok {
		return tools.Incomplete("What answer did the customer give?")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return tools.Incomplete("Look up the case before verifying identity.")
	}
	if strings.EqualFold(strings.TrimSpace(answer), f.current.SecurityAnswer) {
		f.verified = true
		return tools.OK("Identity verified. You may discuss the charge and resolve the case.")
	}
	return tools.Failed("That answer does not match. You may allow one retry or resolve the case as verification_failed.")
}

func (f *Facade) resolveCase(ctx context.Context, args map[string]any) tools.Result {
	decision, ok := tools.String(args, "decision")
	if !ok {
		return tools.Incomplete("I need a decision: confirmed_safe, confirmed_fraud, or verification_failed.")
	}
	note, ok := tools.String(args, "note")
	if !ok {
		return tools.Incomplete("Add a short note describing the call outcome.")
	}

	f.mu.Lock()
	current, verified := f.current, f.verified
	f.mu.Unlock()
	if current == nil {
		return tools.Incomplete("Look up the case before resolving it.")
	}
	// An unverified caller can only be recorded as a failed verification.
	if !verified && decision != casedb.StatusVerificationFailed {
		return tools.Failed("Identity is not verified; the only allowed resolution is verification_failed.")
	}

	err := f.db.Resolve(current.CustomerID, decision, note)
	switch {
	case errors.Is(err, casedb.ErrInvalidStatus):
		return tools.NotFound("%q is not a valid decision.", decision)
	case errors.Is(err, casedb.ErrAlreadyResolved):
		return tools.Failed("This case was already resolved and cannot change again.")
	case errors.Is(err, casedb.ErrCaseNotFound):
		return tools.NotFound("The case is no longer on file.")
	case err != nil:
		log.Printf("fraud: resolve case: %v", err)
		return tools.Failed("The case could not be updated. Apologize and end the call.")
	}

	f.ui.Broadcast(ctx, "case_resolved", map[string]any{
		"customer_id": current.CustomerID,
		"status":      decision,
	})
	return tools.OK("Case %s resolved as %s. Thank the customer and end the call.", current.CustomerID, decision)
}
