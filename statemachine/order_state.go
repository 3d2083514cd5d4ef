package statemachine

import (
	"errors"
	"fmt"
	"strings"

	"food-ordering-api/models"
)

// Policy selects how strictly status changes are checked
type Policy string

const (
	// Permissive accepts any valid status after any other.
	Permissive Policy = "permissive"
	// Strict only accepts the forward transitions declared below.
	Strict Policy = "strict"
)

// ErrInvalidTransition is returned when a transition is not allowed under the active policy.
var ErrInvalidTransition = errors.New("invalid status transition")

// Transition defines a valid state change
type Transition struct {
	From models.OrderStatus `json:"from"`
	To   models.OrderStatus `json:"to"`
}

// forwardTransitions is the authoritative kitchen lifecycle
var forwardTransitions = []Transition{
	// Kitchen starts working on the order
	{From: models.StatusPending, To: models.StatusPreparing},
	{From: models.StatusPending, To: models.StatusCancelled},
	// Food is ready for pickup or delivery
	{From: models.StatusPreparing, To: models.StatusReady},
	{From: models.StatusPreparing, To: models.StatusCancelled},
	// Handed over to the customer
	{From: models.StatusReady, To: models.StatusCompleted},
	{From: models.StatusReady, To: models.StatusCancelled},
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool)
	for _, t := range forwardTransitions {
		m[t] = true
	}
	return m
}()

// ParsePolicy turns a config value into a Policy. Empty means Permissive.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", Permissive:
		return Permissive, nil
	case Strict:
		return Strict, nil
	}
	return "", fmt.Errorf("unknown order status policy %q", s)
}

// Machine validates order status changes under a policy
type Machine struct {
	policy Policy
}

func New(policy Policy) *Machine {
	if policy != Strict {
		policy = Permissive
	}
	return &Machine{policy: policy}
}

func (m *Machine) Policy() Policy { return m.policy }

// CanTransition checks whether an order may move from one state to another
func (m *Machine) CanTransition(from, to models.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if m.policy == Permissive {
		return nil
	}
	if transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("%w: %s → %s is not allowed. Valid transitions from %s are: %s",
		ErrInvalidTransition, from, to, from, describeValidFrom(m.ValidTransitionsFrom(from)))
}

// ValidTransitionsFrom returns all valid next states from a given state
func (m *Machine) ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	if m.policy == Permissive {
		return append([]models.OrderStatus(nil), models.OrderStatuses...)
	}
	var nexts []models.OrderStatus
	for _, t := range forwardTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// Transitions returns the declared table for documentation
func (m *Machine) Transitions() []Transition {
	if m.policy == Permissive {
		all := make([]Transition, 0, len(models.OrderStatuses)*len(models.OrderStatuses))
		for _, from := range models.OrderStatuses {
			for _, to := range models.OrderStatuses {
				all = append(all, Transition{From: from, To: to})
			}
		}
		return all
	}
	return append([]Transition(nil), forwardTransitions...)
}

// TerminalStates returns states with no outgoing transitions under the policy
func (m *Machine) TerminalStates() []models.OrderStatus {
	var terminal []models.OrderStatus
	for _, s := range models.OrderStatuses {
		if len(m.ValidTransitionsFrom(s)) == 0 {
			terminal = append(terminal, s)
		}
	}
	return terminal
}

func describeValidFrom(nexts []models.OrderStatus) string {
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
