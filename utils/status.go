// utils/status.go - Status transition tables for the workflow engine.
package utils

import (
	"fmt"

	"talenthub-api/models"
)

// Transition tables. A status maps to the set of statuses it may move
// to. Self-loops are listed only where re-issuing the same transition is
// an intentional idempotent no-op (application shortlist/reject).
var (
	applicationTransitions = map[string][]string{
		models.ApplicationStatusSubmitted: {
			models.ApplicationStatusShortlisted,
			models.ApplicationStatusRejected,
		},
		models.ApplicationStatusShortlisted: {
			models.ApplicationStatusShortlisted,
			models.ApplicationStatusRejected,
			models.ApplicationStatusAwarded,
		},
		models.ApplicationStatusRejected: {
			models.ApplicationStatusRejected,
		},
		models.ApplicationStatusAwarded: {},
	}

	submissionTransitions = map[string][]string{
		models.SubmissionStatusSubmitted: {
			models.SubmissionStatusSelected,
			models.SubmissionStatusRejected,
		},
		models.SubmissionStatusSelected: {},
		models.SubmissionStatusRejected: {},
	}

	compensationTransitions = map[string][]string{
		models.CompensationStatusPending: {
			models.CompensationStatusApproved,
		},
		models.CompensationStatusApproved: {
			models.CompensationStatusPaid,
		},
		models.CompensationStatusPaid: {},
	}

	projectTransitions = map[string][]string{
		models.ProjectStatusOpen: {
			models.ProjectStatusInProgress,
			models.ProjectStatusClosed,
		},
		models.ProjectStatusInProgress: {
			models.ProjectStatusCompleted,
			models.ProjectStatusClosed,
		},
		models.ProjectStatusCompleted: {},
		models.ProjectStatusClosed:    {},
	}
)

func canTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ensureTransition(entity string, table map[string][]string, from, to string) error {
	if _, known := table[from]; !known {
		return InvalidStateError(fmt.Sprintf("Unknown %s status %q", entity, from))
	}
	if !canTransition(table, from, to) {
		return InvalidStateError(fmt.Sprintf("Cannot move %s from %q to %q", entity, from, to))
	}
	return nil
}

// EnsureApplicationTransition validates an application status change.
func EnsureApplicationTransition(from, to string) error {
	return ensureTransition("application", applicationTransitions, from, to)
}

// EnsureSubmissionTransition validates a submission status change.
func EnsureSubmissionTransition(from, to string) error {
	return ensureTransition("submission", submissionTransitions, from, to)
}

// EnsureCompensationTransition validates a compensation status change.
// The winner path creates compensations directly at approved, so this
// only guards updates of existing rows.
func EnsureCompensationTransition(from, to string) error {
	return ensureTransition("compensation", compensationTransitions, from, to)
}

// EnsureProjectTransition validates a project status change.
func EnsureProjectTransition(from, to string) error {
	return ensureTransition("project", projectTransitions, from, to)
}

// IsApplicationSelfLoop reports whether from == to is an allowed
// idempotent re-issue rather than an illegal transition.
func IsApplicationSelfLoop(from, to string) bool {
	return from == to && canTransition(applicationTransitions, from, to)
}
