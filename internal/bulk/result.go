package bulk

import (
	"asset-management-api/internal/metrics"
	"fmt"
)

// Result is the aggregated outcome of a bulk action. Errors and FailedIDs
// are index-aligned and keep the order of the selection.
type Result struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	Succeeded      int      `json:"succeeded"`
	Failed         int      `json:"failed"`
	Errors         []string `json:"errors"`
	ClearSelection bool     `json:"clearSelection"`
	FailedIDs      []string `json:"failedIds"`
}

// Outcome classifies the result as a metrics label.
func (r Result) Outcome() string {
	switch {
	case r.Failed == 0:
		return metrics.OutcomeSuccess
	case r.Succeeded > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeFailure
	}
}

// itemOutcome is the settled result of one per-asset task.
type itemOutcome struct {
	assetID string
	message string
	failed  bool
}

// phrasing holds the words used to describe an action in result messages.
type phrasing struct {
	past string
	verb string
}

func phrasingFor(kind ActionKind) phrasing {
	switch kind {
	case ActionAssign:
		return phrasing{past: "assigned", verb: "assign"}
	case ActionUnassign:
		return phrasing{past: "unassigned", verb: "unassign"}
	case ActionCheckOut:
		return phrasing{past: "checked out", verb: "check out"}
	case ActionCheckIn:
		return phrasing{past: "checked in", verb: "check in"}
	case ActionChangeStatus:
		return phrasing{past: "updated", verb: "update"}
	case ActionScheduleMaintenance:
		return phrasing{past: "scheduled for maintenance", verb: "schedule maintenance for"}
	case ActionSell:
		return phrasing{past: "sold", verb: "sell"}
	case ActionRetire:
		return phrasing{past: "retired", verb: "retire"}
	case ActionDelete:
		return phrasing{past: "deleted", verb: "delete"}
	default:
		return phrasing{past: "processed", verb: "process"}
	}
}

// aggregate folds settled item outcomes into a Result.
func aggregate(kind ActionKind, items []itemOutcome) Result {
	res := Result{Errors: []string{}, FailedIDs: []string{}}
	for _, item := range items {
		if item.failed {
			res.Failed++
			res.Errors = append(res.Errors, item.message)
			res.FailedIDs = append(res.FailedIDs, item.assetID)
			continue
		}
		res.Succeeded++
	}

	words := phrasingFor(kind)
	switch {
	case res.Failed == 0:
		res.Message = fmt.Sprintf("Assets %s successfully", words.past)
	case res.Succeeded > 0:
		res.Message = fmt.Sprintf("%d %s %s successfully, %d failed", res.Succeeded, assetNoun(res.Succeeded), words.past, res.Failed)
	default:
		res.Message = fmt.Sprintf("Failed to %s assets", words.verb)
	}
	res.Success = res.Succeeded > 0
	res.ClearSelection = res.Failed == 0
	return res
}

func assetNoun(n int) string {
	if n == 1 {
		return "asset"
	}
	return "assets"
}
