package tasks

import (
	"testing"

	"FlowdeskSaas/api/constants"
)

func TestTransitionForwardPath(t *testing.T) {
	path := []string{
		constants.TaskStatusTodo,
		constants.TaskStatusInProgress,
		constants.TaskStatusReview,
		constants.TaskStatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		if !transitionAllowed(path[i], path[i+1]) {
			t.Errorf("transition %s -> %s must be allowed", path[i], path[i+1])
		}
	}
}

func TestTransitionBackwardSteps(t *testing.T) {
	if !transitionAllowed(constants.TaskStatusInProgress, constants.TaskStatusTodo) {
		t.Error("in_progress -> todo must be allowed")
	}
	if !transitionAllowed(constants.TaskStatusReview, constants.TaskStatusInProgress) {
		t.Error("review -> in_progress must be allowed")
	}
}

func TestTransitionRejected(t *testing.T) {
	cases := [][2]string{
		{constants.TaskStatusTodo, constants.TaskStatusCompleted},
		{constants.TaskStatusTodo, constants.TaskStatusReview},
		{constants.TaskStatusCompleted, constants.TaskStatusTodo},
		{constants.TaskStatusCompleted, constants.TaskStatusInProgress},
		{constants.TaskStatusInProgress, constants.TaskStatusCompleted},
	}
	for _, c := range cases {
		if transitionAllowed(c[0], c[1]) {
			t.Errorf("transition %s -> %s must be rejected", c[0], c[1])
		}
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	if transitionAllowed("archived", constants.TaskStatusTodo) {
		t.Error("unknown source status must reject all transitions")
	}
}
