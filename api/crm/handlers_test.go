package crm

import (
	"testing"

	"FlowdeskSaas/api/constants"
)

func TestValidStage(t *testing.T) {
	for _, s := range pipelineStages {
		if !validStage(s) {
			t.Errorf("stage %q must be valid", s)
		}
	}
	if validStage("Discovery") {
		t.Error("unknown stage must be invalid")
	}
}

func TestTerminalStage(t *testing.T) {
	if !terminalStage(constants.StageClosedWon) || !terminalStage(constants.StageClosedLost) {
		t.Error("closed stages must be terminal")
	}
	for _, s := range []string{"Lead", "Qualified", "Proposal", "Negotiation"} {
		if terminalStage(s) {
			t.Errorf("stage %q must not be terminal", s)
		}
	}
}
