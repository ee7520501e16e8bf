package analytics

import "testing"

func categories(insights []Insight) map[string]int {
	out := map[string]int{}
	for _, in := range insights {
		out[in.Category]++
	}
	return out
}

func TestGenerateInsightsHighCompletion(t *testing.T) {
	a := Analytics{Tasks: TaskMetrics{Total: 10, CompletionRate: 85}}
	insights := GenerateInsights(a)
	found := false
	for _, in := range insights {
		if in.Category == "tasks" && in.Type == "success" {
			found = true
		}
	}
	if !found {
		t.Errorf("completion rate 85 must fire the success rule, got %+v", insights)
	}
}

func TestGenerateInsightsNoTasksNoTaskRules(t *testing.T) {
	a := Analytics{Tasks: TaskMetrics{Total: 0, CompletionRate: 0}}
	for _, in := range GenerateInsights(a) {
		if in.Category == "tasks" {
			t.Errorf("no tasks must fire no task rules, got %+v", in)
		}
	}
}

func TestGenerateInsightsMultipleFire(t *testing.T) {
	a := Analytics{
		Tasks:   TaskMetrics{Total: 10, CompletionRate: 30},
		CRM:     CRMMetrics{TotalDeals: 20, ConversionRate: 5},
		Finance: FinanceMetrics{TotalInvoices: 4, PaymentCompletionRate: 25, OutstandingAmount: 900, OverdueInvoices: 2},
	}
	insights := GenerateInsights(a)
	cats := categories(insights)
	if cats["tasks"] != 1 || cats["crm"] != 1 || cats["finance"] != 2 {
		t.Errorf("expected 1 task, 1 crm, 2 finance insights; got %v (%+v)", cats, insights)
	}
	// warnings must all be present; evaluation never short-circuits
	if len(insights) != 4 {
		t.Errorf("expected 4 insights, got %d", len(insights))
	}
}

func TestGenerateInsightsRuleOrderStable(t *testing.T) {
	a := Analytics{
		Tasks:       TaskMetrics{Total: 10, CompletionRate: 90},
		Performance: PerformanceMetrics{ProductivityScore: 80, CurrentStreak: 10},
	}
	insights := GenerateInsights(a)
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}
	if insights[0].Category != "tasks" || insights[1].Category != "performance" || insights[2].Category != "performance" {
		t.Errorf("insights out of rule order: %+v", insights)
	}
}

func TestGenerateInsightsPipelineAndNotifications(t *testing.T) {
	a := Analytics{
		Revenue:       RevenueMetrics{Total: 100},
		CRM:           CRMMetrics{TotalDeals: 3, ConversionRate: 33, PipelineValue: 500},
		Notifications: NotificationMetrics{Total: 30, Unread: 25},
	}
	cats := categories(GenerateInsights(a))
	if cats["crm"] != 1 {
		t.Errorf("pipeline > 2x revenue must fire one crm insight, got %v", cats)
	}
	if cats["notifications"] != 1 {
		t.Errorf("25 unread must fire the notifications insight, got %v", cats)
	}
}
