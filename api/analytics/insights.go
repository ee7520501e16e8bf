package analytics

import "fmt"

// Insight is an advisory message derived from the computed metrics.
type Insight struct {
	Category    string `json:"category"`
	Type        string `json:"type"` // success | warning | info
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// Analytics is the metrics section of the payload; the insight rules read it.
type Analytics struct {
	Tasks         TaskMetrics         `json:"tasks"`
	Revenue       RevenueMetrics      `json:"revenue"`
	CRM           CRMMetrics          `json:"crm"`
	Finance       FinanceMetrics      `json:"finance"`
	Performance   PerformanceMetrics  `json:"performance"`
	Notifications NotificationMetrics `json:"notifications"`
	Time          TimeMetrics         `json:"time"`
}

// insightRule pairs a predicate with the insight it emits. Rules are evaluated
// in order, independently, and never short-circuit: several can fire at once.
type insightRule struct {
	when  func(a Analytics) bool
	build func(a Analytics) Insight
}

var insightRules = []insightRule{
	{
		when: func(a Analytics) bool { return a.Tasks.Total > 0 && a.Tasks.CompletionRate >= 80 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "tasks", Type: "success", Priority: 3,
				Title:       "Strong task completion",
				Description: fmt.Sprintf("You completed %d%% of your tasks this period. Keep it up.", a.Tasks.CompletionRate),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.Tasks.Total > 0 && a.Tasks.CompletionRate < 50 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "tasks", Type: "warning", Priority: 1,
				Title:       "Task completion is lagging",
				Description: fmt.Sprintf("Only %d%% of tasks were completed. Consider breaking work into smaller items.", a.Tasks.CompletionRate),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.CRM.TotalDeals > 0 && a.CRM.ConversionRate < 10 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "crm", Type: "warning", Priority: 1,
				Title:       "Low deal conversion",
				Description: fmt.Sprintf("Conversion rate is %d%%. Review pipeline qualification criteria.", a.CRM.ConversionRate),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.CRM.TotalDeals > 0 && a.CRM.ConversionRate >= 40 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "crm", Type: "success", Priority: 3,
				Title:       "Healthy conversion rate",
				Description: fmt.Sprintf("%d%% of deals closed won this period.", a.CRM.ConversionRate),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.CRM.PipelineValue > 0 && a.CRM.PipelineValue > a.Revenue.Total*2 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "crm", Type: "info", Priority: 2,
				Title:       "Large open pipeline",
				Description: fmt.Sprintf("Open pipeline value is %.2f, more than twice the period revenue.", a.CRM.PipelineValue),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.Finance.TotalInvoices > 0 && a.Finance.PaymentCompletionRate < 50 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "finance", Type: "warning", Priority: 1,
				Title:       "Invoices going unpaid",
				Description: fmt.Sprintf("Only %d%% of invoices are paid; %.2f is outstanding.", a.Finance.PaymentCompletionRate, a.Finance.OutstandingAmount),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.Finance.OverdueInvoices > 0 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "finance", Type: "warning", Priority: 2,
				Title:       "Overdue invoices",
				Description: fmt.Sprintf("%d invoice(s) are past due. Consider sending reminders.", a.Finance.OverdueInvoices),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.Performance.ProductivityScore >= 75 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "performance", Type: "success", Priority: 3,
				Title:       "High productivity score",
				Description: fmt.Sprintf("Productivity score is %d/100 for this period.", a.Performance.ProductivityScore),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.Performance.CurrentStreak >= 7 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "performance", Type: "info", Priority: 3,
				Title:       "Streak milestone",
				Description: fmt.Sprintf("You are on a %d-day activity streak.", a.Performance.CurrentStreak),
			}
		},
	},
	{
		when: func(a Analytics) bool { return a.Notifications.Unread > 20 },
		build: func(a Analytics) Insight {
			return Insight{
				Category: "notifications", Type: "info", Priority: 4,
				Title:       "Unread notifications piling up",
				Description: fmt.Sprintf("%d notifications are unread.", a.Notifications.Unread),
			}
		},
	},
}

// GenerateInsights evaluates the full rule table against the metrics and returns
// every insight that fires, in rule order.
func GenerateInsights(a Analytics) []Insight {
	out := []Insight{}
	for _, rule := range insightRules {
		if rule.when(a) {
			out = append(out, rule.build(a))
		}
	}
	return out
}
