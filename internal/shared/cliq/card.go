package cliq

import "fmt"

// AssignmentMessage builds the card sent when a design request is assigned.
func AssignmentMessage(requestID, assigneeName, customerName, priority string) *Message {
	if priority == "" {
		priority = "Medium"
	}
	return &Message{
		Text: fmt.Sprintf("Design Request *%s* has been assigned to *%s*.", requestID, assigneeName),
		Card: &Card{
			Title: "Design Request Assigned",
			Theme: "modern-inline",
		},
		Slides: []Slide{
			{
				Type: "table",
				Data: map[string]interface{}{
					"headers": []string{"Request", "Customer", "Priority"},
					"rows": [][]string{
						{requestID, customerName, priority},
					},
				},
			},
		},
	}
}

// OverdueRow is one overdue item, rendered in the daily alert and returned
// by the dashboard overdue endpoint.
type OverdueRow struct {
	ItemID     string `json:"item_id"`
	ItemCode   string `json:"item_code"`
	Stage      string `json:"stage"`
	DaysOpen   int    `json:"days_open"`
	AssignedTo string `json:"assigned_to"`
}

// OverdueMessage builds the daily overdue-items alert card.
func OverdueMessage(items []OverdueRow) *Message {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		assignee := it.AssignedTo
		if assignee == "" {
			assignee = "unassigned"
		}
		rows = append(rows, []string{
			it.ItemID, it.ItemCode, it.Stage, fmt.Sprintf("%d days", it.DaysOpen), assignee,
		})
	}
	return &Message{
		Text: fmt.Sprintf("*%d design items* are overdue (open for more than 7 days).", len(items)),
		Card: &Card{
			Title: "Overdue Design Items",
			Theme: "modern-inline",
		},
		Slides: []Slide{
			{
				Type: "table",
				Data: map[string]interface{}{
					"headers": []string{"Item", "Item Code", "Stage", "Open", "Assigned To"},
					"rows":    rows,
				},
			},
		},
	}
}
