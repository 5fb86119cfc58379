package schema

import (
	"fmt"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/agent"
)

// NextStepName is the schema name sent with structured-output requests.
const NextStepName = "nextstep"

// NextStep generates the decision schema: a task restatement, a short plan,
// a completion flag and exactly one action from the catalog.
func NextStep() *JSONSchema {
	variants := make([]*JSONSchema, 0, len(action.Kinds()))
	for _, k := range action.Kinds() {
		variants = append(variants, Action(k))
	}

	return &JSONSchema{
		Title: "NextStep",
		Type:  "object",
		Properties: map[string]*JSONSchema{
			"current_task": {
				Type:        "string",
				Description: "Restatement of the task being worked on",
			},
			"plan_remaining_steps_brief": {
				Type:        "array",
				Description: "Remaining steps, first one is executed now",
				Items:       &JSONSchema{Type: "string"},
				MinItems:    IntPtr(agent.MinPlanSteps),
				MaxItems:    IntPtr(agent.MaxPlanSteps),
			},
			"task_completed": {
				Type:        "boolean",
				Description: "Whether the task is done",
			},
			"function": {
				Description: "Execute first remaining step",
				AnyOf:       variants,
			},
		},
		Required: []string{"current_task", "plan_remaining_steps_brief", "task_completed", "function"},
	}
}

// Action generates the schema of one catalog variant.
func Action(kind action.Kind) *JSONSchema {
	s := &JSONSchema{
		Type:       "object",
		Properties: map[string]*JSONSchema{"tool": {Type: "string", Enum: []string{kind.String()}}},
		Required:   append([]string{"tool"}, action.RequiredFields(kind)...),
	}

	str := func(desc string) *JSONSchema { return &JSONSchema{Type: "string", Description: desc} }
	list := func(desc string) *JSONSchema {
		return &JSONSchema{Type: "array", Description: desc, Items: &JSONSchema{Type: "string"}}
	}

	switch kind {
	case action.KindSendEmail:
		s.Title = "SendEmail"
		s.Description = "Sends an email to a customer"
		s.Properties["subject"] = str("")
		s.Properties["message"] = str("")
		s.Properties["files"] = list("Invoice file paths to attach")
		s.Properties["recipient_email"] = str("")
	case action.KindGetCustomerData:
		s.Title = "GetCustomerData"
		s.Description = "Gets customer data from our DB"
		s.Properties["email"] = str("")
	case action.KindIssueInvoice:
		s.Title = "IssueInvoice"
		s.Description = "Issues invoice for the customer and specific skus"
		s.Properties["email"] = str("")
		s.Properties["skus"] = &JSONSchema{
			Type:     "array",
			Items:    &JSONSchema{Type: "string"},
			MinItems: IntPtr(1),
		}
		s.Properties["discount_percent"] = &JSONSchema{
			Type:        "integer",
			Description: fmt.Sprintf("never more than %d%%", action.MaxDiscountPercent),
			Minimum:     FloatPtr(0),
			Maximum:     FloatPtr(action.MaxDiscountPercent),
		}
	case action.KindCancelInvoice:
		s.Title = "CancelInvoice"
		s.Description = "Cancels invoice with provided reason"
		s.Properties["invoice_id"] = str("")
		s.Properties["reason"] = str("")
	case action.KindCreateRule:
		s.Title = "CreateRule"
		s.Description = "Saves a custom rule for interacting with a customer"
		s.Properties["email"] = str("")
		s.Properties["rule"] = str("")
	case action.KindReportCompletion:
		s.Title = "ReportTaskCompletion"
		s.Description = "Ends the task"
		s.Properties["completed_steps_laconic"] = list("")
		s.Properties["code"] = &JSONSchema{
			Type: "string",
			Enum: []string{string(action.OutcomeCompleted), string(action.OutcomeFailed)},
		}
	}
	return s
}

// NextStepMap returns the decision schema in generic form, optionally strict.
func NextStepMap(strict bool) (map[string]any, error) {
	m, err := NextStep().Map()
	if err != nil {
		return nil, err
	}
	if strict {
		return Strict(m), nil
	}
	return m, nil
}
