package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// requiredFields lists the payload keys every encoded action must carry.
var requiredFields = map[Kind][]string{
	KindSendEmail:        {"subject", "message", "files", "recipient_email"},
	KindGetCustomerData:  {"email"},
	KindIssueInvoice:     {"email", "skus", "discount_percent"},
	KindCancelInvoice:    {"invoice_id", "reason"},
	KindCreateRule:       {"email", "rule"},
	KindReportCompletion: {"completed_steps_laconic", "code"},
}

// RequiredFields returns the payload keys for a kind, excluding the tool tag.
func RequiredFields(kind Kind) []string {
	fields := requiredFields[kind]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Decode parses an encoded action, dispatching on its "tool" tag.
// Structural mismatches (unknown tag, unknown or missing fields, wrong types)
// return an error wrapping ErrDecode. Field constraints are not checked here;
// call Validate on the result.
func Decode(raw []byte) (Action, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: action is not a JSON object: %v", ErrDecode, err)
	}

	tagRaw, ok := fields["tool"]
	if !ok {
		return nil, fmt.Errorf("%w: action has no tool tag", ErrDecode)
	}
	var kind Kind
	if err := json.Unmarshal(tagRaw, &kind); err != nil {
		return nil, fmt.Errorf("%w: tool tag must be a string", ErrDecode)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrDecode, ErrUnknownKind, kind)
	}
	delete(fields, "tool")

	var missing []string
	for _, name := range requiredFields[kind] {
		if v, ok := fields[name]; !ok || string(v) == "null" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s missing fields: %s", ErrDecode, kind, strings.Join(missing, ", "))
	}

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch kind {
	case KindSendEmail:
		return decodeStrict[SendEmail](kind, body)
	case KindGetCustomerData:
		return decodeStrict[GetCustomerData](kind, body)
	case KindIssueInvoice:
		return decodeStrict[IssueInvoice](kind, body)
	case KindCancelInvoice:
		return decodeStrict[CancelInvoice](kind, body)
	case KindCreateRule:
		return decodeStrict[CreateRule](kind, body)
	case KindReportCompletion:
		return decodeStrict[ReportCompletion](kind, body)
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrDecode, ErrUnknownKind, kind)
	}
}

func decodeStrict[T Action](kind Kind, body []byte) (Action, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, kind, err)
	}
	return v, nil
}
