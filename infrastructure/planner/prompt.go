package planner

import (
	"encoding/json"
	"strings"

	"github.com/felixgeelhaar/sgr-go/domain/record"
)

// systemPromptHeader is the fixed part of the business assistant preamble.
const systemPromptHeader = `You're a business assistant helping Anton with customer interactions.

- Clearly report when tasks are done
- Always send customer emails after issuing invoices (with invoices attached)
- Be concise, especially in the emails
- No need for payment confirmation before processing
- Always check customer data before issuing invoices or making changes`

type promptProduct struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// SystemPrompt builds the preamble that seeds every run, listing the catalog
// keyed by SKU. A non-blank override replaces the instructions; the catalog
// listing is always appended.
func SystemPrompt(override string, products []record.Product) string {
	header := systemPromptHeader
	if strings.TrimSpace(override) != "" {
		header = strings.TrimSpace(override)
	}

	catalog := make(map[string]promptProduct, len(products))
	for _, p := range products {
		catalog[p.SKU] = promptProduct{Name: p.Name, Price: p.Price}
	}
	// map keys are sorted by encoding/json
	listing, err := json.Marshal(catalog)
	if err != nil {
		listing = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\nProducts: ")
	sb.Write(listing)
	return sb.String()
}
