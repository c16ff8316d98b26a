package kb

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sharpchat/server/internal/business"
)

// Fingerprint computes a deterministic digest over the content-bearing field
// subset of a business record. Identifiers that never feed the embedding,
// credentials and timestamps are excluded so volatile churn does not trigger
// re-embedding. Serialization is sorted-key JSON, so the digest is stable
// across runs.
func Fingerprint(rec business.Record) string {
	faqs := make([]map[string]any, 0, len(rec.FAQs))
	for _, f := range rec.FAQs {
		faqs = append(faqs, map[string]any{"question": f.Question, "answer": f.Answer})
	}
	items := make([]map[string]any, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, map[string]any{"name": it.Name, "price": it.Price, "description": it.Description})
	}

	relevant := map[string]any{
		"business_id":            rec.BusinessID,
		"business_name":          rec.Name,
		"business_description":   rec.Description,
		"business_address":       rec.Address,
		"business_phone":         rec.Phone,
		"business_email_address": rec.PublicEmail,
		"business_category":      rec.Category,
		"business_open_hours":    rec.OpenHours,
		"business_open_days":     rec.OpenDays,
		"business_website":       rec.Website,
		"extra_information":      rec.ExtraInfo,
		"faqs":                   faqs,
		"items":                  items,
	}

	// encoding/json marshals map keys in sorted order
	b, _ := json.Marshal(relevant)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// RenderText converts a business record into the labeled profile text that
// gets embedded and later quoted back as grounding passages.
func RenderText(rec business.Record) string {
	var parts []string

	parts = append(parts, "Business Name: "+orNA(rec.Name))
	parts = append(parts, "Category: "+orNA(rec.Category))
	parts = append(parts, "Description: "+orNA(rec.Description))
	parts = append(parts, "Address: "+orNA(rec.Address))
	parts = append(parts, "Phone: "+orNA(rec.Phone))

	// only the public contact email, never the login email
	if rec.PublicEmail != "" {
		parts = append(parts, "Email: "+rec.PublicEmail)
	}
	if rec.Website != "" {
		parts = append(parts, "Website: "+rec.Website)
	}
	if rec.OpenHours != "" {
		parts = append(parts, "Open Hours: "+rec.OpenHours)
	}
	if rec.OpenDays != "" {
		parts = append(parts, "Open Days: "+rec.OpenDays)
	}
	if rec.ExtraInfo != "" {
		parts = append(parts, "Additional Info: "+rec.ExtraInfo)
	}

	if len(rec.FAQs) > 0 {
		parts = append(parts, "\nFrequently Asked Questions:")
		for _, faq := range rec.FAQs {
			parts = append(parts, "Q: "+faq.Question)
			parts = append(parts, "A: "+faq.Answer)
		}
	}

	if len(rec.Items) > 0 {
		parts = append(parts, "\nProducts/Services:")
		for _, item := range rec.Items {
			line := fmt.Sprintf("- %s (₦%s)", orNA(item.Name), formatNaira(item.Price))
			if item.Description != "" {
				line += ": " + item.Description
			}
			parts = append(parts, line)
		}
	}

	return strings.Join(parts, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// formatNaira renders a price with thousands separators and no decimals.
func formatNaira(price float64) string {
	s := strconv.FormatFloat(price, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
