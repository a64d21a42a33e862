// Package catalog defines the expected item sets per SEC form type. A catalog
// is immutable after construction and safe for concurrent readers.
package catalog

import (
	"fmt"
	"strings"
)

// Item is one expected section of a form.
type Item struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Catalog is the ordered expected-item set for one form type.
type Catalog struct {
	form  string
	items []Item
	index map[string]int
}

// New builds a catalog from an ordered item list. Item ids are upper-cased so
// lookups match the normalized labels the engine produces.
func New(form string, items []Item) *Catalog {
	c := &Catalog{
		form:  strings.ToUpper(strings.TrimSpace(form)),
		items: make([]Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, it := range items {
		id := strings.ToUpper(strings.TrimSpace(it.ID))
		if id == "" {
			continue
		}
		if _, dup := c.index[id]; dup {
			continue
		}
		c.index[id] = len(c.items)
		c.items = append(c.items, Item{ID: id, Title: strings.TrimSpace(it.Title)})
	}
	return c
}

// Form returns the form type this catalog describes.
func (c *Catalog) Form() string { return c.form }

// InScope reports whether an item id belongs to the form.
func (c *Catalog) InScope(itemID string) bool {
	_, ok := c.index[strings.ToUpper(itemID)]
	return ok
}

// Title returns the canonical title for an item id, "" if unknown.
func (c *Catalog) Title(itemID string) string {
	i, ok := c.index[strings.ToUpper(itemID)]
	if !ok {
		return ""
	}
	return c.items[i].Title
}

// Items returns a copy of the ordered item list.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of expected items.
func (c *Catalog) Len() int { return len(c.items) }

// ForForm returns the built-in catalog for a form type. Amendment suffixes
// ("10-K/A") resolve to their base form.
func ForForm(form string) (*Catalog, error) {
	base := strings.ToUpper(strings.TrimSpace(form))
	if i := strings.Index(base, "/"); i > 0 {
		base = base[:i]
	}
	switch base {
	case "10-K":
		return TenK(), nil
	case "10-Q":
		return TenQ(), nil
	}
	return nil, fmt.Errorf("no built-in catalog for form %q", form)
}

// TenK returns the annual report catalog.
func TenK() *Catalog {
	return New("10-K", []Item{
		{ID: "1", Title: "Business"},
		{ID: "1A", Title: "Risk Factors"},
		{ID: "1B", Title: "Unresolved Staff Comments"},
		{ID: "1C", Title: "Cybersecurity"},
		{ID: "2", Title: "Properties"},
		{ID: "3", Title: "Legal Proceedings"},
		{ID: "4", Title: "Mine Safety Disclosures"},
		{ID: "5", Title: "Market for Registrant's Common Equity, Related Stockholder Matters and Issuer Purchases of Equity Securities"},
		{ID: "6", Title: "Selected Financial Data"},
		{ID: "7", Title: "Management's Discussion and Analysis of Financial Condition and Results of Operations"},
		{ID: "7A", Title: "Quantitative and Qualitative Disclosures About Market Risk"},
		{ID: "8", Title: "Financial Statements and Supplementary Data"},
		{ID: "9", Title: "Changes in and Disagreements with Accountants on Accounting and Financial Disclosure"},
		{ID: "9A", Title: "Controls and Procedures"},
		{ID: "9B", Title: "Other Information"},
		{ID: "9C", Title: "Disclosure Regarding Foreign Jurisdictions that Prevent Inspections"},
		{ID: "10", Title: "Directors, Executive Officers and Corporate Governance"},
		{ID: "11", Title: "Executive Compensation"},
		{ID: "12", Title: "Security Ownership of Certain Beneficial Owners and Management and Related Stockholder Matters"},
		{ID: "13", Title: "Certain Relationships and Related Transactions, and Director Independence"},
		{ID: "14", Title: "Principal Accountant Fees and Services"},
		{ID: "15", Title: "Exhibits and Financial Statement Schedules"},
		{ID: "16", Title: "Form 10-K Summary"},
	})
}

// TenQ returns the quarterly report catalog. Ids that repeat across the two
// parts of a 10-Q are carried once with their Part II reading.
func TenQ() *Catalog {
	return New("10-Q", []Item{
		{ID: "1", Title: "Financial Statements"},
		{ID: "1A", Title: "Risk Factors"},
		{ID: "2", Title: "Management's Discussion and Analysis of Financial Condition and Results of Operations"},
		{ID: "3", Title: "Quantitative and Qualitative Disclosures About Market Risk"},
		{ID: "4", Title: "Controls and Procedures"},
		{ID: "5", Title: "Other Information"},
		{ID: "6", Title: "Exhibits"},
	})
}
