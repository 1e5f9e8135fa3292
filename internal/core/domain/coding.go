package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MatchCondition evaluates an auto-coding rule condition against a document.
// Supported forms (case-insensitive, whitespace-tolerant):
//
//	always
//	amount < N | amount <= N | amount > N | amount >= N
//	contains: TEXT      (substring match over line item descriptions)
//
// Unknown expressions never match, so a typo cannot silently miscode a bill.
func MatchCondition(cond string, doc Document) bool {
	expr := strings.ToLower(strings.TrimSpace(cond))
	if expr == "" {
		return false
	}
	if expr == "always" {
		return true
	}

	if text, ok := strings.CutPrefix(expr, "contains:"); ok {
		needle := strings.TrimSpace(text)
		if needle == "" {
			return false
		}
		for _, li := range doc.LineItems {
			if strings.Contains(strings.ToLower(li.Description), needle) {
				return true
			}
		}
		return false
	}

	if rest, ok := strings.CutPrefix(expr, "amount"); ok {
		rest = strings.TrimSpace(rest)
		for _, op := range []string{"<=", ">=", "<", ">"} {
			val, found := strings.CutPrefix(rest, op)
			if !found {
				continue
			}
			val = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(val), "$"))
			limit, err := decimal.NewFromString(strings.ReplaceAll(val, ",", ""))
			if err != nil {
				return false
			}
			switch op {
			case "<":
				return doc.Amount.LessThan(limit)
			case "<=":
				return doc.Amount.LessThanOrEqual(limit)
			case ">":
				return doc.Amount.GreaterThan(limit)
			case ">=":
				return doc.Amount.GreaterThanOrEqual(limit)
			}
		}
	}
	return false
}

// ApplyAutoCoding walks the vendor's rules in declared order and returns the
// GL account and cost center of the first enabled match.
func ApplyAutoCoding(vendor Vendor, doc Document) (glAccount, costCenter string, matched bool) {
	for _, rule := range vendor.AutoCodingRules {
		if !rule.Enabled {
			continue
		}
		if MatchCondition(rule.Condition, doc) {
			return rule.GLAccount, rule.CostCenter, true
		}
	}
	return "", "", false
}
