package domain_test

import (
	"testing"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMatchCondition(t *testing.T) {
	doc := domain.Document{
		Amount: decimal.RequireFromString("450.00"),
		LineItems: []domain.LineItem{
			{Description: "Monthly Cloud Hosting"},
			{Description: "Support retainer"},
		},
	}

	tests := []struct {
		name string
		cond string
		want bool
	}{
		{"always matches", "always", true},
		{"amount below limit", "amount < $500", true},
		{"amount above limit", "amount > 500", false},
		{"amount lte boundary", "amount <= 450", true},
		{"amount gte boundary", "amount >= 450.00", true},
		{"thousands separator", "amount < 1,000", true},
		{"contains line item text", "contains: hosting", true},
		{"contains miss", "contains: freight", false},
		{"empty never matches", "", false},
		{"garbage never matches", "vendor is nice", false},
		{"bad number never matches", "amount < abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.MatchCondition(tt.cond, doc))
		})
	}
}

func TestApplyAutoCoding_FirstEnabledMatchWins(t *testing.T) {
	doc := domain.Document{Amount: decimal.RequireFromString("120.00")}
	vendor := domain.Vendor{
		AutoCodingRules: []domain.AutoCodingRule{
			{Condition: "amount < 100", GLAccount: "6000", Enabled: true, RuleOrder: 1},
			{Condition: "amount < 500", GLAccount: "6100", CostCenter: "OPS", Enabled: false, RuleOrder: 2},
			{Condition: "amount < 500", GLAccount: "6200", CostCenter: "ADMIN", Enabled: true, RuleOrder: 3},
			{Condition: "always", GLAccount: "6999", Enabled: true, RuleOrder: 4},
		},
	}

	gl, cc, ok := domain.ApplyAutoCoding(vendor, doc)
	assert.True(t, ok)
	assert.Equal(t, "6200", gl)
	assert.Equal(t, "ADMIN", cc)
}

func TestApplyAutoCoding_NoMatch(t *testing.T) {
	doc := domain.Document{Amount: decimal.RequireFromString("120.00")}
	vendor := domain.Vendor{
		AutoCodingRules: []domain.AutoCodingRule{
			{Condition: "amount > 1000", GLAccount: "6000", Enabled: true},
		},
	}

	_, _, ok := domain.ApplyAutoCoding(vendor, doc)
	assert.False(t, ok)
}
