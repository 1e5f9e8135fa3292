package domain_test

import (
	"testing"

	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from domain.DocumentStatus
		to   domain.DocumentStatus
		want bool
	}{
		{"pending review opened", domain.StatusPendingReview, domain.StatusInReview, true},
		{"pending review flagged", domain.StatusPendingReview, domain.StatusException, true},
		{"pending review rejected", domain.StatusPendingReview, domain.StatusRejected, true},
		{"pending review cannot skip to approval", domain.StatusPendingReview, domain.StatusPendingApproval, false},
		{"pending review cannot post directly", domain.StatusPendingReview, domain.StatusPosted, false},
		{"in review submitted", domain.StatusInReview, domain.StatusPendingApproval, true},
		{"in review auto-post path", domain.StatusInReview, domain.StatusPosted, true},
		{"in review cannot approve itself", domain.StatusInReview, domain.StatusApproved, false},
		{"approver accepts", domain.StatusPendingApproval, domain.StatusApproved, true},
		{"approver declines", domain.StatusPendingApproval, domain.StatusRejected, true},
		{"approver requests info", domain.StatusPendingApproval, domain.StatusException, true},
		{"approved posts", domain.StatusApproved, domain.StatusPosted, true},
		{"approved sync failure", domain.StatusApproved, domain.StatusException, true},
		{"approved cannot be rejected directly", domain.StatusApproved, domain.StatusRejected, false},
		{"exception back to pending review", domain.StatusException, domain.StatusPendingReview, true},
		{"exception back to in review", domain.StatusException, domain.StatusInReview, true},
		{"exception abandoned", domain.StatusException, domain.StatusRejected, true},
		{"exception cannot post", domain.StatusException, domain.StatusPosted, false},
		{"posted is terminal", domain.StatusPosted, domain.StatusException, false},
		{"posted cannot reopen", domain.StatusPosted, domain.StatusInReview, false},
		{"rejected is terminal", domain.StatusRejected, domain.StatusPendingReview, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to))
		})
	}
}

func TestDocumentStatus_IsTerminal(t *testing.T) {
	assert.True(t, domain.StatusPosted.IsTerminal())
	assert.True(t, domain.StatusRejected.IsTerminal())
	assert.False(t, domain.StatusPendingReview.IsTerminal())
	assert.False(t, domain.StatusException.IsTerminal())
}

func TestDocument_ReconciliationOK(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		subtotal *string
		tax      *string
		want     bool
	}{
		{"exact sum", "1250.50", strPtr("1150.00"), strPtr("100.50"), true},
		{"within tolerance", "100.00", strPtr("90.005"), strPtr("10.00"), true},
		{"mismatch", "1250.50", strPtr("1140.00"), strPtr("100.50"), false},
		{"missing subtotal passes", "1250.50", nil, strPtr("100.50"), true},
		{"missing both passes", "1250.50", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := domain.Document{Amount: decimal.RequireFromString(tt.amount)}
			if tt.subtotal != nil {
				doc.Subtotal = decimalPtr(decimal.RequireFromString(*tt.subtotal))
			}
			if tt.tax != nil {
				doc.Tax = decimalPtr(decimal.RequireFromString(*tt.tax))
			}
			assert.Equal(t, tt.want, doc.ReconciliationOK())
		})
	}
}

func TestActionForStatus(t *testing.T) {
	assert.Equal(t, domain.AuditApproved, domain.ActionForStatus(domain.StatusApproved))
	assert.Equal(t, domain.AuditRejected, domain.ActionForStatus(domain.StatusRejected))
	assert.Equal(t, domain.AuditPosted, domain.ActionForStatus(domain.StatusPosted))
	assert.Equal(t, domain.AuditUpdated, domain.ActionForStatus(domain.StatusInReview))
	assert.Equal(t, domain.AuditUpdated, domain.ActionForStatus(domain.StatusException))
}

func TestMetaForStatus(t *testing.T) {
	meta := domain.MetaForStatus(domain.StatusPosted)
	assert.Equal(t, "Posted", meta.Label)
	assert.True(t, meta.Terminal)

	unknown := domain.MetaForStatus(domain.DocumentStatus("WAT"))
	assert.Equal(t, "WAT", unknown.Label)
	assert.False(t, unknown.Terminal)
}

func strPtr(s string) *string { return &s }
