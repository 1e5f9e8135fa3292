package domain

// Vendor is a supplier in the registry.
type Vendor struct {
	VendorID         string           `json:"vendorID"`
	Name             string           `json:"name"`
	IsActive         bool             `json:"isActive"`
	Email            string           `json:"email,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Address          string           `json:"address,omitempty"`
	DefaultGLAccount string           `json:"defaultGLAccount,omitempty"`
	PaymentTerms     string           `json:"paymentTerms,omitempty"`
	AutoCodingRules  []AutoCodingRule `json:"autoCodingRules,omitempty"` // ordered, first match wins
	AuditFields
}

// AutoCodingRule assigns GL coding when its condition matches a document.
// Rules are evaluated in vendor-declared order; the first enabled match wins.
type AutoCodingRule struct {
	RuleID     string `json:"ruleID"`
	VendorID   string `json:"vendorID"`
	Condition  string `json:"condition"` // predicate over document fields, see coding.MatchCondition
	GLAccount  string `json:"glAccount"`
	CostCenter string `json:"costCenter,omitempty"`
	Enabled    bool   `json:"enabled"`
	RuleOrder  int    `json:"ruleOrder"`
}

// VendorStats are projections over historical documents. They are computed on
// read and never independently writable.
type VendorStats struct {
	VendorID      string  `json:"vendorID"`
	TotalInvoices int     `json:"totalInvoices"`
	AccuracyRate  float64 `json:"accuracyRate"` // % of posted documents that never raised an exception
}
