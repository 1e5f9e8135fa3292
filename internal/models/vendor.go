package models

// Vendor is the vendors table row.
type Vendor struct {
	VendorID         string  `db:"vendor_id"`
	Name             string  `db:"name"`
	IsActive         bool    `db:"is_active"`
	Email            *string `db:"email"`
	Phone            *string `db:"phone"`
	Address          *string `db:"address"`
	DefaultGLAccount *string `db:"default_gl_account"`
	PaymentTerms     *string `db:"payment_terms"`
	AuditFields
}

// AutoCodingRule is the vendor_auto_coding_rules table row.
type AutoCodingRule struct {
	RuleID     string  `db:"rule_id"`
	VendorID   string  `db:"vendor_id"`
	Condition  string  `db:"condition"`
	GLAccount  string  `db:"gl_account"`
	CostCenter *string `db:"cost_center"`
	Enabled    bool    `db:"enabled"`
	RuleOrder  int     `db:"rule_order"`
}
