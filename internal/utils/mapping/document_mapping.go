package mapping

import (
	"github.com/invoxel/ap_console_app/internal/core/domain"
	"github.com/invoxel/ap_console_app/internal/models"
)

// ToModelDocument converts a domain.Document to its row struct. Child
// collections are mapped separately.
func ToModelDocument(d domain.Document) models.Document {
	m := models.Document{
		DocumentID:      d.DocumentID,
		VendorID:        d.VendorID,
		InvoiceNumber:   d.InvoiceNumber,
		InvoiceDate:     d.InvoiceDate,
		DueDate:         d.DueDate,
		Amount:          d.Amount,
		Subtotal:        d.Subtotal,
		Tax:             d.Tax,
		Status:          models.DocumentStatus(d.Status),
		ConfidenceScore: d.ConfidenceScore,
		AssignedTo:      nilIfEmpty(d.AssignedTo),
		GLAccount:       nilIfEmpty(d.GLAccount),
		CostCenter:      nilIfEmpty(d.CostCenter),
		UploadedAt:      d.UploadedAt,
		UploadedBy:      d.UploadedBy,
		ERPID:           nilIfEmpty(d.ERPID),
		Version:         d.Version,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.SyncStatus != "" {
		ss := models.SyncStatus(d.SyncStatus)
		m.SyncStatus = &ss
	}
	return m
}

// ToDomainDocument converts a row struct back to the domain entity. Vendor
// name and child collections are hydrated by the repository.
func ToDomainDocument(m models.Document) domain.Document {
	d := domain.Document{
		DocumentID:      m.DocumentID,
		VendorID:        m.VendorID,
		InvoiceNumber:   m.InvoiceNumber,
		InvoiceDate:     m.InvoiceDate,
		DueDate:         m.DueDate,
		Amount:          m.Amount,
		Subtotal:        m.Subtotal,
		Tax:             m.Tax,
		Status:          domain.DocumentStatus(m.Status),
		ConfidenceScore: m.ConfidenceScore,
		AssignedTo:      emptyIfNil(m.AssignedTo),
		GLAccount:       emptyIfNil(m.GLAccount),
		CostCenter:      emptyIfNil(m.CostCenter),
		UploadedAt:      m.UploadedAt,
		UploadedBy:      m.UploadedBy,
		ERPID:           emptyIfNil(m.ERPID),
		Version:         m.Version,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.SyncStatus != nil {
		d.SyncStatus = domain.SyncStatus(*m.SyncStatus)
	}
	return d
}

// ToModelLineItem converts one billed line.
func ToModelLineItem(d domain.LineItem, order int) models.LineItem {
	return models.LineItem{
		LineItemID:  d.LineItemID,
		DocumentID:  d.DocumentID,
		Description: d.Description,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		Amount:      d.Amount,
		GLAccount:   nilIfEmpty(d.GLAccount),
		CostCenter:  nilIfEmpty(d.CostCenter),
		LineOrder:   order,
	}
}

// ToDomainLineItem converts one billed line row.
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		LineItemID:  m.LineItemID,
		DocumentID:  m.DocumentID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
		GLAccount:   emptyIfNil(m.GLAccount),
		CostCenter:  emptyIfNil(m.CostCenter),
	}
}

// ToModelExtractedField converts one provenance row.
func ToModelExtractedField(d domain.ExtractedField) models.ExtractedField {
	m := models.ExtractedField{
		ExtractedFieldID: d.ExtractedFieldID,
		DocumentID:       d.DocumentID,
		FieldName:        d.FieldName,
		Value:            d.Value,
		Confidence:       d.Confidence,
	}
	if d.Box != nil {
		m.BoxX, m.BoxY = &d.Box.X, &d.Box.Y
		m.BoxWidth, m.BoxHeight = &d.Box.Width, &d.Box.Height
	}
	return m
}

// ToDomainExtractedField converts one provenance row back.
func ToDomainExtractedField(m models.ExtractedField) domain.ExtractedField {
	d := domain.ExtractedField{
		ExtractedFieldID: m.ExtractedFieldID,
		DocumentID:       m.DocumentID,
		FieldName:        m.FieldName,
		Value:            m.Value,
		Confidence:       m.Confidence,
	}
	if m.BoxX != nil && m.BoxY != nil && m.BoxWidth != nil && m.BoxHeight != nil {
		d.Box = &domain.FieldBox{X: *m.BoxX, Y: *m.BoxY, Width: *m.BoxWidth, Height: *m.BoxHeight}
	}
	return d
}

// ToDomainComment converts one comment row.
func ToDomainComment(m models.Comment) domain.Comment {
	return domain.Comment{
		CommentID:  m.CommentID,
		DocumentID: m.DocumentID,
		UserID:     m.UserID,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt,
	}
}

// ToModelAuditEntry converts one audit log record.
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		AuditEntryID: d.AuditEntryID,
		DocumentID:   d.DocumentID,
		UserID:       d.UserID,
		Field:        d.Field,
		OldValue:     d.OldValue,
		NewValue:     d.NewValue,
		Action:       string(d.Action),
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainAuditEntry converts one audit log row back.
func ToDomainAuditEntry(m models.AuditEntry) domain.AuditEntry {
	return domain.AuditEntry{
		AuditEntryID: m.AuditEntryID,
		DocumentID:   m.DocumentID,
		UserID:       m.UserID,
		Field:        m.Field,
		OldValue:     m.OldValue,
		NewValue:     m.NewValue,
		Action:       domain.AuditAction(m.Action),
		CreatedAt:    m.CreatedAt,
	}
}
