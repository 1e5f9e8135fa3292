package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	"github.com/invoxel/ap_console_app/internal/core/domain"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/platform/config"
)

const (
	// maxDocumentSizeBytes is the largest payload Document AI accepts inline.
	maxDocumentSizeBytes = 20 * 1024 * 1024

	processTimeout = 60 * time.Second
)

// DocumentAIClient extracts invoice fields using Google Document AI.
type DocumentAIClient struct {
	client      *documentai.DocumentProcessorClient
	projectID   string
	location    string
	processorID string
}

// NewDocumentAIClient creates the extraction client. Credentials come from the
// standard GOOGLE_CREDENTIALS / GOOGLE_APPLICATION_CREDENTIALS environment.
func NewDocumentAIClient(ctx context.Context, cfg *config.Config) (*DocumentAIClient, error) {
	if cfg.GoogleProjectID == "" || cfg.GoogleProcessorID == "" {
		return nil, fmt.Errorf("document AI requires GOOGLE_PROJECT_ID and GOOGLE_PROCESSOR_ID")
	}

	location := cfg.GoogleLocation
	if location == "" {
		location = "us"
	}

	var clientOptions []option.ClientOption
	if location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	return &DocumentAIClient{
		client:      client,
		projectID:   cfg.GoogleProjectID,
		location:    location,
		processorID: cfg.GoogleProcessorID,
	}, nil
}

// Ensure DocumentAIClient implements portssvc.ExtractionClient
var _ portssvc.ExtractionClient = (*DocumentAIClient)(nil)

// Close releases the underlying gRPC connection.
func (c *DocumentAIClient) Close() error {
	return c.client.Close()
}

func (c *DocumentAIClient) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.projectID, c.location, c.processorID)
}

// Extract runs the document through the invoice processor and converts its
// entities into candidate document attributes.
func (c *DocumentAIClient) Extract(ctx context.Context, content []byte, mimeType string) (*domain.ExtractionResult, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty document payload", apperrors.ErrValidation)
	}
	if len(content) > maxDocumentSizeBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", apperrors.ErrValidation, maxDocumentSizeBytes)
	}

	processCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: c.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	}

	resp, err := c.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: document AI processing failed: %v", apperrors.ErrExternalService, err)
	}
	if resp.Document == nil {
		return nil, fmt.Errorf("%w: document AI returned no document", apperrors.ErrExternalService)
	}

	return entitiesToResult(resp.Document), nil
}

// fieldNameForEntity maps processor entity types onto the field names the
// review screen shows.
func fieldNameForEntity(entityType string) string {
	switch entityType {
	case "supplier_name", "vendor_name":
		return domain.FieldVendor
	case "invoice_id", "invoice_number":
		return domain.FieldInvoiceNumber
	case "invoice_date":
		return domain.FieldInvoiceDate
	case "due_date":
		return domain.FieldDueDate
	case "total_amount", "gross_amount":
		return domain.FieldTotal
	case "net_amount", "subtotal_amount":
		return domain.FieldSubtotal
	case "total_tax_amount", "vat_amount":
		return domain.FieldTax
	}
	return ""
}

func entitiesToResult(doc *documentaipb.Document) *domain.ExtractionResult {
	result := &domain.ExtractionResult{}
	var confidenceSum int

	for _, entity := range doc.Entities {
		fieldName := fieldNameForEntity(entity.Type)
		if fieldName == "" {
			if entity.Type == "line_item" {
				if item, ok := entityToLineItem(entity); ok {
					result.LineItems = append(result.LineItems, item)
				}
			}
			continue
		}

		value := strings.TrimSpace(entity.MentionText)
		confidence := int(entity.Confidence * 100)
		field := domain.ExtractedField{
			ExtractedFieldID: uuid.NewString(),
			FieldName:        fieldName,
			Value:            value,
			Confidence:       confidence,
			Box:              entityBox(entity),
		}
		result.Fields = append(result.Fields, field)
		confidenceSum += confidence

		switch fieldName {
		case domain.FieldVendor:
			result.VendorName = value
		case domain.FieldInvoiceNumber:
			result.InvoiceNumber = value
		case domain.FieldInvoiceDate:
			result.InvoiceDate = parseEntityDate(entity, value)
		case domain.FieldDueDate:
			result.DueDate = parseEntityDate(entity, value)
		case domain.FieldTotal:
			if amount, ok := parseEntityMoney(entity, value); ok {
				result.Amount = amount
			}
		case domain.FieldSubtotal:
			if amount, ok := parseEntityMoney(entity, value); ok {
				result.Subtotal = &amount
			}
		case domain.FieldTax:
			if amount, ok := parseEntityMoney(entity, value); ok {
				result.Tax = &amount
			}
		}
	}

	if len(result.Fields) > 0 {
		result.AggregateConfidence = confidenceSum / len(result.Fields)
	}
	return result
}

func entityToLineItem(entity *documentaipb.Document_Entity) (domain.LineItem, bool) {
	item := domain.LineItem{
		LineItemID: uuid.NewString(),
		Quantity:   decimal.NewFromInt(1),
	}
	for _, prop := range entity.Properties {
		value := strings.TrimSpace(prop.MentionText)
		switch prop.Type {
		case "line_item/description":
			item.Description = value
		case "line_item/quantity":
			if qty, err := decimal.NewFromString(value); err == nil {
				item.Quantity = qty
			}
		case "line_item/unit_price":
			if price, ok := parseEntityMoney(prop, value); ok {
				item.UnitPrice = price
			}
		case "line_item/amount":
			if amount, ok := parseEntityMoney(prop, value); ok {
				item.Amount = amount
			}
		}
	}
	if item.Description == "" && item.Amount.IsZero() {
		return domain.LineItem{}, false
	}
	return item, true
}

// parseEntityDate prefers the processor's normalized date value and falls back
// to parsing the raw mention text.
func parseEntityDate(entity *documentaipb.Document_Entity, raw string) *time.Time {
	if nv := entity.GetNormalizedValue(); nv != nil {
		if dv := nv.GetDateValue(); dv != nil && dv.Year > 0 {
			t := time.Date(int(dv.Year), time.Month(dv.Month), int(dv.Day), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	for _, layout := range []string{"2006-01-02", "01/02/2006", "Jan 2, 2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// parseEntityMoney prefers the normalized money value and falls back to
// stripping currency formatting off the raw text.
func parseEntityMoney(entity *documentaipb.Document_Entity, raw string) (decimal.Decimal, bool) {
	if nv := entity.GetNormalizedValue(); nv != nil {
		if mv := nv.GetMoneyValue(); mv != nil {
			units := decimal.NewFromInt(mv.Units)
			nanos := decimal.NewFromInt(int64(mv.Nanos)).Div(decimal.NewFromInt(1_000_000_000))
			return units.Add(nanos), true
		}
	}
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// entityBox reduces the entity's page anchor to one normalized bounding box.
func entityBox(entity *documentaipb.Document_Entity) *domain.FieldBox {
	anchor := entity.GetPageAnchor()
	if anchor == nil || len(anchor.PageRefs) == 0 {
		return nil
	}
	poly := anchor.PageRefs[0].GetBoundingPoly()
	if poly == nil || len(poly.NormalizedVertices) == 0 {
		return nil
	}

	minX, minY := poly.NormalizedVertices[0].X, poly.NormalizedVertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range poly.NormalizedVertices[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return &domain.FieldBox{
		X:      float64(minX),
		Y:      float64(minY),
		Width:  float64(maxX - minX),
		Height: float64(maxY - minY),
	}
}
