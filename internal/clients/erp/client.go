package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/invoxel/ap_console_app/internal/apperrors"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/platform/config"
)

// Client posts approved invoices to the external accounting system over its
// JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates the ERP client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.ERPBaseURL,
		httpClient: &http.Client{Timeout: cfg.ERPTimeout},
	}
}

// Ensure Client implements portssvc.ERPClient
var _ portssvc.ERPClient = (*Client)(nil)

type postInvoiceResponse struct {
	ERPID   string `json:"erpId"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PostInvoice sends one invoice to the ERP. A rejected posting (4xx) comes
// back as a structured failure; transport errors and 5xx responses are
// reported as external service failures so callers can retry.
func (c *Client) PostInvoice(ctx context.Context, req portssvc.ERPPostRequest) (*portssvc.ERPPostResult, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: ERP base URL not configured", apperrors.ErrExternalService)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ERP request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build ERP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: ERP call failed after %s: %v", apperrors.ErrExternalService, time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read ERP response: %v", apperrors.ErrExternalService, err)
	}

	var parsed postInvoiceResponse
	if len(respBody) > 0 {
		// A malformed body on an error status is still reportable below.
		_ = json.Unmarshal(respBody, &parsed)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if parsed.ERPID == "" {
			return nil, fmt.Errorf("%w: ERP accepted document %s but returned no id", apperrors.ErrExternalService, req.DocumentID)
		}
		return &portssvc.ERPPostResult{ERPID: parsed.ERPID}, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		reason := parsed.Error
		if reason == "" {
			reason = parsed.Message
		}
		if reason == "" {
			reason = fmt.Sprintf("ERP rejected posting with status %d", resp.StatusCode)
		}
		return &portssvc.ERPPostResult{FailureReason: reason}, nil

	default:
		return nil, fmt.Errorf("%w: ERP returned status %d", apperrors.ErrExternalService, resp.StatusCode)
	}
}
