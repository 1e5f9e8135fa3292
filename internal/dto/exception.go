package dto

import (
	"time"

	"github.com/invoxel/ap_console_app/internal/core/domain"
)

// ResolveExceptionRequest carries the resolution note.
type ResolveExceptionRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

// AssignExceptionRequest names the user to own the exception.
type AssignExceptionRequest struct {
	OwnerUserID string `json:"ownerUserID" binding:"required"`
}

// ExceptionResponse mirrors domain.Exception with the derived age included.
type ExceptionResponse struct {
	ExceptionID  string                   `json:"exceptionID"`
	DocumentID   string                   `json:"documentID"`
	Type         domain.ExceptionType     `json:"type"`
	Severity     domain.ExceptionSeverity `json:"severity"`
	Description  string                   `json:"description"`
	SuggestedFix string                   `json:"suggestedFix,omitempty"`
	Owner        string                   `json:"owner,omitempty"`
	Resolved     bool                     `json:"resolved"`
	Resolution   string                   `json:"resolution,omitempty"`
	AgeDays      int                      `json:"ageDays"`
	CreatedAt    time.Time                `json:"createdAt"`
}

// ToExceptionResponse converts a domain.Exception, deriving age from now.
func ToExceptionResponse(e *domain.Exception, now time.Time) ExceptionResponse {
	return ExceptionResponse{
		ExceptionID:  e.ExceptionID,
		DocumentID:   e.DocumentID,
		Type:         e.Type,
		Severity:     e.Severity,
		Description:  e.Description,
		SuggestedFix: e.SuggestedFix,
		Owner:        e.Owner,
		Resolved:     e.Resolved,
		Resolution:   e.Resolution,
		AgeDays:      e.AgeDays(now),
		CreatedAt:    e.CreatedAt,
	}
}

// ToListExceptionsResponse converts a page of exceptions.
func ToListExceptionsResponse(excs []domain.Exception, nextToken *string, now time.Time) ListExceptionsResponse {
	out := make([]ExceptionResponse, len(excs))
	for i := range excs {
		out[i] = ToExceptionResponse(&excs[i], now)
	}
	return ListExceptionsResponse{Exceptions: out, NextToken: nextToken}
}

// ListExceptionsResponse wraps an exceptions page.
type ListExceptionsResponse struct {
	Exceptions []ExceptionResponse `json:"exceptions"`
	NextToken  *string             `json:"nextToken,omitempty"`
}
