package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	documentRepo := newPgxDocumentRepository(dbPool)
	exceptionRepo := newPgxExceptionRepository(dbPool)
	approvalRepo := newPgxApprovalRepository(dbPool)
	vendorRepo := newPgxVendorRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		DocumentRepo:  documentRepo,
		ExceptionRepo: exceptionRepo,
		ApprovalRepo:  approvalRepo,
		VendorRepo:    vendorRepo,
		UserRepo:      userRepo,
		ReportingRepo: reportingRepo,
	}
}
