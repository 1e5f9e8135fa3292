package services

import (
	portsrepo "github.com/invoxel/ap_console_app/internal/core/ports/repositories"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/platform/config"
	"github.com/invoxel/ap_console_app/internal/platform/locking"
)

// NewServiceContainer wires every service with its dependencies. The exception
// engine is built first because document creation consults it.
func NewServiceContainer(
	cfg *config.Config,
	repos *portsrepo.RepositoryProvider,
	locker locking.DocumentLocker,
	erpClient portssvc.ERPClient,
) *portssvc.ServiceContainer {
	exceptionSvc := NewExceptionService(repos.ExceptionRepo, repos.DocumentRepo, locker, cfg)
	documentSvc := NewDocumentService(repos.DocumentRepo, repos.VendorRepo, repos.ExceptionRepo, exceptionSvc, locker, cfg)
	approvalSvc := NewApprovalService(repos.ApprovalRepo, repos.DocumentRepo, locker, cfg)
	syncSvc := NewSyncService(repos.DocumentRepo, erpClient, locker, cfg)
	vendorSvc := NewVendorService(repos.VendorRepo)
	userSvc := NewUserService(repos.UserRepo)
	tokenSvc := NewTokenService(cfg)
	reportingSvc := NewReportingService(repos.ReportingRepo, cfg)

	return &portssvc.ServiceContainer{
		Document:  documentSvc,
		Exception: exceptionSvc,
		Approval:  approvalSvc,
		Sync:      syncSvc,
		Vendor:    vendorSvc,
		User:      userSvc,
		Token:     tokenSvc,
		Reporting: reportingSvc,
	}
}
