package services

// ServiceContainer bundles every service facade for injection into handlers.
type ServiceContainer struct {
	Document  DocumentSvcFacade
	Exception ExceptionSvcFacade
	Approval  ApprovalSvcFacade
	Sync      SyncSvcFacade
	Vendor    VendorSvcFacade
	User      UserSvcFacade
	Token     TokenSvcFacade
	Reporting ReportingSvcFacade
}
