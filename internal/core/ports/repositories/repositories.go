package repositories

// RepositoryProvider bundles every repository implementation for injection
// into the service container. No component reaches for a process-wide
// singleton; the provider is passed explicitly.
type RepositoryProvider struct {
	DocumentRepo  DocumentRepositoryWithTx
	ExceptionRepo ExceptionRepositoryFacade
	ApprovalRepo  ApprovalRepositoryFacade
	VendorRepo    VendorRepositoryFacade
	UserRepo      UserRepositoryFacade
	ReportingRepo ReportingRepository
}
