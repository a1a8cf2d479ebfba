package services

// ServiceContainer bundles the service facades handed to the transport layer.
type ServiceContainer struct {
	Account   AccountSvcFacade
	Entry     EntrySvcFacade
	Reporting ReportingSvcFacade
}
