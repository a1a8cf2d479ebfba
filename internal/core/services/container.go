package services

import (
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
)

// NewContainer wires the service layer from the repository provider and the
// outbound notifier.
func NewContainer(repos portsrepo.RepositoryProvider, notifier portssvc.Notifier, reviewers []string) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:   NewAccountService(repos.AccountRepo),
		Entry:     NewEntryService(repos.EntryRepo, repos.AccountRepo, notifier, reviewers),
		Reporting: NewReportingService(repos.ReportingRepo),
	}
}
