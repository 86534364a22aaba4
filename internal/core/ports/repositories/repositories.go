package repositories

// RepositoryProvider groups the repositories handed to the service layer.
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryFacade
	LedgerRepo    LedgerRepositoryFacade
	ReportingRepo ReportingReader
}
