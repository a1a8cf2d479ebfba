package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portsrepo "github.com/finbooks/finbooks_app/internal/core/ports/repositories"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/core/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

// --- Mock EntryRepository ---
type MockEntryRepository struct {
	mock.Mock
}

var _ portsrepo.EntryRepository = (*MockEntryRepository)(nil)

func (m *MockEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) ListEntries(ctx context.Context, status *domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, status, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.JournalEntry), returnedNextToken, args.Error(2)
}

func (m *MockEntryRepository) ApproveEntry(ctx context.Context, entryID string, reviewer string, now time.Time) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, reviewer, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryRepository) RejectEntry(ctx context.Context, entryID string, reviewer string, reason string, now time.Time) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, reviewer, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepository = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account, snapshot domain.AccountSnapshot) error {
	args := m.Called(ctx, account, snapshot)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, nextToken *string) ([]domain.Account, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Account), returnedNextToken, args.Error(2)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account, snapshot domain.AccountSnapshot) error {
	args := m.Called(ctx, account, snapshot)
	return args.Error(0)
}

func (m *MockAccountRepository) ListLedgerLines(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerLine, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerLine), returnedNextToken, args.Error(2)
}

func (m *MockAccountRepository) ListSnapshots(ctx context.Context, accountID string) ([]domain.AccountSnapshot, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountSnapshot), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyPostingLineInTx(ctx context.Context, tx pgx.Tx, account domain.Account, line domain.LedgerLine, snapshot domain.AccountSnapshot) error {
	args := m.Called(ctx, tx, account, line, snapshot)
	return args.Error(0)
}

// --- Stub Notifier ---
// Notifications are fire-and-forget from a goroutine, so the stub just counts
// calls under a mutex; tests never assert on it.
type stubNotifier struct {
	mu        sync.Mutex
	submitted int
	resolved  int
}

var _ portssvc.Notifier = (*stubNotifier)(nil)

func (n *stubNotifier) EntrySubmitted(ctx context.Context, recipients []string, entry domain.JournalEntry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted++
}

func (n *stubNotifier) EntryResolved(ctx context.Context, entry domain.JournalEntry, outcome domain.EntryStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved++
}

// --- Test Suite Setup ---
type EntryServiceTestSuite struct {
	suite.Suite
	mockEntryRepo   *MockEntryRepository
	mockAccountRepo *MockAccountRepository
	notifier        *stubNotifier
	service         portssvc.EntrySvcFacade
	cashAccount     domain.Account
	revenueAccount  domain.Account
	userID          string
	reviewerID      string
}

func (suite *EntryServiceTestSuite) SetupTest() {
	suite.mockEntryRepo = new(MockEntryRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.notifier = new(stubNotifier)
	suite.service = services.NewEntryService(suite.mockEntryRepo, suite.mockAccountRepo, suite.notifier, []string{"reviewers@finbooks.local"})

	suite.userID = uuid.NewString()
	suite.reviewerID = uuid.NewString()

	suite.cashAccount = domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: "1000",
		Name:          "Cash",
		Category:      domain.Asset,
		NormalSide:    domain.NormalDebit,
		IsActive:      true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: "4000",
		Name:          "Sales Revenue",
		Category:      domain.Revenue,
		NormalSide:    domain.NormalCredit,
		IsActive:      true,
	}
}

func (suite *EntryServiceTestSuite) balancedRequest() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		EntryType:   "STANDARD",
		Description: "Cash sale",
		Debit: []dto.EntryLineRequest{
			{AccountID: suite.cashAccount.AccountID, Amount: decimal.NewFromInt(100)},
		},
		Credit: []dto.EntryLineRequest{
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(100)},
		},
	}
}

func (suite *EntryServiceTestSuite) accountsMap() map[string]domain.Account {
	return map[string]domain.Account{
		suite.cashAccount.AccountID:    suite.cashAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}
}

// --- Test Cases ---

func (suite *EntryServiceTestSuite) TestSubmitEntry_Success() {
	ctx := context.Background()
	req := suite.balancedRequest()

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.cashAccount.AccountID, suite.revenueAccount.AccountID}).
		Return(suite.accountsMap(), nil).Once()
	suite.mockEntryRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	entry, err := suite.service.SubmitEntry(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.NotEmpty(entry.EntryID)
	suite.Equal(domain.Pending, entry.Status)
	suite.Nil(entry.PostReference)
	suite.Equal(suite.userID, entry.CreatedBy)
	suite.Len(entry.Lines, 2)
	suite.Equal(domain.Debit, entry.Lines[0].Side)
	suite.Equal(domain.Credit, entry.Lines[1].Side)
	suite.Equal(0, entry.Lines[0].Position)
	suite.Equal(1, entry.Lines[1].Position)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestSubmitEntry_Unbalanced() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Credit[0].Amount = decimal.NewFromInt(99)

	entry, err := suite.service.SubmitEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(entry)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestSubmitEntry_NonPositiveAmount() {
	ctx := context.Background()
	req := suite.balancedRequest()
	req.Debit[0].Amount = decimal.Zero
	req.Credit[0].Amount = decimal.Zero

	entry, err := suite.service.SubmitEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(entry)
}

func (suite *EntryServiceTestSuite) TestSubmitEntry_UnknownAccount() {
	ctx := context.Background()
	req := suite.balancedRequest()

	// Revenue account missing from the lookup result.
	partial := map[string]domain.Account{
		suite.cashAccount.AccountID: suite.cashAccount,
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(partial, nil).Once()

	entry, err := suite.service.SubmitEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(entry)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestSubmitEntry_InactiveAccount() {
	ctx := context.Background()
	req := suite.balancedRequest()

	inactive := suite.revenueAccount
	inactive.IsActive = false
	accounts := map[string]domain.Account{
		suite.cashAccount.AccountID: suite.cashAccount,
		inactive.AccountID:          inactive,
	}
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.AnythingOfType("[]string")).Return(accounts, nil).Once()

	entry, err := suite.service.SubmitEntry(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(entry)
}

func (suite *EntryServiceTestSuite) TestApproveEntry_Success() {
	ctx := context.Background()
	entryID := uuid.NewString()
	postRef := "P1"
	approved := &domain.JournalEntry{
		EntryID:       entryID,
		Status:        domain.Approved,
		PostReference: &postRef,
	}

	suite.mockEntryRepo.On("ApproveEntry", ctx, entryID, suite.reviewerID, mock.AnythingOfType("time.Time")).
		Return(approved, nil).Once()

	entry, err := suite.service.ApproveEntry(ctx, entryID, suite.reviewerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.Approved, entry.Status)
	suite.Require().NotNil(entry.PostReference)
	suite.Equal("P1", *entry.PostReference)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestApproveEntry_RetriesOnConflict() {
	ctx := context.Background()
	entryID := uuid.NewString()
	postRef := "P7"
	approved := &domain.JournalEntry{
		EntryID:       entryID,
		Status:        domain.Approved,
		PostReference: &postRef,
	}

	suite.mockEntryRepo.On("ApproveEntry", ctx, entryID, suite.reviewerID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrConflict).Twice()
	suite.mockEntryRepo.On("ApproveEntry", ctx, entryID, suite.reviewerID, mock.AnythingOfType("time.Time")).
		Return(approved, nil).Once()

	entry, err := suite.service.ApproveEntry(ctx, entryID, suite.reviewerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestApproveEntry_ConflictExhaustsRetries() {
	ctx := context.Background()
	entryID := uuid.NewString()

	suite.mockEntryRepo.On("ApproveEntry", ctx, entryID, suite.reviewerID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrConflict).Times(3)

	entry, err := suite.service.ApproveEntry(ctx, entryID, suite.reviewerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(entry)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestApproveEntry_IncompletePostingNotRetried() {
	ctx := context.Background()
	entryID := uuid.NewString()

	suite.mockEntryRepo.On("ApproveEntry", ctx, entryID, suite.reviewerID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrIncompletePosting).Once()

	entry, err := suite.service.ApproveEntry(ctx, entryID, suite.reviewerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIncompletePosting)
	suite.Nil(entry)
	suite.mockEntryRepo.AssertNumberOfCalls(suite.T(), "ApproveEntry", 1)
}

func (suite *EntryServiceTestSuite) TestApproveEntry_IllegalTransition() {
	ctx := context.Background()
	entryID := uuid.NewString()

	suite.mockEntryRepo.On("ApproveEntry", ctx, entryID, suite.reviewerID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrIllegalTransition).Once()

	entry, err := suite.service.ApproveEntry(ctx, entryID, suite.reviewerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
	suite.Nil(entry)
	suite.mockEntryRepo.AssertNumberOfCalls(suite.T(), "ApproveEntry", 1)
}

func (suite *EntryServiceTestSuite) TestRejectEntry_Success() {
	ctx := context.Background()
	entryID := uuid.NewString()
	reason := "amount disputed by controller"
	rejected := &domain.JournalEntry{
		EntryID:         entryID,
		Status:          domain.Rejected,
		RejectionReason: &reason,
	}

	suite.mockEntryRepo.On("RejectEntry", ctx, entryID, suite.reviewerID, reason, mock.AnythingOfType("time.Time")).
		Return(rejected, nil).Once()

	entry, err := suite.service.RejectEntry(ctx, entryID, reason, suite.reviewerID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal(domain.Rejected, entry.Status)
	suite.Nil(entry.PostReference)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func (suite *EntryServiceTestSuite) TestRejectEntry_EmptyReason() {
	ctx := context.Background()

	entry, err := suite.service.RejectEntry(ctx, uuid.NewString(), "", suite.reviewerID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(entry)
	suite.mockEntryRepo.AssertNotCalled(suite.T(), "RejectEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryServiceTestSuite) TestListEntries_StatusFilter() {
	ctx := context.Background()
	pending := domain.Pending
	statusStr := string(pending)
	entries := []domain.JournalEntry{{EntryID: uuid.NewString(), Status: domain.Pending}}

	suite.mockEntryRepo.On("ListEntries", ctx, &pending, 10, (*string)(nil)).Return(entries, nil, nil).Once()

	got, nextToken, err := suite.service.ListEntries(ctx, dto.ListEntriesParams{Status: &statusStr, Limit: 10})

	suite.Require().NoError(err)
	suite.Len(got, 1)
	suite.Nil(nextToken)
	suite.mockEntryRepo.AssertExpectations(suite.T())
}

func TestEntryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EntryServiceTestSuite))
}
