package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/finbooks_app/internal/apperrors"
	"github.com/finbooks/finbooks_app/internal/core/domain"
	portssvc "github.com/finbooks/finbooks_app/internal/core/ports/services"
	"github.com/finbooks/finbooks_app/internal/core/services"
	"github.com/finbooks/finbooks_app/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	service         portssvc.AccountSvcFacade
	userID          string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo)
	suite.userID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) existingAccount(balance decimal.Decimal) *domain.Account {
	return &domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: "1000",
		Name:          "Cash",
		Category:      domain.Asset,
		NormalSide:    domain.NormalDebit,
		Balance:       balance,
		IsActive:      true,
	}
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountNumber:  "1000",
		Name:           "Cash",
		Category:       "ASSET",
		NormalSide:     "DEBIT",
		InitialBalance: decimal.NewFromInt(250),
	}

	var savedSnapshot domain.AccountSnapshot
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.AccountSnapshot")).
		Run(func(args mock.Arguments) {
			savedSnapshot = args.Get(2).(domain.AccountSnapshot)
		}).
		Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.True(account.IsActive)
	suite.True(account.Balance.Equal(decimal.NewFromInt(250)))
	suite.True(account.DebitTotal.IsZero())
	suite.True(account.CreditTotal.IsZero())
	suite.Equal(suite.userID, account.CreatedBy)

	// Creation snapshots the initial state.
	suite.Equal(account.AccountID, savedSnapshot.AccountID)
	suite.True(savedSnapshot.Balance.Equal(account.Balance))
	suite.Equal(suite.userID, savedSnapshot.UpdatedBy)

	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicateNumber() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		AccountNumber: "1000",
		Name:          "Cash",
		Category:      "ASSET",
		NormalSide:    "DEBIT",
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.AccountSnapshot")).
		Return(apperrors.ErrDuplicate).Once()

	account, err := suite.service.CreateAccount(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(account)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_MetadataChangeSnapshots() {
	ctx := context.Background()
	existing := suite.existingAccount(decimal.NewFromInt(50))
	newName := "Petty Cash"

	suite.mockAccountRepo.On("FindAccountByID", ctx, existing.AccountID).Return(existing, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.AccountSnapshot")).
		Return(nil).Once()

	account, err := suite.service.UpdateAccount(ctx, existing.AccountID, dto.UpdateAccountRequest{Name: &newName}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("Petty Cash", account.Name)
	suite.Equal(suite.userID, account.LastUpdatedBy)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NoChangeNoSnapshot() {
	ctx := context.Background()
	existing := suite.existingAccount(decimal.Zero)
	sameName := existing.Name

	suite.mockAccountRepo.On("FindAccountByID", ctx, existing.AccountID).Return(existing, nil).Once()

	account, err := suite.service.UpdateAccount(ctx, existing.AccountID, dto.UpdateAccountRequest{Name: &sameName}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(existing.Name, account.Name)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestSetAccountActive_DeactivateNonZeroBalance() {
	ctx := context.Background()
	existing := suite.existingAccount(decimal.NewFromInt(10))

	suite.mockAccountRepo.On("FindAccountByID", ctx, existing.AccountID).Return(existing, nil).Once()

	account, err := suite.service.SetAccountActive(ctx, existing.AccountID, false, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestSetAccountActive_DeactivateZeroBalance() {
	ctx := context.Background()
	existing := suite.existingAccount(decimal.Zero)

	suite.mockAccountRepo.On("FindAccountByID", ctx, existing.AccountID).Return(existing, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account"), mock.AnythingOfType("domain.AccountSnapshot")).
		Return(nil).Once()

	account, err := suite.service.SetAccountActive(ctx, existing.AccountID, false, suite.userID)

	suite.Require().NoError(err)
	suite.False(account.IsActive)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestSetAccountActive_NoOpWhenUnchanged() {
	ctx := context.Background()
	existing := suite.existingAccount(decimal.NewFromInt(10))

	suite.mockAccountRepo.On("FindAccountByID", ctx, existing.AccountID).Return(existing, nil).Once()

	account, err := suite.service.SetAccountActive(ctx, existing.AccountID, true, suite.userID)

	suite.Require().NoError(err)
	suite.True(account.IsActive)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestListLedgerLines_UnknownAccount() {
	ctx := context.Background()
	accountID := uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, accountID).Return(nil, apperrors.ErrNotFound).Once()

	lines, nextToken, err := suite.service.ListLedgerLines(ctx, accountID, dto.ListParams{Limit: 10})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(lines)
	suite.Nil(nextToken)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ListLedgerLines", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
