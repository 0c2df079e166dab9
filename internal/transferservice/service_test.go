package transferservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubs struct {
	repo     *MockRepo
	accounts *MockAccountRepo
	settler  *MockSettler
}

func TestTransfer(t *testing.T) {
	userID := uuid.NewString()

	sender := domain.Account{
		ID:            uuid.NewString(),
		AccountNumber: "1111111111",
		OwnerID:       userID,
		Balance:       500,
		Currency:      "NGN",
		IsActive:      true,
	}
	receiver := domain.Account{
		ID:            uuid.NewString(),
		AccountNumber: "2222222222",
		OwnerID:       uuid.NewString(),
		Currency:      "NGN",
		IsActive:      true,
	}

	const amount = 300

	pending := domain.Transfer{
		ID:                uuid.NewString(),
		FromAccountID:     sender.ID,
		ToAccountID:       receiver.ID,
		FromAccountNumber: sender.AccountNumber,
		ToAccountNumber:   receiver.AccountNumber,
		Amount:            amount,
		Currency:          "NGN",
		Status:            domain.TransferPending,
		Reference:         uuid.NewString(),
	}

	completed := pending
	completed.Status = domain.TransferCompleted

	failed := pending
	failed.Status = domain.TransferFailed

	lookups := func(s stubs) {
		s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(sender, nil)
		s.accounts.EXPECT().GetByNumber(gomock.Any(), receiver.AccountNumber).Times(1).Return(receiver, nil)
	}

	recorded := func(s stubs) {
		lookups(s)
		s.repo.EXPECT().Create(gomock.Any(), domain.CreateTransferParams{
			FromAccountID:     sender.ID,
			ToAccountID:       receiver.ID,
			FromAccountNumber: sender.AccountNumber,
			ToAccountNumber:   receiver.AccountNumber,
			Amount:            amount,
			Currency:          "NGN",
		}).Times(1).Return(pending, nil)
	}

	noSettlement := func(s stubs) {
		s.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
		s.accounts.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	}

	requireTransferError := func(t *testing.T, err error, compensated bool, targets ...error) {
		t.Helper()

		var terr *domain.TransferError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, compensated, terr.Compensated)
		require.Equal(t, pending.Reference, terr.Transfer.Reference)

		for _, target := range targets {
			require.ErrorIs(t, err, target)
		}
	}

	testCases := []struct {
		name          string
		toNumber      string
		amount        int64
		description   string
		transactional bool
		buildStubs    func(s stubs)
		checkResponse func(t *testing.T, res domain.Transfer, err error)
	}{
		{
			name:     "InvalidAmount",
			toNumber: receiver.AccountNumber,
			amount:   0,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), gomock.Any()).Times(0)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAmount)
				require.Empty(t, res)
			},
		},
		{
			name:     "InvalidAccountNumber",
			toNumber: "22222",
			amount:   amount,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), gomock.Any()).Times(0)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, domain.ErrInvalidAccountNumber)
			},
		},
		{
			name:        "DescriptionTooLong",
			toNumber:    receiver.AccountNumber,
			amount:      amount,
			description: strings.Repeat("ж", domain.MaxDescriptionLength+1),
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), gomock.Any()).Times(0)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, domain.ErrDescriptionTooLong)
			},
		},
		{
			name:     "SenderNotFound",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				s.accounts.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, domain.ErrSenderAccountNotFound)
			},
		},
		{
			name:     "SenderLookupRetried",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(3).Return(domain.Account{}, errorspkg.ErrUnavailable)
				s.accounts.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, errorspkg.ErrUnavailable)
			},
		},
		{
			name:     "SenderLookupInternalNotRetried",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(domain.Account{}, errorspkg.ErrInternal)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
		{
			name:     "InsufficientBalance",
			toNumber: receiver.AccountNumber,
			amount:   1000,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(sender, nil)
				s.accounts.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, domain.ErrInsufficientBalance)
			},
		},
		{
			name:     "RecipientNotFound",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(sender, nil)
				s.accounts.EXPECT().GetByNumber(gomock.Any(), receiver.AccountNumber).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, domain.ErrRecipientAccountNotFound)
			},
		},
		{
			name:     "RecipientLookupRecovers",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(sender, nil)
				gomock.InOrder(
					s.accounts.EXPECT().GetByNumber(gomock.Any(), receiver.AccountNumber).Times(1).Return(domain.Account{}, context.DeadlineExceeded),
					s.accounts.EXPECT().GetByNumber(gomock.Any(), receiver.AccountNumber).Times(1).Return(receiver, nil),
				)
				s.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).Return(pending, nil)
				s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(-amount)).Times(1).Return(sender, nil)
				s.accounts.EXPECT().AddBalance(gomock.Any(), receiver.ID, int64(amount)).Times(1).Return(receiver, nil)
				s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferCompleted).Times(1).Return(completed, nil)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.NoError(t, err)
				require.Equal(t, completed, res)
			},
		},
		{
			name:     "SelfTransfer",
			toNumber: sender.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(sender, nil)
				s.accounts.EXPECT().GetByNumber(gomock.Any(), sender.AccountNumber).Times(1).Return(sender, nil)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, domain.ErrSelfTransfer)
			},
		},
		{
			name:     "CurrencyMismatch",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				usd := receiver
				usd.Currency = "USD"

				s.accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(sender, nil)
				s.accounts.EXPECT().GetByNumber(gomock.Any(), receiver.AccountNumber).Times(1).Return(usd, nil)
				noSettlement(s)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, domain.ErrCurrencyMismatch)
			},
		},
		{
			name:     "CreateFails",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				lookups(s)
				s.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).Return(domain.Transfer{}, errorspkg.ErrUnavailable)
				s.accounts.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.ErrorIs(t, err, errorspkg.ErrUnavailable)
				require.Empty(t, res)
			},
		},
		{
			name:     "OK",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				gomock.InOrder(
					s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(-amount)).Times(1).Return(sender, nil),
					s.accounts.EXPECT().AddBalance(gomock.Any(), receiver.ID, int64(amount)).Times(1).Return(receiver, nil),
					s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferCompleted).Times(1).Return(completed, nil),
				)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.NoError(t, err)
				require.Equal(t, completed, res)
			},
		},
		{
			name:     "DebitFails",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(-amount)).Times(1).Return(domain.Account{}, domain.ErrInsufficientFunds)
				s.accounts.EXPECT().AddBalance(gomock.Any(), receiver.ID, gomock.Any()).Times(0)
				s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(1).Return(failed, nil)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.Empty(t, res)
				requireTransferError(t, err, true, domain.ErrTransferFailed, domain.ErrInsufficientFunds)
				require.NotErrorIs(t, err, domain.ErrReconciliationRequired)
			},
		},
		{
			name:     "DebitNotRetried",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(-amount)).Times(1).Return(domain.Account{}, errorspkg.ErrUnavailable)
				s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(1).Return(failed, nil)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				requireTransferError(t, err, true, domain.ErrTransferFailed, errorspkg.ErrUnavailable)
			},
		},
		{
			name:     "CreditFailsCompensated",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				gomock.InOrder(
					s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(-amount)).Times(1).Return(sender, nil),
					s.accounts.EXPECT().AddBalance(gomock.Any(), receiver.ID, int64(amount)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound),
					s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(amount)).Times(1).Return(sender, nil),
					s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(1).Return(failed, nil),
				)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.Empty(t, res)
				requireTransferError(t, err, true, domain.ErrTransferFailed, domain.ErrAccountNotFound)

				var terr *domain.TransferError
				require.True(t, errors.As(err, &terr))
				require.Equal(t, domain.TransferFailed, terr.Transfer.Status)
			},
		},
		{
			name:     "CompensationFails",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				gomock.InOrder(
					s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(-amount)).Times(1).Return(sender, nil),
					s.accounts.EXPECT().AddBalance(gomock.Any(), receiver.ID, int64(amount)).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound),
					s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(amount)).Times(1).Return(domain.Account{}, errorspkg.ErrUnavailable),
					s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(1).Return(failed, nil),
				)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.Empty(t, res)
				requireTransferError(t, err, false, domain.ErrReconciliationRequired, domain.ErrAccountNotFound)
				require.NotErrorIs(t, err, domain.ErrTransferFailed)
				require.ErrorIs(t, err, errorspkg.ErrUnavailable)

				var terr *domain.TransferError
				require.True(t, errors.As(err, &terr))
				require.Equal(t, errorspkg.ErrUnavailable, terr.CompensationErr)
				require.Contains(t, err.Error(), "reversal: "+errorspkg.ErrUnavailable.Error())
			},
		},
		{
			name:     "MarkFailedRetried",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(-amount)).Times(1).Return(domain.Account{}, domain.ErrInsufficientFunds)
				gomock.InOrder(
					s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(2).Return(domain.Transfer{}, errorspkg.ErrUnavailable),
					s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(1).Return(failed, nil),
				)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				requireTransferError(t, err, true, domain.ErrTransferFailed, domain.ErrInsufficientFunds)
			},
		},
		{
			name:     "LeftPending",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				s.accounts.EXPECT().AddBalance(gomock.Any(), sender.ID, int64(-amount)).Times(1).Return(domain.Account{}, domain.ErrInsufficientFunds)
				s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(3).Return(domain.Transfer{}, errorspkg.ErrUnavailable)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				requireTransferError(t, err, false, domain.ErrReconciliationRequired, domain.ErrInsufficientFunds)
			},
		},
		{
			name:     "CompletedConcurrently",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				s.accounts.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(2).Return(domain.Account{}, nil)
				s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferCompleted).Times(1).Return(domain.Transfer{}, domain.ErrTransferNotPending)
				s.repo.EXPECT().GetByReference(gomock.Any(), pending.Reference).Times(1).Return(completed, nil)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.NoError(t, err)
				require.Equal(t, completed, res)
			},
		},
		{
			name:     "MarkCompletedUnavailable",
			toNumber: receiver.AccountNumber,
			amount:   amount,
			buildStubs: func(s stubs) {
				recorded(s)
				s.accounts.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(2).Return(domain.Account{}, nil)
				s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferCompleted).Times(3).Return(domain.Transfer{}, errorspkg.ErrUnavailable)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				requireTransferError(t, err, false, domain.ErrReconciliationRequired, errorspkg.ErrUnavailable)
			},
		},
		{
			name:          "SettledOK",
			toNumber:      receiver.AccountNumber,
			amount:        amount,
			transactional: true,
			buildStubs: func(s stubs) {
				recorded(s)
				s.settler.EXPECT().Settle(gomock.Any(), pending).Times(1).Return(completed, nil)
				s.accounts.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				s.repo.EXPECT().SetStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.NoError(t, err)
				require.Equal(t, completed, res)
			},
		},
		{
			name:          "SettleRolledBack",
			toNumber:      receiver.AccountNumber,
			amount:        amount,
			transactional: true,
			buildStubs: func(s stubs) {
				recorded(s)
				s.settler.EXPECT().Settle(gomock.Any(), pending).Times(1).Return(domain.Transfer{}, domain.ErrInsufficientFunds)
				s.accounts.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(1).Return(failed, nil)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.Empty(t, res)
				requireTransferError(t, err, true, domain.ErrTransferFailed, domain.ErrInsufficientFunds)
			},
		},
		{
			name:          "SettleTimedOutAfterCommit",
			toNumber:      receiver.AccountNumber,
			amount:        amount,
			transactional: true,
			buildStubs: func(s stubs) {
				recorded(s)
				s.settler.EXPECT().Settle(gomock.Any(), pending).Times(1).Return(domain.Transfer{}, errorspkg.ErrUnavailable)
				s.repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferFailed).Times(1).Return(domain.Transfer{}, domain.ErrTransferNotPending)
				s.repo.EXPECT().GetByReference(gomock.Any(), pending.Reference).Times(1).Return(completed, nil)
			},
			checkResponse: func(t *testing.T, res domain.Transfer, err error) {
				require.NoError(t, err)
				require.Equal(t, completed, res)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			s := stubs{
				repo:     NewMockRepo(ctrl),
				accounts: NewMockAccountRepo(ctrl),
				settler:  NewMockSettler(ctrl),
			}
			tc.buildStubs(s)

			opts := []Option{WithRetry(3, 0), WithStoreTimeout(time.Second)}
			if tc.transactional {
				opts = append(opts, WithSettler(s.settler))
			}

			service := New(s.repo, s.accounts, opts...)

			res, err := service.Transfer(context.Background(), userID, tc.toNumber, tc.amount, tc.description)
			tc.checkResponse(t, res, err)
		})
	}
}

func TestTransferIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	sender := domain.Account{ID: uuid.NewString(), AccountNumber: "1111111111", Balance: 500, Currency: "NGN"}
	receiver := domain.Account{ID: uuid.NewString(), AccountNumber: "2222222222", Currency: "NGN"}
	pending := domain.Transfer{ID: uuid.NewString(), Reference: uuid.NewString(), FromAccountID: sender.ID, ToAccountID: receiver.ID, Amount: 100}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	live := func(ctx context.Context) {
		require.NoError(t, ctx.Err())

		_, ok := ctx.Deadline()
		require.True(t, ok)
	}

	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	accounts := NewMockAccountRepo(ctrl)

	accounts.EXPECT().GetByOwner(gomock.Any(), gomock.Any()).Times(1).Return(sender, nil)
	accounts.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(1).Return(receiver, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).
		DoAndReturn(func(ctx context.Context, _ domain.CreateTransferParams) (domain.Transfer, error) {
			cancel()
			live(ctx)

			return pending, nil
		})
	accounts.EXPECT().AddBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(ctx context.Context, _ string, _ int64) (domain.Account, error) {
			live(ctx)

			return domain.Account{}, nil
		})
	repo.EXPECT().SetStatus(gomock.Any(), pending.ID, domain.TransferCompleted).Times(1).
		DoAndReturn(func(ctx context.Context, _ string, status domain.TransferStatus) (domain.Transfer, error) {
			live(ctx)

			done := pending
			done.Status = status

			return done, nil
		})

	service := New(repo, accounts)

	res, err := service.Transfer(ctx, uuid.NewString(), receiver.AccountNumber, 100, "")
	require.NoError(t, err)
	require.Equal(t, domain.TransferCompleted, res.Status)
}

func TestHistory(t *testing.T) {
	userID := uuid.NewString()
	account := domain.Account{ID: uuid.NewString(), OwnerID: userID}
	transfers := []domain.Transfer{{ID: uuid.NewString()}, {ID: uuid.NewString()}}

	testCases := []struct {
		name       string
		buildStubs func(repo *MockRepo, accounts *MockAccountRepo)
		want       []domain.Transfer
		wantErr    error
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo, accounts *MockAccountRepo) {
				accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(account, nil)
				repo.EXPECT().ListByAccount(gomock.Any(), account.ID).Times(1).Return(transfers, nil)
			},
			want: transfers,
		},
		{
			name: "AccountNotFound",
			buildStubs: func(repo *MockRepo, accounts *MockAccountRepo) {
				accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
				repo.EXPECT().ListByAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "ListRetried",
			buildStubs: func(repo *MockRepo, accounts *MockAccountRepo) {
				accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(account, nil)
				gomock.InOrder(
					repo.EXPECT().ListByAccount(gomock.Any(), account.ID).Times(1).Return(nil, errorspkg.ErrUnavailable),
					repo.EXPECT().ListByAccount(gomock.Any(), account.ID).Times(1).Return(transfers, nil),
				)
			},
			want: transfers,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := NewMockRepo(ctrl)
			accounts := NewMockAccountRepo(ctrl)
			tc.buildStubs(repo, accounts)

			got, err := New(repo, accounts, WithRetry(3, 0)).History(context.Background(), userID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestGet(t *testing.T) {
	userID := uuid.NewString()
	account := domain.Account{ID: uuid.NewString(), OwnerID: userID}
	reference := uuid.NewString()

	sent := domain.Transfer{Reference: reference, FromAccountID: account.ID, ToAccountID: uuid.NewString()}
	received := domain.Transfer{Reference: reference, FromAccountID: uuid.NewString(), ToAccountID: account.ID}
	foreign := domain.Transfer{Reference: reference, FromAccountID: uuid.NewString(), ToAccountID: uuid.NewString()}

	testCases := []struct {
		name    string
		stored  domain.Transfer
		repoErr error
		wantErr error
	}{
		{name: "Sent", stored: sent},
		{name: "Received", stored: received},
		{name: "OtherAccounts", stored: foreign, wantErr: domain.ErrTransferNotFound},
		{name: "NotFound", repoErr: domain.ErrTransferNotFound, wantErr: domain.ErrTransferNotFound},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := NewMockRepo(ctrl)
			accounts := NewMockAccountRepo(ctrl)

			accounts.EXPECT().GetByOwner(gomock.Any(), userID).Times(1).Return(account, nil)
			repo.EXPECT().GetByReference(gomock.Any(), reference).Times(1).Return(tc.stored, tc.repoErr)

			got, err := New(repo, accounts).Get(context.Background(), userID, reference)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Empty(t, got)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.stored, got)
		})
	}
}
