package userservice

import (
	"context"
	"errors"
	"fmt"
	reflect "reflect"
	"strings"
	"testing"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	gomock "github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func randomUser(t *testing.T) (domain.User, string) {
	password := randompkg.String(10)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		t.Fatalf("passpkg.Hash(%v) failed: %v", password, err)
	}

	user := domain.User{
		ID:             uuid.NewString(),
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
		FirstName:      randompkg.Name(),
		LastName:       randompkg.Name(),
		Role:           domain.RoleCustomer,
	}

	return user, password
}

type eqCreateUserParamsMatcher struct {
	arg      domain.CreateUserParams
	password string
}

func (e eqCreateUserParamsMatcher) Matches(x interface{}) bool {
	arg, ok := x.(domain.CreateUserParams)
	if !ok {
		return false
	}

	err := passpkg.Check(e.password, arg.HashedPassword)
	if err != nil {
		return false
	}

	e.arg.HashedPassword = arg.HashedPassword

	return reflect.DeepEqual(e.arg, arg)
}

func (e eqCreateUserParamsMatcher) String() string {
	return fmt.Sprintf("matches arg %v and password %v", e.arg, e.password)
}

func EqCreateUserParams(arg domain.CreateUserParams, password string) gomock.Matcher {
	return eqCreateUserParamsMatcher{arg, password}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	user, password := randomUser(t)
	account := domain.Account{
		ID:            uuid.NewString(),
		AccountNumber: randompkg.AccountNumber(),
		OwnerID:       user.ID,
		Currency:      "NGN",
		IsActive:      true,
	}

	wantArg := domain.CreateUserParams{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      domain.RoleCustomer,
	}

	testCases := []struct {
		name       string
		password   string
		buildStubs func(userRepo *MockRepo, accounts *MockAccountProvisioner)
		wantError  error
	}{
		{
			name:     "OK",
			password: password,
			buildStubs: func(userRepo *MockRepo, accounts *MockAccountProvisioner) {
				userRepo.EXPECT().
					Create(gomock.Any(), EqCreateUserParams(wantArg, password)).
					Times(1).
					Return(user, nil)
				accounts.EXPECT().
					Provision(gomock.Any(), user.ID).
					Times(1).
					Return(account, nil)
			},
		},
		{
			name:     "HashPasswordErr",
			password: strings.Repeat("long", 100),
			buildStubs: func(userRepo *MockRepo, accounts *MockAccountProvisioner) {
				userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				accounts.EXPECT().Provision(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: errorspkg.ErrInternal,
		},
		{
			name:     "EmailAlreadyExists",
			password: password,
			buildStubs: func(userRepo *MockRepo, accounts *MockAccountProvisioner) {
				userRepo.EXPECT().
					Create(gomock.Any(), EqCreateUserParams(wantArg, password)).
					Times(1).
					Return(domain.User{}, domain.ErrEmailAlreadyExists)
				accounts.EXPECT().Provision(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrEmailAlreadyExists,
		},
		{
			name:     "ProvisionErr",
			password: password,
			buildStubs: func(userRepo *MockRepo, accounts *MockAccountProvisioner) {
				userRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(user, nil)
				accounts.EXPECT().
					Provision(gomock.Any(), user.ID).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNumberExhausted)
			},
			wantError: domain.ErrAccountNumberExhausted,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userRepo := NewMockRepo(ctrl)
			accounts := NewMockAccountProvisioner(ctrl)
			userService := New(userRepo, accounts)

			tc.buildStubs(userRepo, accounts)

			gotUser, gotAccount, err := userService.Create(context.Background(),
				user.Email,
				tc.password,
				user.FirstName,
				user.LastName,
			)
			if tc.wantError != nil {
				if !errors.Is(err, tc.wantError) {
					t.Fatalf("userService.Create(...) got error %v, want %v", err, tc.wantError)
				}

				return
			}

			if err != nil {
				t.Fatalf("userService.Create(...) failed: %v", err)
			}

			if diff := cmp.Diff(user.WithoutPassword(), gotUser); diff != "" {
				t.Errorf("user returned unexpected diff: %s", diff)
			}

			if diff := cmp.Diff(account, gotAccount); diff != "" {
				t.Errorf("account returned unexpected diff: %s", diff)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	user, password := randomUser(t)

	testCases := []struct {
		name       string
		password   string
		buildStubs func(userRepo *MockRepo)
		wantError  error
	}{
		{
			name:     "OK",
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					GetByEmail(gomock.Any(), user.Email).
					Times(1).
					Return(user, nil)
			},
		},
		{
			name:     "UserNotFound",
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					GetByEmail(gomock.Any(), user.Email).
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
			},
			wantError: domain.ErrUserNotFound,
		},
		{
			name:     "WrongPassword",
			password: "wrong",
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					GetByEmail(gomock.Any(), user.Email).
					Times(1).
					Return(user, nil)
			},
			wantError: domain.ErrWrongPassword,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userRepo := NewMockRepo(ctrl)
			userService := New(userRepo, NewMockAccountProvisioner(ctrl))

			tc.buildStubs(userRepo)

			got, err := userService.CheckPassword(context.Background(), user.Email, tc.password)
			if err != nil {
				if err == tc.wantError {
					return
				}

				t.Fatalf("userService.CheckPassword(context.Background(), %v, %v) got error %v, want %v",
					user.Email, tc.password, err, tc.wantError)
			}

			if diff := cmp.Diff(user.WithoutPassword(), got); diff != "" {
				t.Errorf("user returned unexpected diff: %s", diff)
			}
		})
	}
}
