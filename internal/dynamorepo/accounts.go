package dynamorepo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type accountItem struct {
	ID            string    `dynamodbav:"id"`
	AccountNumber string    `dynamodbav:"account_number"`
	OwnerID       string    `dynamodbav:"owner_id"`
	Balance       int64     `dynamodbav:"balance"`
	Currency      string    `dynamodbav:"currency"`
	IsActive      bool      `dynamodbav:"is_active"`
	CreatedAt     time.Time `dynamodbav:"created_at"`
	UpdatedAt     time.Time `dynamodbav:"updated_at"`
}

func (i accountItem) toDomain() domain.Account {
	return domain.Account(i)
}

func numberGuardID(accountNumber string) string { return "account_number#" + accountNumber }

func ownerGuardID(ownerID string) string { return "owner#" + ownerID }

// Create creates the account with zero balance together with its number and owner guards.
func (s *Store) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if !domain.ValidAccountNumber(arg.AccountNumber) {
		return domain.Account{}, domain.ErrInvalidAccountNumber
	}

	now := s.now()
	item := accountItem{
		ID:            uuid.NewString(),
		AccountNumber: arg.AccountNumber,
		OwnerID:       arg.OwnerID,
		Currency:      arg.Currency,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	accountAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	numberAV, err := attributevalue.MarshalMap(guardItem{ID: numberGuardID(item.AccountNumber), TargetID: item.ID})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	ownerAV, err := attributevalue.MarshalMap(guardItem{ID: ownerGuardID(item.OwnerID), TargetID: item.ID})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	notExists := aws.String("attribute_not_exists(id)")
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(s.accountsTable), Item: accountAV, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: aws.String(s.accountsTable), Item: numberAV, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: aws.String(s.accountsTable), Item: ownerAV, ConditionExpression: notExists}},
		},
	}

	if _, err := s.client.TransactWriteItems(ctx, input); err != nil {
		switch {
		case canceledFor(err, 1):
			return domain.Account{}, domain.ErrDuplicateAccountNumber
		case canceledFor(err, 2):
			return domain.Account{}, domain.ErrDuplicateOwner
		}

		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		return domain.Account{}, storeError(err)
	}

	return item.toDomain(), nil
}

// Get returns the account with the given id, active or not.
func (s *Store) Get(ctx context.Context, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.accountsTable),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, storeError(err)
	}

	if out.Item == nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	if item.AccountNumber == "" {
		// Guard items share the table but are not accounts.
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return item.toDomain(), nil
}

// GetByNumber returns the active account with the given account number.
func (s *Store) GetByNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	return s.getByGuard(ctx, numberGuardID(accountNumber))
}

// GetByOwner returns the active account of the given user.
func (s *Store) GetByOwner(ctx context.Context, ownerID string) (domain.Account, error) {
	return s.getByGuard(ctx, ownerGuardID(ownerID))
}

func (s *Store) getByGuard(ctx context.Context, guardID string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.accountsTable),
		Key:            key(guardID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, storeError(err)
	}

	if out.Item == nil {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	var guard guardItem
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	a, err := s.Get(ctx, guard.TargetID)
	if err != nil {
		return domain.Account{}, err
	}

	if !a.IsActive {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

// AddBalance changes the account's balance by delta with a single conditional update.
//
// The condition keeps the balance within [0, domain.MaxBalance]; on failure the old
// item tells a missing or inactive account apart from a balance limit.
func (s *Store) AddBalance(ctx context.Context, id string, delta int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	floor, ceiling := int64(0), domain.MaxBalance
	if delta < 0 {
		floor = -delta
	} else {
		ceiling -= delta
	}

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.accountsTable),
		Key:                 key(id),
		UpdateExpression:    aws.String("SET balance = balance + :delta, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(account_number) AND is_active = :true AND balance BETWEEN :floor AND :ceiling"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":delta":   &types.AttributeValueMemberN{Value: strconv.FormatInt(delta, 10)},
			":floor":   &types.AttributeValueMemberN{Value: strconv.FormatInt(floor, 10)},
			":ceiling": &types.AttributeValueMemberN{Value: strconv.FormatInt(ceiling, 10)},
			":true":    &types.AttributeValueMemberBOOL{Value: true},
			":now":     stringAV(s.now().Format(time.RFC3339Nano)),
		},
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.Account{}, s.classifyFailedAdjustment(ccf.Item, delta)
		}

		l.Error().Err(err).Msgf("AddBalance(ctx context.Context, %v, %v)", id, delta)

		return domain.Account{}, storeError(err)
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	return item.toDomain(), nil
}

func (s *Store) classifyFailedAdjustment(old map[string]types.AttributeValue, delta int64) error {
	if old == nil {
		return domain.ErrAccountNotFound
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(old, &item); err != nil || item.AccountNumber == "" || !item.IsActive {
		return domain.ErrAccountNotFound
	}

	if delta > 0 {
		return domain.ErrBalanceOverflow
	}

	return domain.ErrInsufficientFunds
}

// Deactivate soft deletes the account and releases its owner guard. The number guard is kept.
func (s *Store) Deactivate(ctx context.Context, id string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := s.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if !a.IsActive {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	now := s.now()
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName:           aws.String(s.accountsTable),
					Key:                 key(id),
					UpdateExpression:    aws.String("SET is_active = :false, updated_at = :now"),
					ConditionExpression: aws.String("is_active = :true"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":false": &types.AttributeValueMemberBOOL{Value: false},
						":true":  &types.AttributeValueMemberBOOL{Value: true},
						":now":   stringAV(now.Format(time.RFC3339Nano)),
					},
				},
			},
			{
				Delete: &types.Delete{
					TableName: aws.String(s.accountsTable),
					Key:       key(ownerGuardID(a.OwnerID)),
				},
			},
		},
	}

	if _, err := s.client.TransactWriteItems(ctx, input); err != nil {
		if canceledFor(err, 0) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, storeError(err)
	}

	a.IsActive = false
	a.UpdatedAt = now

	return a, nil
}
