package dynamorepo

import (
	"context"
	"errors"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// createdAtLayout is fixed width so that index sort keys order chronologically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type transferItem struct {
	ID                string `dynamodbav:"id"`
	FromAccountID     string `dynamodbav:"from_account_id"`
	ToAccountID       string `dynamodbav:"to_account_id"`
	FromAccountNumber string `dynamodbav:"from_account_number"`
	ToAccountNumber   string `dynamodbav:"to_account_number"`
	Amount            int64  `dynamodbav:"amount"`
	Currency          string `dynamodbav:"currency"`
	Status            string `dynamodbav:"status"`
	Reference         string `dynamodbav:"reference"`
	Description       string `dynamodbav:"description"`
	CreatedAt         string `dynamodbav:"created_at"`
	UpdatedAt         string `dynamodbav:"updated_at"`
}

func newTransferItem(t domain.Transfer) transferItem {
	return transferItem{
		ID:                t.ID,
		FromAccountID:     t.FromAccountID,
		ToAccountID:       t.ToAccountID,
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		Amount:            t.Amount,
		Currency:          t.Currency,
		Status:            string(t.Status),
		Reference:         t.Reference,
		Description:       t.Description,
		CreatedAt:         t.CreatedAt.UTC().Format(createdAtLayout),
		UpdatedAt:         t.UpdatedAt.UTC().Format(createdAtLayout),
	}
}

func (i transferItem) toDomain() domain.Transfer {
	createdAt, _ := time.Parse(createdAtLayout, i.CreatedAt)
	updatedAt, _ := time.Parse(createdAtLayout, i.UpdatedAt)

	return domain.Transfer{
		ID:                i.ID,
		FromAccountID:     i.FromAccountID,
		ToAccountID:       i.ToAccountID,
		FromAccountNumber: i.FromAccountNumber,
		ToAccountNumber:   i.ToAccountNumber,
		Amount:            i.Amount,
		Currency:          i.Currency,
		Status:            domain.TransferStatus(i.Status),
		Reference:         i.Reference,
		Description:       i.Description,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
}

func referenceGuardID(reference string) string { return "reference#" + reference }

// Transfers is the transfer ledger stored in the transfers table.
type Transfers struct {
	s *Store
}

// Transfers returns the transfer ledger view of the store.
func (s *Store) Transfers() *Transfers {
	return &Transfers{s: s}
}

// Create records a pending transfer together with its reference guard.
func (r *Transfers) Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	switch {
	case arg.Amount <= 0:
		return domain.Transfer{}, domain.ErrInvalidAmount
	case arg.FromAccountID == arg.ToAccountID:
		return domain.Transfer{}, domain.ErrSelfTransfer
	case utf8.RuneCountInString(arg.Description) > domain.MaxDescriptionLength:
		return domain.Transfer{}, domain.ErrDescriptionTooLong
	}

	now := r.s.now()
	t := domain.Transfer{
		ID:                uuid.NewString(),
		FromAccountID:     arg.FromAccountID,
		ToAccountID:       arg.ToAccountID,
		FromAccountNumber: arg.FromAccountNumber,
		ToAccountNumber:   arg.ToAccountNumber,
		Amount:            arg.Amount,
		Currency:          arg.Currency,
		Status:            domain.TransferPending,
		Reference:         uuid.NewString(),
		Description:       arg.Description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	item := newTransferItem(t)

	transferAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, errorspkg.ErrInternal
	}

	guardAV, err := attributevalue.MarshalMap(guardItem{ID: referenceGuardID(t.Reference), TargetID: t.ID})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, errorspkg.ErrInternal
	}

	notExists := aws.String("attribute_not_exists(id)")
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.s.transfersTable), Item: transferAV, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: aws.String(r.s.transfersTable), Item: guardAV, ConditionExpression: notExists}},
		},
	}

	if _, err := r.s.client.TransactWriteItems(ctx, input); err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)
		return domain.Transfer{}, storeError(err)
	}

	// Round trip through the stored layout so callers see what reads return.
	return item.toDomain(), nil
}

// Get returns the transfer with the given id.
func (r *Transfers) Get(ctx context.Context, id string) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	out, err := r.s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.s.transfersTable),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, storeError(err)
	}

	if out.Item == nil {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	var item transferItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, errorspkg.ErrInternal
	}

	if item.Reference == "" {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	return item.toDomain(), nil
}

// GetByReference returns the transfer with the given reference.
func (r *Transfers) GetByReference(ctx context.Context, reference string) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	out, err := r.s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.s.transfersTable),
		Key:            key(referenceGuardID(reference)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, storeError(err)
	}

	if out.Item == nil {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	var guard guardItem
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, errorspkg.ErrInternal
	}

	return r.Get(ctx, guard.TargetID)
}

// SetStatus moves a pending transfer to the given status with a conditional update.
func (r *Transfers) SetStatus(ctx context.Context, id string, status domain.TransferStatus) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.s.transfersTable),
		Key:                 key(id),
		UpdateExpression:    aws.String("SET #status = :status, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(reference) AND #status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":  stringAV(string(status)),
			":pending": stringAV(string(domain.TransferPending)),
			":now":     stringAV(r.s.now().UTC().Format(createdAtLayout)),
		},
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}

	out, err := r.s.client.UpdateItem(ctx, input)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			if ccf.Item == nil {
				return domain.Transfer{}, domain.ErrTransferNotFound
			}

			if _, ok := ccf.Item["reference"]; !ok {
				return domain.Transfer{}, domain.ErrTransferNotFound
			}

			return domain.Transfer{}, domain.ErrTransferNotPending
		}

		l.Error().Err(err).Msgf("SetStatus(ctx context.Context, %v, %v)", id, status)

		return domain.Transfer{}, storeError(err)
	}

	var item transferItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		l.Error().Err(err).Send()
		return domain.Transfer{}, errorspkg.ErrInternal
	}

	return item.toDomain(), nil
}

// ListByAccount returns all transfers where the account is the sender or the receiver, newest first.
func (r *Transfers) ListByAccount(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	sent, err := r.queryIndex(ctx, FromAccountIndex, "from_account_id", accountID)
	if err != nil {
		return nil, err
	}

	received, err := r.queryIndex(ctx, ToAccountIndex, "to_account_id", accountID)
	if err != nil {
		return nil, err
	}

	items := append(sent, received...)

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}

		return items[i].ID > items[j].ID
	})

	transfers := make([]domain.Transfer, 0, len(items))
	for _, item := range items {
		transfers = append(transfers, item.toDomain())
	}

	return transfers, nil
}

func (r *Transfers) queryIndex(ctx context.Context, index, attr, accountID string) ([]transferItem, error) {
	l := zerolog.Ctx(ctx)

	var (
		items     []transferItem
		startFrom map[string]types.AttributeValue
	)

	for {
		out, err := r.s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.s.transfersTable),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String("#pk = :id"),
			ExpressionAttributeNames: map[string]string{
				"#pk": attr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":id": stringAV(accountID),
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startFrom,
		})
		if err != nil {
			l.Error().Err(err).Send()
			return nil, storeError(err)
		}

		var page []transferItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, page...)

		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}

		startFrom = out.LastEvaluatedKey
	}
}
