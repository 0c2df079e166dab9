// Package dynamorepo implements the account store and the transfer ledger on AWS DynamoDB.
//
// Uniqueness of account numbers, active owners and transfer references is enforced
// with guard items written in the same TransactWriteItems call as the record they protect.
package dynamorepo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
//
//go:generate mockery --name DynamoDBAPI --output mocks
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Index names of the transfers table.
const (
	FromAccountIndex = "from_account_id-created_at-index"
	ToAccountIndex   = "to_account_id-created_at-index"
)

// Store implements the account store on the accounts table and,
// through Transfers, the transfer ledger on the transfers table.
type Store struct {
	client         DynamoDBAPI
	accountsTable  string
	transfersTable string
	now            func() time.Time
}

// New creates a new Store.
func New(client DynamoDBAPI, accountsTable, transfersTable string) *Store {
	return &Store{
		client:         client,
		accountsTable:  accountsTable,
		transfersTable: transfersTable,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks that both tables exist and are active.
func (s *Store) Ping(ctx context.Context) error {
	for _, table := range []string{s.accountsTable, s.transfersTable} {
		out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
		if err != nil {
			return fmt.Errorf("describe table %s: %w", table, err)
		}

		if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
			return fmt.Errorf("table %s is not active", table)
		}
	}

	return nil
}

// NewClient builds a DynamoDB client from the default AWS configuration chain.
// A non-empty endpoint overrides the service endpoint, e.g. for DynamoDB Local.
func NewClient(ctx context.Context, endpoint string) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// storeError maps an SDK error without domain meaning to an app error.
func storeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errorspkg.ErrUnavailable
	}

	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
		netErr     net.Error
	)

	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) || errors.As(err, &netErr) {
		return errorspkg.ErrUnavailable
	}

	return errorspkg.ErrInternal
}

// canceledFor reports whether the transaction was cancelled by a failed condition on item i.
func canceledFor(err error, i int) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) || i >= len(tce.CancellationReasons) {
		return false
	}

	return aws.ToString(tce.CancellationReasons[i].Code) == "ConditionalCheckFailed"
}

func stringAV(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": stringAV(id)}
}

// guardItem reserves a unique value and points to the record owning it.
type guardItem struct {
	ID       string `dynamodbav:"id"`
	TargetID string `dynamodbav:"target_id"`
}
