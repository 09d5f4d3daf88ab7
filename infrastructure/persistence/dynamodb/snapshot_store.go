package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/aggregates"
	pkgerrors "github.com/AlotfyDev/ArchiNote/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	graphKeyPrefix  = "GRAPH#"
	snapshotSortKey = "SNAPSHOT"
	entityType      = "GraphSnapshot"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the store
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// snapshotItem represents the DynamoDB item structure for a graph snapshot
type snapshotItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	GraphID    string `dynamodbav:"GraphID"`
	Version    int    `dynamodbav:"Version"`
	NodeCount  int    `dynamodbav:"NodeCount"`
	EdgeCount  int    `dynamodbav:"EdgeCount"`
	PathCount  int    `dynamodbav:"PathCount"`
	Payload    string `dynamodbav:"Payload"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// SnapshotStore keeps one item per graph keyed by GRAPH#<id> / SNAPSHOT.
// Every call goes through a circuit breaker so a failing table is not hammered.
type SnapshotStore struct {
	client    DynamoDBAPI
	tableName string
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewSnapshotStore creates a new DynamoDB snapshot store
func NewSnapshotStore(client DynamoDBAPI, tableName string, logger *zap.Logger) *SnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("dynamodb_store")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dynamodb-snapshots",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Only trip if we have enough requests to make a decision
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Cancelled callers say nothing about the table's health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &SnapshotStore{
		client:    client,
		tableName: tableName,
		breaker:   breaker,
		logger:    logger,
	}
}

func graphKey(graphID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: graphKeyPrefix + graphID},
		"SK": &types.AttributeValueMemberS{Value: snapshotSortKey},
	}
}

// Save replaces the snapshot stored under graphID
func (s *SnapshotStore) Save(ctx context.Context, graphID string, snapshot aggregates.Snapshot) error {
	if graphID == "" {
		return pkgerrors.NewValidationError("graph id is required")
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.NewInternalError(fmt.Sprintf("encode snapshot %s", graphID)).WithCause(err)
	}

	item := snapshotItem{
		PK:         graphKeyPrefix + graphID,
		SK:         snapshotSortKey,
		EntityType: entityType,
		GraphID:    graphID,
		Version:    snapshot.Version,
		NodeCount:  len(snapshot.Nodes),
		EdgeCount:  len(snapshot.Edges),
		PathCount:  len(snapshot.Paths),
		Payload:    string(payload),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewInternalError("marshal snapshot item").WithCause(err)
	}

	err = s.execute("PutItem", func() error {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      av,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Debug("Snapshot saved",
		zap.String("graph_id", graphID),
		zap.Int("nodes", item.NodeCount),
		zap.Int("edges", item.EdgeCount),
		zap.Int("paths", item.PathCount),
	)
	return nil
}

// Load returns the snapshot stored under graphID
func (s *SnapshotStore) Load(ctx context.Context, graphID string) (aggregates.Snapshot, error) {
	var out *dynamodb.GetItemOutput
	err := s.execute("GetItem", func() error {
		var err error
		out, err = s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:      aws.String(s.tableName),
			Key:            graphKey(graphID),
			ConsistentRead: aws.Bool(true),
		})
		return err
	})
	if err != nil {
		return aggregates.Snapshot{}, err
	}
	if out == nil || out.Item == nil {
		return aggregates.Snapshot{}, pkgerrors.NewGraphNotFound(graphID)
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return aggregates.Snapshot{}, pkgerrors.NewInternalError("unmarshal snapshot item").WithCause(err)
	}

	var snapshot aggregates.Snapshot
	if err := json.Unmarshal([]byte(item.Payload), &snapshot); err != nil {
		return aggregates.Snapshot{}, pkgerrors.NewInternalError(fmt.Sprintf("decode snapshot %s", graphID)).WithCause(err)
	}
	return snapshot, nil
}

// Delete removes the snapshot; deleting an absent graph is not an error
func (s *SnapshotStore) Delete(ctx context.Context, graphID string) error {
	return s.execute("DeleteItem", func() error {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       graphKey(graphID),
		})
		return err
	})
}

// BreakerState reports the circuit breaker state
func (s *SnapshotStore) BreakerState() gobreaker.State {
	return s.breaker.State()
}

// execute runs call through the circuit breaker and converts failures to AppErrors
func (s *SnapshotStore) execute(operation string, call func() error) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, call()
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return pkgerrors.NewUnavailableError("dynamodb").WithCause(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		s.logger.Error("DynamoDB call failed", zap.String("operation", operation), zap.Error(err))
		return pkgerrors.NewDatabaseError(operation, err)
	}
}
