package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// dynamoRecord is the item layout. expires_at is unix millis, ttl unix seconds.
type dynamoRecord struct {
	Identity  string `dynamodbav:"identity"`
	Code      string `dynamodbav:"code"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
	Attempts  int    `dynamodbav:"attempts"`
	TTL       int64  `dynamodbav:"ttl"`
}

// DynamoStore keeps records in a table keyed by "identity". The "ttl"
// attribute is meant for the table's TTL setting.
type DynamoStore struct {
	Client dynamodbiface.DynamoDBAPI
	Table  string
}

// NewDynamoClient builds a client for region; endpoint overrides the service
// URL for local emulators.
func NewDynamoClient(region, endpoint string) (*dynamodb.DynamoDB, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return dynamodb.New(sess), nil
}

func NewDynamoStore(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{Client: client, Table: table}
}

func (s *DynamoStore) keyOf(identity string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{"identity": {S: aws.String(identity)}}
}

func (s *DynamoStore) Get(ctx context.Context, identity string) (Record, bool, error) {
	out, err := s.Client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Table),
		Key:            s.keyOf(identity),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("dynamodb get: %w", err)
	}
	if len(out.Item) == 0 {
		return Record{}, false, nil
	}
	var item dynamoRecord
	if err := dynamodbattribute.UnmarshalMap(out.Item, &item); err != nil {
		return Record{}, false, fmt.Errorf("dynamodb otp record: %w", err)
	}
	rec := Record{
		Identity:  identity,
		Code:      item.Code,
		ExpiresAt: time.UnixMilli(item.ExpiresAt).UTC(),
		Attempts:  item.Attempts,
	}
	return rec, true, nil
}

func (s *DynamoStore) Put(ctx context.Context, rec Record) error {
	item, err := dynamodbattribute.MarshalMap(dynamoRecord{
		Identity:  rec.Identity,
		Code:      rec.Code,
		ExpiresAt: rec.ExpiresAt.UnixMilli(),
		Attempts:  rec.Attempts,
		TTL:       rec.ExpiresAt.Add(retention).Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = s.Client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put: %w", err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, identity string) error {
	_, err := s.Client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.Table),
		Key:       s.keyOf(identity),
	})
	if err != nil {
		return fmt.Errorf("dynamodb delete: %w", err)
	}
	return nil
}

func (s *DynamoStore) IncrAttempts(ctx context.Context, identity string) (int, bool, error) {
	out, err := s.Client.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Table),
		Key:                 s.keyOf(identity),
		UpdateExpression:    aws.String("ADD #attempts :one"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]*string{
			"#attempts": aws.String("attempts"),
			"#id":       aws.String("identity"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":one": {N: aws.String("1")},
		},
		ReturnValues: aws.String(dynamodb.ReturnValueUpdatedNew),
	})
	if isConditionFailed(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("dynamodb update: %w", err)
	}
	var updated struct {
		Attempts *int `dynamodbav:"attempts"`
	}
	if err := dynamodbattribute.UnmarshalMap(out.Attributes, &updated); err != nil {
		return 0, false, fmt.Errorf("dynamodb update: %w", err)
	}
	if updated.Attempts == nil {
		return 0, false, errors.New("dynamodb update: attempts missing from response")
	}
	n := *updated.Attempts
	return n, true, nil
}

func (s *DynamoStore) CompareAndDelete(ctx context.Context, identity, code string) (bool, error) {
	_, err := s.Client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.Table),
		Key:                 s.keyOf(identity),
		ConditionExpression: aws.String("#code = :code"),
		ExpressionAttributeNames: map[string]*string{
			"#code": aws.String("code"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":code": {S: aws.String(code)},
		},
	})
	if isConditionFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dynamodb delete: %w", err)
	}
	return true, nil
}

func isConditionFailed(err error) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
}
