package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatdb/pkg/models"
)

// MongoProvider MongoDB 컬렉션 스키마 제공자
// 컬렉션에는 고정 스키마가 없으므로 문서 하나를 읽어 필드와 값 타입을 추정한다.
type MongoProvider struct {
	client *mongo.Client
	db     *mongo.Database
	owned  bool
}

// NewMongoProvider 연결 문자열로 접속
func NewMongoProvider(ctx context.Context, config models.SourceConfig) (*MongoProvider, error) {
	uri := config.URI
	if uri == "" {
		uri = fmt.Sprintf("mongodb://%s:%d", config.Host, config.Port)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("MongoDB 연결 실패: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB Ping 실패: %w", err)
	}

	p := newMongoProvider(client, config.Database)
	p.owned = true
	return p, nil
}

func newMongoProvider(client *mongo.Client, database string) *MongoProvider {
	return &MongoProvider{client: client, db: client.Database(database)}
}

func (p *MongoProvider) Type() models.DBType {
	return models.MongoDB
}

func (p *MongoProvider) Close() error {
	if !p.owned {
		return nil
	}
	return p.client.Disconnect(context.Background())
}

func (p *MongoProvider) ListTables(ctx context.Context) ([]string, error) {
	names, err := p.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("컬렉션 목록 조회 실패: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (p *MongoProvider) DescribeTable(ctx context.Context, name string) (*models.Table, error) {
	var doc bson.D
	err := p.db.Collection(name).FindOne(ctx, bson.D{}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// 빈 컬렉션과 없는 컬렉션을 구분
		names, lerr := p.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
		if lerr != nil {
			return nil, fmt.Errorf("컬렉션 조회 실패: %w", lerr)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		return &models.Table{Name: name, Columns: []models.Column{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("샘플 문서 조회 실패: %w", err)
	}

	return tableFromDocument(name, doc), nil
}

// tableFromDocument 문서 필드 순서대로 컬럼 구성 (_id 제외)
func tableFromDocument(name string, doc bson.D) *models.Table {
	table := &models.Table{
		Name:    name,
		Columns: make([]models.Column, 0, len(doc)),
		Sample:  make(map[string]any, len(doc)),
	}
	for _, e := range doc {
		if e.Key == "_id" {
			continue
		}
		table.Columns = append(table.Columns, models.Column{Name: e.Key, Type: bsonTypeName(e.Value)})
		table.Sample[e.Key] = e.Value
	}
	return table
}

// bsonTypeName 디코딩된 값의 BSON 타입 이름
func bsonTypeName(v any) string {
	switch v.(type) {
	case int32:
		return "int"
	case int64:
		return "long"
	case float64:
		return "double"
	case primitive.Decimal128:
		return "decimal"
	case string:
		return "string"
	case bool:
		return "bool"
	case primitive.DateTime:
		return "date"
	case primitive.ObjectID:
		return "objectId"
	case bson.D, bson.M:
		return "object"
	case bson.A:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
