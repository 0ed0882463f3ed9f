// Package storage provides read access to historical kline data held in
// MongoDB.
//
// Collections are expected to hold one document per kline with millisecond
// timestamps and OHLC values stored as decimal strings, the same shape the
// collector writes. The store is a narrow read interface: time-range queries
// sorted ascending by close timestamp, nothing else.
package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/karta134033/trade-utils/internal/model"
)

// KlineStore wraps a MongoDB client for kline range queries.
type KlineStore struct {
	client *mongo.Client
}

// NewKlineStore connects to MongoDB at the given connection string.
func NewKlineStore(ctx context.Context, uri string) (*KlineStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	return &KlineStore{client: client}, nil
}

// Close disconnects the underlying MongoDB client.
func (s *KlineStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// rawKlineDoc mirrors a stored kline document. OHLC values are decimal
// strings in storage and converted on read.
type rawKlineDoc struct {
	OpenTime  int64  `bson:"open_time"`
	CloseTime int64  `bson:"close_time"`
	Open      string `bson:"open"`
	High      string `bson:"high"`
	Low       string `bson:"low"`
	Close     string `bson:"close"`
}

// toKline converts a stored document, failing on any non-numeric field
// rather than defaulting.
func (d rawKlineDoc) toKline() (model.Kline, error) {
	kline := model.Kline{
		OpenTime:  d.OpenTime,
		CloseTime: d.CloseTime,
	}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{name: "open", raw: d.Open, dst: &kline.Open},
		{name: "high", raw: d.High, dst: &kline.High},
		{name: "low", raw: d.Low, dst: &kline.Low},
		{name: "close", raw: d.Close, dst: &kline.Close},
	}
	for _, f := range fields {
		val, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return model.Kline{}, fmt.Errorf("kline document close_time=%d: field %s: %q is not numeric",
				d.CloseTime, f.name, f.raw)
		}
		*f.dst = val
	}

	return kline, nil
}

// GetKlines fetches klines whose close timestamp falls in the closed range
// [fromTs, toTs], sorted ascending by close timestamp. A nil toTs means "up
// to now".
func (s *KlineStore) GetKlines(ctx context.Context, database, collection string, fromTs int64, toTs *int64) ([]model.Kline, error) {
	upper := time.Now().UnixMilli()
	if toTs != nil {
		upper = *toTs
	}

	coll := s.client.Database(database).Collection(collection)
	filter := bson.D{{Key: "close_time", Value: bson.D{
		{Key: "$gte", Value: fromTs},
		{Key: "$lte", Value: upper},
	}}}
	findOptions := options.Find().SetSort(bson.D{{Key: "close_time", Value: 1}})

	cursor, err := coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find %s.%s: %w", database, collection, err)
	}
	defer cursor.Close(ctx)

	var klines []model.Kline
	for cursor.Next(ctx) {
		var doc rawKlineDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode kline document: %w", err)
		}
		kline, err := doc.toKline()
		if err != nil {
			return nil, err
		}
		klines = append(klines, kline)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s.%s: %w", database, collection, err)
	}

	log.Debug().
		Str("collection", collection).
		Int64("from", fromTs).
		Int64("to", upper).
		Int("count", len(klines)).
		Msg("klines fetched from storage")

	return klines, nil
}
