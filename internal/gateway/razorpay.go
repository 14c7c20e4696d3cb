package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var (
	ErrSignatureMismatch = errors.New("gateway signature mismatch")
	ErrOrderNotFound     = errors.New("gateway order not found or expired")
)

const orderKeyPrefix = "gateway:order:"

// OrderStore binds a gateway order id to the review request being paid.
// The binding lives in Redis with a TTL rather than in a session, so a
// callback can land on any instance.
type OrderStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOrderStore(client *redis.Client, ttl time.Duration) *OrderStore {
	return &OrderStore{client: client, ttl: ttl}
}

// CreateOrder issues a new gateway order id for the request.
func (s *OrderStore) CreateOrder(ctx context.Context, reviewRequestID int64) (string, error) {
	orderID := "order_" + uuid.NewString()
	key := orderKeyPrefix + orderID
	if err := s.client.Set(ctx, key, reviewRequestID, s.ttl).Err(); err != nil {
		return "", err
	}
	return orderID, nil
}

// LookupOrder resolves an order id back to its review request.
func (s *OrderStore) LookupOrder(ctx context.Context, orderID string) (int64, error) {
	id, err := s.client.Get(ctx, orderKeyPrefix+orderID).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrOrderNotFound
		}
		return 0, err
	}
	return id, nil
}

// DeleteOrder removes a consumed binding so the order id cannot be
// replayed.
func (s *OrderStore) DeleteOrder(ctx context.Context, orderID string) error {
	return s.client.Del(ctx, orderKeyPrefix+orderID).Err()
}

// VerifySignature checks the Razorpay callback signature:
// HMAC-SHA256(order_id + "|" + payment_id, key_secret) hex-encoded.
func VerifySignature(keySecret, orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(keySecret))
	fmt.Fprintf(mac, "%s|%s", orderID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}
