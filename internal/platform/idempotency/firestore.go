package idempotency

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pfirestore "github.com/homechef/api/internal/platform/firestore"
)

const (
	defaultCollection  = "idempotencyKeys"
	defaultMaxAttempts = 5
	defaultCleanupSize = 100
)

// FirestoreOption customises a FirestoreStore.
type FirestoreOption func(*FirestoreStore)

// WithCollection stores keys in name instead of "idempotencyKeys".
func WithCollection(name string) FirestoreOption {
	return func(store *FirestoreStore) {
		if name != "" {
			store.collection = name
		}
	}
}

// WithMaxAttempts caps transaction retries.
func WithMaxAttempts(attempts int) FirestoreOption {
	return func(store *FirestoreStore) {
		if attempts > 0 {
			store.maxAttempts = attempts
		}
	}
}

// FirestoreStore keeps keys in a Firestore collection so retries of POST /me/experiences and
// POST /me/recipes are deduplicated across instances.
type FirestoreStore struct {
	provider    *pfirestore.Provider
	collection  string
	maxAttempts int
}

var _ Store = (*FirestoreStore)(nil)

func NewFirestoreStore(provider *pfirestore.Provider, opts ...FirestoreOption) *FirestoreStore {
	store := &FirestoreStore{
		provider:    provider,
		collection:  defaultCollection,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *FirestoreStore) Reserve(ctx context.Context, key, fingerprint string, now time.Time, ttl time.Duration) (Reservation, error) {
	now, ttl = now.UTC(), normalizeTTL(ttl)
	var out Reservation
	err := s.inTransaction(ctx, key, func(tx *firestore.Transaction, ref *firestore.DocumentRef, current Record, found bool) error {
		res, write, err := reserve(current, found, key, fingerprint, now, ttl)
		if err != nil {
			return err
		}
		if write {
			if err := tx.Set(ref, toDocument(res.Record)); err != nil {
				return err
			}
		}
		out = res
		return nil
	})
	if err != nil {
		return Reservation{}, err
	}
	return out, nil
}

func (s *FirestoreStore) SaveResponse(ctx context.Context, key, fingerprint string, resp Response, now time.Time, ttl time.Duration) error {
	now, ttl = now.UTC(), normalizeTTL(ttl)
	return s.inTransaction(ctx, key, func(tx *firestore.Transaction, ref *firestore.DocumentRef, current Record, found bool) error {
		record, err := complete(current, found, key, fingerprint, resp, now, ttl)
		if err != nil {
			return err
		}
		return tx.Set(ref, toDocument(record))
	})
}

// CleanupExpired deletes up to limit expired keys with a bulk writer.
func (s *FirestoreStore) CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultCleanupSize
	}
	client, err := s.provider.Client(ctx)
	if err != nil {
		return 0, err
	}

	docs, err := client.Collection(s.collection).Where("expiresAt", "<=", now.UTC()).Limit(limit).Documents(ctx).GetAll()
	if err != nil {
		return 0, pfirestore.WrapError("idempotency.cleanup", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	writer := client.BulkWriter(ctx)
	defer writer.End()
	for _, doc := range docs {
		if _, err := writer.Delete(doc.Ref); err != nil {
			return 0, pfirestore.WrapError("idempotency.cleanup", err)
		}
	}
	return len(docs), nil
}

// Release deletes the key when it still belongs to fingerprint.
func (s *FirestoreStore) Release(ctx context.Context, key, fingerprint string) error {
	return s.inTransaction(ctx, key, func(tx *firestore.Transaction, ref *firestore.DocumentRef, current Record, found bool) error {
		if !found || current.Fingerprint != fingerprint {
			return nil
		}
		return tx.Delete(ref)
	})
}

type txBody func(tx *firestore.Transaction, ref *firestore.DocumentRef, current Record, found bool) error

// inTransaction loads the key's document and hands it to fn inside one transaction.
func (s *FirestoreStore) inTransaction(ctx context.Context, key string, fn txBody) error {
	client, err := s.provider.Client(ctx)
	if err != nil {
		return err
	}
	ref := client.Collection(s.collection).Doc(documentID(key))

	err = s.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			return fn(tx, ref, Record{}, false)
		case err != nil:
			return err
		}
		var doc document
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		return fn(tx, ref, doc.record(), true)
	}, pfirestore.WithTxAttempts(s.maxAttempts))

	// The sentinel must survive the repository error wrapping for the middleware to map it.
	if errors.Is(err, ErrFingerprintMismatch) {
		return ErrFingerprintMismatch
	}
	return err
}

type document struct {
	Key             string              `firestore:"key"`
	Fingerprint     string              `firestore:"fingerprint"`
	Status          string              `firestore:"status"`
	ResponseStatus  int                 `firestore:"responseStatus"`
	ResponseHeaders map[string][]string `firestore:"responseHeaders"`
	ResponseBody    []byte              `firestore:"responseBody"`
	CreatedAt       time.Time           `firestore:"createdAt"`
	UpdatedAt       time.Time           `firestore:"updatedAt"`
	ExpiresAt       time.Time           `firestore:"expiresAt"`
}

func toDocument(r Record) document {
	return document{
		Key:             r.Key,
		Fingerprint:     r.Fingerprint,
		Status:          string(r.Status),
		ResponseStatus:  r.ResponseStatus,
		ResponseHeaders: r.ResponseHeaders,
		ResponseBody:    r.ResponseBody,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		ExpiresAt:       r.ExpiresAt,
	}
}

func (d document) record() Record {
	return Record{
		Key:             d.Key,
		Fingerprint:     d.Fingerprint,
		Status:          Status(d.Status),
		ResponseStatus:  d.ResponseStatus,
		ResponseHeaders: d.ResponseHeaders,
		ResponseBody:    d.ResponseBody,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		ExpiresAt:       d.ExpiresAt,
	}
}
