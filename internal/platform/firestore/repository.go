package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/homechef/api/internal/platform/pagination"
)

// Document is a decoded snapshot of T with its id and server timestamps.
type Document[T any] struct {
	ID         string
	Data       T
	CreateTime time.Time
	UpdateTime time.Time
}

// BaseRepository is typed access to one collection path, which may be nested such as
// "users/{uid}/experiences". T must be a struct Firestore can encode with its tags.
type BaseRepository[T any] struct {
	provider   *Provider
	collection string
}

func NewBaseRepository[T any](provider *Provider, collection string) *BaseRepository[T] {
	return &BaseRepository[T]{provider: provider, collection: strings.Trim(strings.TrimSpace(collection), "/")}
}

// Scoped binds the same provider to another collection path, e.g. one user's subcollection.
func (r *BaseRepository[T]) Scoped(collection string) *BaseRepository[T] {
	return NewBaseRepository[T](r.provider, collection)
}

func (r *BaseRepository[T]) Collection() string { return r.collection }

// Set upserts value under id and returns the write time.
func (r *BaseRepository[T]) Set(ctx context.Context, id string, value T) (time.Time, error) {
	ref, err := r.doc(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	res, err := ref.Set(ctx, value)
	if err != nil {
		return time.Time{}, WrapError(r.op("set"), err)
	}
	return res.UpdateTime, nil
}

// Create fails with a conflict when id already exists.
func (r *BaseRepository[T]) Create(ctx context.Context, id string, value T) (time.Time, error) {
	ref, err := r.doc(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	res, err := ref.Create(ctx, value)
	if err != nil {
		return time.Time{}, WrapError(r.op("create"), err)
	}
	return res.UpdateTime, nil
}

// Replace overwrites id only if it exists; otherwise the error is not found.
func (r *BaseRepository[T]) Replace(ctx context.Context, id string, value T) error {
	ref, err := r.doc(ctx, id)
	if err != nil {
		return err
	}
	err = r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, value)
	})
	return WrapError(r.op("replace"), err)
}

// Delete removes id; a missing document is not found.
func (r *BaseRepository[T]) Delete(ctx context.Context, id string) error {
	ref, err := r.doc(ctx, id)
	if err != nil {
		return err
	}
	_, err = ref.Delete(ctx, firestore.Exists)
	return WrapError(r.op("delete"), err)
}

func (r *BaseRepository[T]) Get(ctx context.Context, id string) (Document[T], error) {
	ref, err := r.doc(ctx, id)
	if err != nil {
		return Document[T]{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return Document[T]{}, WrapError(r.op("get"), err)
	}
	return r.decode(snap)
}

// PageSpec is a keyset listing ordered by OrderBy, then document id.
type PageSpec[T any] struct {
	OrderBy   string
	Direction firestore.Direction
	PageSize  int
	PageToken string
	// Where narrows the collection, e.g. to one owner's documents.
	Where func(firestore.Query) firestore.Query
	// CursorValue returns the OrderBy field of an entity as a string or time.Time.
	CursorValue func(T) any
}

// Page returns one page and the next page token, empty on the last page. One document past the
// page size is fetched to detect whether more remain.
func (r *BaseRepository[T]) Page(ctx context.Context, spec PageSpec[T]) ([]Document[T], string, error) {
	if spec.OrderBy == "" || spec.CursorValue == nil {
		return nil, "", errors.New("firestore: page spec requires an order field and cursor")
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, "", err
	}
	dir := spec.Direction
	if dir == 0 {
		dir = firestore.Asc
	}

	q := coll.Query
	if spec.Where != nil {
		q = spec.Where(q)
	}
	q = q.OrderBy(spec.OrderBy, dir).OrderBy(firestore.DocumentID, dir)
	if token := strings.TrimSpace(spec.PageToken); token != "" {
		value, id, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, "", err
		}
		q = q.StartAfter(value, id)
	}
	if spec.PageSize > 0 {
		q = q.Limit(spec.PageSize + 1)
	}

	docs, err := r.all(ctx, q)
	if err != nil || spec.PageSize <= 0 || len(docs) <= spec.PageSize {
		return docs, "", err
	}
	docs = docs[:spec.PageSize]
	last := docs[len(docs)-1]
	next, err := pagination.EncodeCursor(spec.CursorValue(last.Data), last.ID)
	if err != nil {
		return nil, "", err
	}
	return docs, next, nil
}

func (r *BaseRepository[T]) all(ctx context.Context, q firestore.Query) ([]Document[T], error) {
	it := q.Documents(ctx)
	defer it.Stop()
	var docs []Document[T]
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return docs, nil
		}
		if err != nil {
			return nil, WrapError(r.op("query"), err)
		}
		doc, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

func (r *BaseRepository[T]) decode(snap *firestore.DocumentSnapshot) (Document[T], error) {
	var data T
	if err := snap.DataTo(&data); err != nil {
		return Document[T]{}, WrapError(r.op("decode "+snap.Ref.ID), err)
	}
	return Document[T]{ID: snap.Ref.ID, Data: data, CreateTime: snap.CreateTime, UpdateTime: snap.UpdateTime}, nil
}

func (r *BaseRepository[T]) coll(ctx context.Context) (*firestore.CollectionRef, error) {
	switch {
	case r.provider == nil:
		return nil, WrapError(r.op("collection"), errors.New("firestore: provider is nil"))
	case r.collection == "":
		return nil, WrapError(r.op("collection"), errors.New("firestore: collection path is empty"))
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(r.collection), nil
}

func (r *BaseRepository[T]) doc(ctx context.Context, id string) (*firestore.DocumentRef, error) {
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return nil, WrapError(r.op("document"), errors.New("firestore: invalid document id "+id))
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	return coll.Doc(id), nil
}

func (r *BaseRepository[T]) op(action string) string {
	if r.collection == "" {
		return "firestore." + action
	}
	return r.collection + "." + action
}
