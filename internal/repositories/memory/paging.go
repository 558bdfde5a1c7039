package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/platform/pagination"
	"github.com/homechef/api/internal/repositories"
)

// keyset orders items by one key and then by ID, mirroring the Firestore listings.
type keyset[T any] struct {
	key  func(T) any
	id   func(T) string
	desc bool
}

func (k keyset[T]) compare(aKey any, aID string, bKey any, bID string) int {
	c := compareKeys(aKey, bKey)
	if c == 0 {
		c = strings.Compare(aID, bID)
	}
	if k.desc {
		return -c
	}
	return c
}

func (k keyset[T]) page(op string, items []T, pager domain.Pagination) (domain.CursorPage[T], error) {
	sort.SliceStable(items, func(i, j int) bool {
		return k.compare(k.key(items[i]), k.id(items[i]), k.key(items[j]), k.id(items[j])) < 0
	})

	start := 0
	if token := strings.TrimSpace(pager.PageToken); token != "" {
		value, id, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.CursorPage[T]{}, repositories.NewStoreError(op, repositories.ErrorKindInvalid, err)
		}
		start = sort.Search(len(items), func(i int) bool {
			return k.compare(k.key(items[i]), k.id(items[i]), value, id) > 0
		})
	}
	items = items[start:]

	next := ""
	if pager.PageSize > 0 && len(items) > pager.PageSize {
		items = items[:pager.PageSize]
		last := items[len(items)-1]
		token, err := pagination.EncodeCursor(k.key(last), k.id(last))
		if err != nil {
			return domain.CursorPage[T]{}, fmt.Errorf("%s: %w", op, err)
		}
		next = token
	}
	return domain.CursorPage[T]{Items: items, NextPageToken: next}, nil
}

func compareKeys(a, b any) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	default:
		return 0
	}
}
