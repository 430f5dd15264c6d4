package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/business"
	"github.com/trezcool/dashboard/core/calendar"
	"github.com/trezcool/dashboard/core/user"
)

type (
	// DB is an in-memory store used in DEV|TEST mode, one table per aggregate.
	DB struct {
		user      *table[user.User]
		event     *table[calendar.Event]
		entity    *table[business.Entity]
		milestone *table[business.PaymentMilestone]
	}

	table[T any] struct {
		rows  map[string]T
		mutex sync.RWMutex
	}

	// comparator returns <0, 0 or >0 like strings.Compare.
	comparator[T any] func(a, b T) int
)

func Open() *DB {
	return &DB{
		user:      newTable[user.User](),
		event:     newTable[calendar.Event](),
		entity:    newTable[business.Entity](),
		milestone: newTable[business.PaymentMilestone](),
	}
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

// all returns every row; the caller holds the lock.
func (t *table[T]) all() []T {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, r)
	}
	return rows
}

// orderBy sorts rows by the orderings whose field has a comparator, then by fallback.
func orderBy[T any](rows []T, ordering []core.DBOrdering, comparators map[string]comparator[T], fallback comparator[T]) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := comparators[ord.Field]
			if !ok {
				continue
			}
			c := cmp(rows[i], rows[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return fallback(rows[i], rows[j]) < 0
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
