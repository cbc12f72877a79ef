package recommend

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/rateworks/recsys/pkg/models"
)

// UserItemMatrix is a dense users-by-products rating matrix. Cells hold
// the chosen rating field for rated pairs and 0 for "no rating"; the
// valid rating range starts above zero so the two are never ambiguous.
// Rows and columns are indexed by ascending user/product id, which keeps
// every derived structure deterministic.
type UserItemMatrix struct {
	dense     *mat.Dense
	users     []int64
	items     []int64
	userIndex map[int64]int
	itemIndex map[int64]int
}

// BuildUserItemMatrix derives the matrix from a rating table. When
// values is non-nil it must align with records element-wise and supplies
// the cell values (normalized ratings); otherwise the raw rating is used.
func BuildUserItemMatrix(records []models.RatingRecord, values []float64) (*UserItemMatrix, error) {
	if len(records) == 0 {
		return nil, models.ErrEmptyTable
	}
	if values != nil && len(values) != len(records) {
		return nil, fmt.Errorf("%w: %d values for %d records",
			models.ErrInvalidConfiguration, len(values), len(records))
	}

	userSet := make(map[int64]struct{})
	itemSet := make(map[int64]struct{})
	for _, r := range records {
		userSet[r.UserID] = struct{}{}
		itemSet[r.ProductID] = struct{}{}
	}

	m := &UserItemMatrix{
		users:     sortedIDs(userSet),
		items:     sortedIDs(itemSet),
		userIndex: make(map[int64]int, len(userSet)),
		itemIndex: make(map[int64]int, len(itemSet)),
	}
	for i, id := range m.users {
		m.userIndex[id] = i
	}
	for j, id := range m.items {
		m.itemIndex[id] = j
	}

	m.dense = mat.NewDense(len(m.users), len(m.items), nil)
	for i, r := range records {
		v := r.Rating
		if values != nil {
			v = values[i]
		}
		m.dense.Set(m.userIndex[r.UserID], m.itemIndex[r.ProductID], v)
	}

	return m, nil
}

// Users returns the distinct user ids in ascending order.
func (m *UserItemMatrix) Users() []int64 { return m.users }

// Items returns the distinct product ids in ascending order.
func (m *UserItemMatrix) Items() []int64 { return m.items }

func (m *UserItemMatrix) NumUsers() int { return len(m.users) }
func (m *UserItemMatrix) NumItems() int { return len(m.items) }

// Row returns a copy of the user's rating vector ordered by Items().
func (m *UserItemMatrix) Row(userID int64) ([]float64, error) {
	i, ok := m.userIndex[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrUnknownUser)
	}
	row := make([]float64, m.NumItems())
	mat.Row(row, i, m.dense)
	return row, nil
}

// Column returns a copy of the product's rating vector ordered by Users().
func (m *UserItemMatrix) Column(productID int64) ([]float64, error) {
	j, ok := m.itemIndex[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, models.ErrUnknownProduct)
	}
	return m.columnAt(j), nil
}

func (m *UserItemMatrix) columnAt(j int) []float64 {
	col := make([]float64, m.NumUsers())
	mat.Col(col, j, m.dense)
	return col
}

// HasItem reports whether the product has at least one rating.
func (m *UserItemMatrix) HasItem(productID int64) bool {
	_, ok := m.itemIndex[productID]
	return ok
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids
}
