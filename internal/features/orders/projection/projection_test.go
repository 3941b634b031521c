package projection

import (
	"testing"
	"time"

	"fulfillment-tracker/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrders() []domain.Order {
	return []domain.Order{
		{
			ID:              5,
			Status:          "pending",
			CustomerName:    "Jane Doe",
			CustomerEmail:   "jane@example.com",
			CustomerPhone:   "0700-111-001",
			ProductName:     "Leather Sofa",
			ProductCategory: "Furniture",
			TotalAmount:     1250,
			CreatedAt:       domain.BackendTime(time.Date(2025, 4, 4, 10, 0, 0, 0, time.UTC)),
		},
		{
			ID:              6,
			Status:          "Delivered",
			CustomerName:    "alice smith",
			CustomerEmail:   "alice@example.com",
			CustomerPhone:   "0700-111-002",
			ProductName:     "Oak Table",
			ProductCategory: "Furniture",
			TotalAmount:     400,
			CreatedAt:       domain.BackendTime(time.Date(2025, 4, 6, 10, 0, 0, 0, time.UTC)),
		},
		{
			ID:              7,
			Status:          "pending",
			CustomerName:    "Bob Jones",
			CustomerEmail:   "bob@shop.test",
			CustomerPhone:   "0700-111-003",
			ProductName:     "Desk Lamp",
			ProductCategory: "Lighting",
			TotalAmount:     400,
			CreatedAt:       domain.BackendTime(time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)),
		},
	}
}

// TestProject_Search verifies case-insensitive substring search across the
// documented fields.
func TestProject_Search(t *testing.T) {
	orders := sampleOrders()

	byName := Project(orders, Options{SearchTerm: "JANE"})
	require.Len(t, byName, 1)
	assert.Equal(t, 5, byName[0].ID)

	byID := Project(orders, Options{SearchTerm: "5"})
	require.Len(t, byID, 1)
	assert.Equal(t, 5, byID[0].ID)

	byPhone := Project(orders, Options{SearchTerm: "111-003"})
	require.Len(t, byPhone, 1)
	assert.Equal(t, 7, byPhone[0].ID)

	byCategory := Project(orders, Options{SearchTerm: "lighting"})
	require.Len(t, byCategory, 1)
	assert.Equal(t, 7, byCategory[0].ID)

	byEmail := Project(orders, Options{SearchTerm: "shop.test"})
	require.Len(t, byEmail, 1)
	assert.Equal(t, 7, byEmail[0].ID)
}

// TestProject_StatusFilter verifies exact case-insensitive status matching
// and the "All" sentinel.
func TestProject_StatusFilter(t *testing.T) {
	orders := sampleOrders()

	pending := Project(orders, Options{StatusFilter: "Pending"})
	require.Len(t, pending, 2)

	delivered := Project(orders, Options{StatusFilter: "delivered"})
	require.Len(t, delivered, 1)
	assert.Equal(t, 6, delivered[0].ID)

	all := Project(orders, Options{StatusFilter: StatusFilterAll})
	assert.Len(t, all, 3)

	empty := Project(orders, Options{})
	assert.Len(t, empty, 3)
}

// TestProject_Sort verifies every documented sort key in both directions.
func TestProject_Sort(t *testing.T) {
	orders := sampleOrders()

	byDateAsc := Project(orders, Options{SortBy: SortByDate, SortOrder: SortAsc})
	assert.Equal(t, []int{5, 7, 6}, ids(byDateAsc))

	byDateDesc := Project(orders, Options{SortBy: SortByDate, SortOrder: SortDesc})
	assert.Equal(t, []int{6, 7, 5}, ids(byDateDesc))

	byCustomer := Project(orders, Options{SortBy: SortByCustomer, SortOrder: SortAsc})
	assert.Equal(t, []int{6, 7, 5}, ids(byCustomer)) // alice, Bob, Jane, case-insensitive

	byID := Project(orders, Options{SortBy: SortByID, SortOrder: SortAsc})
	assert.Equal(t, []int{5, 6, 7}, ids(byID))

	byStatus := Project(orders, Options{SortBy: SortByStatus, SortOrder: SortAsc})
	assert.Equal(t, "Delivered", byStatus[0].Status)
}

// TestProject_StableTieBreak verifies equal keys keep their relative input
// order.
func TestProject_StableTieBreak(t *testing.T) {
	orders := sampleOrders()

	byAmount := Project(orders, Options{SortBy: SortByAmount, SortOrder: SortAsc})
	// Orders 6 and 7 share an amount; input order 6-before-7 must survive.
	assert.Equal(t, []int{6, 7, 5}, ids(byAmount))
}

// TestProject_Purity verifies repeated identical calls return deep-equal
// results and never mutate the input.
func TestProject_Purity(t *testing.T) {
	orders := sampleOrders()
	opts := Options{SearchTerm: "furniture", SortBy: SortByDate, SortOrder: SortDesc}

	first := Project(orders, opts)
	second := Project(orders, opts)

	assert.Equal(t, first, second)
	assert.Equal(t, sampleOrders(), orders)

	// Sorting the projection must not reorder the input slice.
	Project(orders, Options{SortBy: SortByID, SortOrder: SortDesc})
	assert.Equal(t, []int{5, 6, 7}, ids(orders))
}

// TestProject_UnknownSortKeyKeepsInputOrder verifies unrecognized sort keys
// leave the filtered rows in input order.
func TestProject_UnknownSortKeyKeepsInputOrder(t *testing.T) {
	orders := sampleOrders()
	got := Project(orders, Options{SortBy: "priority"})
	assert.Equal(t, []int{5, 6, 7}, ids(got))
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 4, 6, 14, 30, 0, 0, time.UTC)
	o := domain.Order{CreatedAt: domain.BackendTime(time.Date(2025, 4, 4, 10, 0, 0, 0, time.UTC))}

	assert.Equal(t, "2d 4h", FormatAge(o, now))

	o.CreatedAt = domain.BackendTime(time.Date(2025, 4, 6, 10, 18, 0, 0, time.UTC))
	assert.Equal(t, "4h 12m", FormatAge(o, now))

	o.CreatedAt = domain.BackendTime(time.Date(2025, 4, 6, 13, 55, 0, 0, time.UTC))
	assert.Equal(t, "35m", FormatAge(o, now))
}

func ids(orders []domain.Order) []int {
	out := make([]int, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}
