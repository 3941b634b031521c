package projection

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fulfillment-tracker/internal/features/orders/domain"
)

// Sort keys accepted by Options.SortBy.
const (
	SortByDate     = "date"
	SortByAmount   = "amount"
	SortByCustomer = "customer"
	SortByStatus   = "status"
	SortByID       = "id"
)

// Sort directions accepted by Options.SortOrder.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// StatusFilterAll is the sentinel that disables status filtering.
const StatusFilterAll = "All"

// Options controls the list projection.
type Options struct {
	// SearchTerm is matched case-insensitively as a substring across order
	// id, customer name/email/phone and product name/category. Empty
	// disables searching.
	SearchTerm string
	// StatusFilter keeps only orders whose status matches case-insensitively;
	// the sentinel "All" (or empty) disables filtering.
	StatusFilter string
	// SortBy is one of the SortBy* keys; unrecognized keys leave input order.
	SortBy string
	// SortOrder is "asc" or "desc" (default desc, matching the dashboard).
	SortOrder string
}

// Project returns a filtered, sorted view over the order collection.
// Pure: the input slice is never mutated and a new slice is returned on
// every call. Ties under the sort key keep their relative input order.
func Project(orders []domain.Order, opts Options) []domain.Order {
	out := make([]domain.Order, 0, len(orders))

	term := strings.ToLower(strings.TrimSpace(opts.SearchTerm))
	filterAll := opts.StatusFilter == "" || strings.EqualFold(opts.StatusFilter, StatusFilterAll)

	for _, o := range orders {
		if term != "" && !matchesSearch(o, term) {
			continue
		}
		if !filterAll && !strings.EqualFold(o.Status, opts.StatusFilter) {
			continue
		}
		out = append(out, o)
	}

	sortOrders(out, opts.SortBy, opts.SortOrder)
	return out
}

// matchesSearch reports whether any searchable field contains the lowercased
// term.
func matchesSearch(o domain.Order, term string) bool {
	fields := []string{
		strconv.Itoa(o.ID),
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.ProductName,
		o.ProductCategory,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// sortOrders sorts in place with a stable sort so equal keys keep input order.
func sortOrders(orders []domain.Order, sortBy, sortOrder string) {
	var less func(a, b domain.Order) bool

	switch sortBy {
	case SortByDate:
		less = func(a, b domain.Order) bool {
			return time.Time(a.CreatedAt).Before(time.Time(b.CreatedAt))
		}
	case SortByAmount:
		less = func(a, b domain.Order) bool { return a.TotalAmount < b.TotalAmount }
	case SortByCustomer:
		less = func(a, b domain.Order) bool {
			return strings.ToLower(a.CustomerName) < strings.ToLower(b.CustomerName)
		}
	case SortByStatus:
		less = func(a, b domain.Order) bool {
			return strings.ToLower(a.Status) < strings.ToLower(b.Status)
		}
	case SortByID:
		less = func(a, b domain.Order) bool { return a.ID < b.ID }
	default:
		return
	}

	desc := sortOrder != SortAsc
	sort.SliceStable(orders, func(i, j int) bool {
		if desc {
			return less(orders[j], orders[i])
		}
		return less(orders[i], orders[j])
	})
}

// FormatAge renders the elapsed time since creation the way the dashboard
// shows it: "2d 4h", "4h 12m" or "35m".
func FormatAge(o domain.Order, now time.Time) string {
	d := o.Age(now)
	if d < 0 {
		d = 0
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
