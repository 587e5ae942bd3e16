package repository

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sandeepkv93/product-catalog-api/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortDefault   SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

// ParseSortKey accepts the empty string as the default ordering.
func ParseSortKey(raw string) (SortKey, bool) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := productOrders[key]; !ok {
		return "", false
	}
	return key, true
}

// ProductFilter narrows a listing. All set criteria must hold.
type ProductFilter struct {
	Search     string
	Categories []domain.Category
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     SortKey
}

// ProductUpdate carries the fields of a partial update; nil fields are left untouched.
type ProductUpdate struct {
	Title        *string
	Description  *string
	Image        *string
	Category     *domain.Category
	Price        *decimal.Decimal
	Availability *bool
}

func (u ProductUpdate) applyTo(p *domain.Product, now time.Time) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Availability != nil {
		p.Availability = *u.Availability
	}
	p.UpdatedAt = now
}

func (u ProductUpdate) columns(now time.Time) map[string]any {
	cols := map[string]any{"updated_at": now}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.Image != nil {
		cols["image"] = *u.Image
	}
	if u.Category != nil {
		cols["category"] = string(*u.Category)
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Availability != nil {
		cols["availability"] = *u.Availability
	}
	return cols
}

type sqlPredicate struct {
	Query string
	Args  []any
}

// productPredicate is one filter criterion expressed for both backends.
// pushdown, when set, reports whether the SQL form is exact for dialect; when it
// is not, the store evaluates matches on the fetched rows instead.
type productPredicate struct {
	name     string
	applies  func(f ProductFilter) bool
	sql      func(f ProductFilter) sqlPredicate
	matches  func(f ProductFilter, p domain.Product) bool
	pushdown func(f ProductFilter, dialect string) bool
}

// SQLite's LOWER and LIKE fold ASCII letters only.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var productPredicates = []productPredicate{
	{
		name:    "search",
		applies: func(f ProductFilter) bool { return strings.TrimSpace(f.Search) != "" },
		sql: func(f ProductFilter) sqlPredicate {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(f.Search))) + "%"
			return sqlPredicate{
				Query: `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
				Args:  []any{pattern, pattern},
			}
		},
		matches: func(f ProductFilter, p domain.Product) bool {
			needle := strings.ToLower(strings.TrimSpace(f.Search))
			return strings.Contains(strings.ToLower(p.Title), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle)
		},
		pushdown: func(f ProductFilter, dialect string) bool {
			return dialect != "sqlite" || isASCII(f.Search)
		},
	},
	{
		name:    "category",
		applies: func(f ProductFilter) bool { return len(f.Categories) > 0 },
		sql: func(f ProductFilter) sqlPredicate {
			names := make([]string, 0, len(f.Categories))
			for _, c := range f.Categories {
				names = append(names, string(c))
			}
			return sqlPredicate{Query: "category IN ?", Args: []any{names}}
		},
		matches: func(f ProductFilter, p domain.Product) bool {
			return slices.Contains(f.Categories, p.Category)
		},
	},
	{
		name:    "min_price",
		applies: func(f ProductFilter) bool { return f.MinPrice != nil },
		sql: func(f ProductFilter) sqlPredicate {
			return sqlPredicate{Query: "price >= ?", Args: []any{*f.MinPrice}}
		},
		matches: func(f ProductFilter, p domain.Product) bool {
			return p.Price.GreaterThanOrEqual(*f.MinPrice)
		},
	},
	{
		name:    "max_price",
		applies: func(f ProductFilter) bool { return f.MaxPrice != nil },
		sql: func(f ProductFilter) sqlPredicate {
			return sqlPredicate{Query: "price <= ?", Args: []any{*f.MaxPrice}}
		},
		matches: func(f ProductFilter, p domain.Product) bool {
			return p.Price.LessThanOrEqual(*f.MaxPrice)
		},
	},
}

func (f ProductFilter) sqlPredicates() []sqlPredicate {
	pushed, _ := f.splitPredicates("")
	return pushed
}

// splitPredicates returns the SQL conditions dialect can evaluate exactly and
// the criteria left to check in Go on the fetched rows.
func (f ProductFilter) splitPredicates(dialect string) ([]sqlPredicate, []productPredicate) {
	pushed := make([]sqlPredicate, 0, len(productPredicates))
	var residual []productPredicate
	for _, pred := range productPredicates {
		if !pred.applies(f) {
			continue
		}
		if pred.pushdown != nil && !pred.pushdown(f, dialect) {
			residual = append(residual, pred)
			continue
		}
		pushed = append(pushed, pred.sql(f))
	}
	return pushed, residual
}

// Matches reports whether p satisfies every active criterion of f.
func (f ProductFilter) Matches(p domain.Product) bool {
	for _, pred := range productPredicates {
		if pred.applies(f) && !pred.matches(f, p) {
			return false
		}
	}
	return true
}

const recencyOrderSQL = "created_at DESC, id DESC"

// productOrder describes one sort key. An empty sql means the store fetches in
// recency order and the final ordering is applied in Go.
type productOrder struct {
	sql        string
	newCompare func() func(a, b domain.Product) int
}

func byRecency(a, b domain.Product) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func byPrice(desc bool) func() func(a, b domain.Product) int {
	return func() func(a, b domain.Product) int {
		return func(a, b domain.Product) int {
			c := a.Price.Cmp(b.Price)
			if desc {
				c = -c
			}
			if c != 0 {
				return c
			}
			return byRecency(a, b)
		}
	}
}

// byTitle builds a fresh collator per sort; collate.Collator is not safe for concurrent use.
func byTitle(desc bool) func() func(a, b domain.Product) int {
	return func() func(a, b domain.Product) int {
		col := collate.New(language.English, collate.IgnoreCase)
		return func(a, b domain.Product) int {
			c := col.CompareString(a.Title, b.Title)
			if desc {
				c = -c
			}
			if c != 0 {
				return c
			}
			return byRecency(a, b)
		}
	}
}

var productOrders = map[SortKey]productOrder{
	SortDefault:   {sql: recencyOrderSQL, newCompare: func() func(a, b domain.Product) int { return byRecency }},
	SortPriceAsc:  {sql: "price ASC, " + recencyOrderSQL, newCompare: byPrice(false)},
	SortPriceDesc: {sql: "price DESC, " + recencyOrderSQL, newCompare: byPrice(true)},
	SortNameAsc:   {newCompare: byTitle(false)},
	SortNameDesc:  {newCompare: byTitle(true)},
}

func orderFor(key SortKey) productOrder {
	if o, ok := productOrders[key]; ok {
		return o
	}
	return productOrders[SortDefault]
}

func sortProducts(products []domain.Product, key SortKey) {
	slices.SortStableFunc(products, orderFor(key).newCompare())
}
