package filter

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sortColumns = map[SortBy]string{
	SortByPrice:   "current_price",
	SortBySqFt:    "sq_ft",
	SortByBeds:    "beds",
	SortByUpdated: "last_seen_at",
}

// Scope is the SQL form of Apply, for use with (*gorm.DB).Scopes on the apartments table.
func Scope(f ApartmentFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(f.Beds) > 0 {
			db = db.Where("beds IN ?", f.Beds)
		}
		if f.BathsMin != nil {
			db = db.Where("baths >= ?", *f.BathsMin)
		}
		if f.PriceMin != nil {
			db = db.Where("current_price >= ?", *f.PriceMin)
		}
		if f.PriceMax != nil {
			db = db.Where("current_price <= ?", *f.PriceMax)
		}
		if f.SqFtMin != nil {
			db = db.Where("sq_ft >= ?", *f.SqFtMin)
		}
		if f.SqFtMax != nil {
			db = db.Where("sq_ft <= ?", *f.SqFtMax)
		}

		for _, bf := range f.boolFilters() {
			if bf.value != nil {
				db = db.Where(fmt.Sprintf("%s = ?", bf.column), *bf.value)
			}
		}

		if f.ViewType != "" {
			db = db.Where("view_type = ?", f.ViewType)
		}

		by, desc := f.EffectiveSort()
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: sortColumns[by]}, Desc: desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
}
