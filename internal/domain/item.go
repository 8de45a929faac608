package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemType string

const (
	ItemTypeOffer    ItemType = "OFFER"
	ItemTypeCategory ItemType = "CATEGORY"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeOffer || t == ItemTypeCategory
}

// ParseItemType accepts the wire spelling only ("OFFER" / "CATEGORY").
func ParseItemType(raw string) (ItemType, bool) {
	t := ItemType(strings.TrimSpace(raw))
	return t, t.Valid()
}

// Item is a node of the catalogue forest. Offers carry a price, categories
// never do. Type is fixed once the row exists.
type Item struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;uniqueIndex:idx_items_id_parent,priority:1" json:"id"`
	Name     string     `gorm:"column:name;not null" json:"name"`
	Type     ItemType   `gorm:"column:type;type:varchar(8);not null" json:"type"`
	ParentID *uuid.UUID `gorm:"column:parent_id;type:uuid;index;uniqueIndex:idx_items_id_parent,priority:2" json:"parentId"`
	Price    *int64     `gorm:"column:price;check:chk_items_price,price >= 0 OR price IS NULL" json:"price"`
	Date     time.Time  `gorm:"column:date;not null;index" json:"date"`

	Parent *Item `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Item) TableName() string { return "items" }

func (i *Item) IsOffer() bool    { return i != nil && i.Type == ItemTypeOffer }
func (i *Item) IsCategory() bool { return i != nil && i.Type == ItemTypeCategory }

// ItemStatistic is an append-only copy of an offer taken at import time.
// ParentKey mirrors ParentID with uuid.Nil for roots so the uniqueness of
// (id, parent, date) also holds for root offers; unique indexes treat NULLs
// as distinct.
type ItemStatistic struct {
	StatID    uuid.UUID  `gorm:"column:stat_id;type:uuid;primaryKey" json:"-"`
	ItemID    uuid.UUID  `gorm:"column:id;type:uuid;not null;index;uniqueIndex:idx_items_statistic_point_key,priority:1" json:"id"`
	Name      string     `gorm:"column:name;not null" json:"name"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid" json:"parentId"`
	ParentKey uuid.UUID  `gorm:"column:parent_key;type:uuid;not null;default:'00000000-0000-0000-0000-000000000000';uniqueIndex:idx_items_statistic_point_key,priority:2" json:"-"`
	Type      ItemType   `gorm:"column:type;type:varchar(8);not null" json:"type"`
	Price     *int64     `gorm:"column:price;check:chk_items_statistic_price,price >= 0" json:"price"`
	Date      time.Time  `gorm:"column:date;not null;index;uniqueIndex:idx_items_statistic_point_key,priority:3" json:"date"`

	Item *Item `gorm:"foreignKey:ItemID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ItemStatistic) TableName() string { return "items_statistic" }

// BeforeCreate keeps ParentKey in step with ParentID.
func (st *ItemStatistic) BeforeCreate(*gorm.DB) error {
	st.ParentKey = ParentKeyOf(st.ParentID)
	return nil
}

// ParentKeyOf maps a nullable parent to its non-null key.
func ParentKeyOf(parent *uuid.UUID) uuid.UUID {
	if parent == nil {
		return uuid.Nil
	}
	return *parent
}

// SnapshotOf copies the offer fields into a new statistics row stamped at date.
func SnapshotOf(it *Item, date time.Time) *ItemStatistic {
	return &ItemStatistic{
		StatID:    uuid.New(),
		ItemID:    it.ID,
		Name:      it.Name,
		ParentID:  cloneUUID(it.ParentID),
		ParentKey: ParentKeyOf(it.ParentID),
		Type:      it.Type,
		Price:     cloneInt64(it.Price),
		Date:      date.UTC(),
	}
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
