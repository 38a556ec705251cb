package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Availability is the stock state of a single size.
type Availability string

const (
	AvailabilityUnset Availability = ""
	InStock           Availability = "in_stock"
	OutOfStock        Availability = "out_of_stock"
)

const (
	// MulticolorName is used when a source color label is missing from the color table.
	MulticolorName = "разноцветный"
	DefaultHexCode = "#FFFFFF"

	// DefaultCare is written to every record; storefront pages are not parsed for care instructions.
	DefaultCare = "Машинная стирка при температуре до 30ºC с коротким циклом отжима.Отбеливание запрещено.Гладить при температуре до 110ºC .Химчистка с тетрахлорэтиленом.Не использовать машинную сушку"
)

// SizeVariant is one size of a color variant.
type SizeVariant struct {
	Name         string       `bson:"name" json:"name" validate:"required"`
	Code         string       `bson:"code" json:"code" validate:"required"`
	Availability Availability `bson:"availability" json:"availability" validate:"availability"`
}

// ColorVariant groups the sizes of one color.
type ColorVariant struct {
	Name         string        `bson:"name" json:"name" validate:"required"`
	OriginalName string        `bson:"originalName" json:"originalName"`
	Code         string        `bson:"code" json:"code" validate:"required,len=3"`
	HexCode      string        `bson:"hexCode" json:"hexCode" validate:"required,hexcolor"`
	Sizes        []SizeVariant `bson:"sizes" json:"sizes" validate:"dive"`
}

// ProductRecord is the canonical catalog document.
type ProductRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Article       string             `bson:"article" json:"article" validate:"required,numeric"`
	UniqueArticle string             `bson:"uniq_article" json:"uniq_article" validate:"required"`
	Brand         string             `bson:"brand" json:"brand" validate:"required"`
	ParseType     string             `bson:"type" json:"type"`
	Category      string             `bson:"category" json:"category" validate:"required"`
	Gender        string             `bson:"gender" json:"gender"`
	Subcategory   string             `bson:"subcategory" json:"subcategory"`
	Description   string             `bson:"description" json:"description"`
	Price         int64              `bson:"price" json:"price" validate:"gt=0"`
	OriginalPrice float64            `bson:"originalPrice" json:"originalPrice" validate:"gt=0"`
	DeliveryPrice float64            `bson:"deliveryPrice" json:"deliveryPrice" validate:"gte=0"`
	Colors        []ColorVariant     `bson:"colors" json:"colors" validate:"dive"`
	Material      string             `bson:"material" json:"material"`
	Care          string             `bson:"care" json:"care"`
}

// UniqueArticleFor builds the brand scoped article key.
func UniqueArticleFor(brand, article string) string {
	return brand + "_" + article
}

// StoredProduct is the projection read back by the update run.
type StoredProduct struct {
	Brand         string         `bson:"brand"`
	Article       string         `bson:"article"`
	Colors        []ColorVariant `bson:"colors"`
	DeliveryPrice float64        `bson:"deliveryPrice"`
}

// AvailabilityUpdate holds the only fields the update run may change.
// Prices are nil when the stock feed reported nothing purchasable.
type AvailabilityUpdate struct {
	Colors        []ColorVariant
	OriginalPrice *float64
	Price         *int64
}

// SetDocument renders the update as the body of a $set operator.
func (u *AvailabilityUpdate) SetDocument() bson.M {
	doc := bson.M{"colors": u.Colors}
	if u.OriginalPrice != nil {
		doc["originalPrice"] = *u.OriginalPrice
	}
	if u.Price != nil {
		doc["price"] = *u.Price
	}
	return doc
}

// StockFeed is the per-article availability document.
type StockFeed struct {
	Availability []string `json:"availability"`
	FewPieceLeft []string `json:"fewPieceLeft"`
}

// Purchasable returns the union of both id lists, keeping first-seen order.
func (f *StockFeed) Purchasable() []string {
	seen := make(map[string]struct{}, len(f.Availability)+len(f.FewPieceLeft))
	var ids []string
	for _, list := range [][]string{f.Availability, f.FewPieceLeft} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
