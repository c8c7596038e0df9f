package models

import "strings"

// Category is the fixed classification a virtual number serves
type Category string

const (
	CategoryCommerce Category = "commerce"
	CategorySocial   Category = "social"
	CategoryPersonal Category = "personal"
)

// MaxLiveNumbers is the cap on live virtual numbers per physical number
const MaxLiveNumbers = 3

// Categories returns every category in display order
func Categories() []Category {
	return []Category{CategoryCommerce, CategorySocial, CategoryPersonal}
}

// categoryAliases accepts the names older clients still send
var categoryAliases = map[string]Category{
	"commerce":     CategoryCommerce,
	"e-commerce":   CategoryCommerce,
	"ecommerce":    CategoryCommerce,
	"social":       CategorySocial,
	"social-media": CategorySocial,
	"personal":     CategoryPersonal,
}

// ParseCategory normalizes a client supplied category name
func ParseCategory(s string) (Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	switch c {
	case CategoryCommerce, CategorySocial, CategoryPersonal:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
