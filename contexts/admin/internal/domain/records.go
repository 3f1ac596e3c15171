// Package domain contains the records managed in the school store admin:
// books, rewards, store items and students.
package domain

// Book is a title of the school library. File holds the document as a data URL.
type Book struct {
	Key           string `json:"key"`
	Name          string `json:"name"          validate:"required"`
	Code          string `json:"code"          validate:"required"`
	Author        string `json:"author"`
	Category      string `json:"category"`
	PublishedYear int    `json:"publishedYear" validate:"gte=0"`
	File          string `json:"file,omitempty"`
}

type BookPatch struct {
	Name          *string `json:"name,omitempty"          validate:"omitnil,min=1"`
	Code          *string `json:"code,omitempty"          validate:"omitnil,min=1"`
	Author        *string `json:"author,omitempty"`
	Category      *string `json:"category,omitempty"`
	PublishedYear *int    `json:"publishedYear,omitempty" validate:"omitnil,gte=0"`
	File          *string `json:"file,omitempty"`
}

// Reward can be redeemed by students for points.
type Reward struct {
	Key         string `json:"key"`
	Name        string `json:"name"        validate:"required"`
	Code        string `json:"code"        validate:"required"`
	Points      int    `json:"points"      validate:"gte=0"`
	Quantity    int    `json:"quantity"    validate:"gte=0"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description"`
}

type RewardPatch struct {
	Name        *string `json:"name,omitempty"        validate:"omitnil,min=1"`
	Code        *string `json:"code,omitempty"        validate:"omitnil,min=1"`
	Points      *int    `json:"points,omitempty"      validate:"omitnil,gte=0"`
	Quantity    *int    `json:"quantity,omitempty"    validate:"omitnil,gte=0"`
	Image       *string `json:"image,omitempty"`
	Description *string `json:"description,omitempty"`
}

// StoreItem is sold in the school store.
type StoreItem struct {
	Key   string `json:"key"`
	Name  string `json:"name"  validate:"required"`
	Code  string `json:"code"  validate:"required"`
	Price int    `json:"price" validate:"gte=0"`
	Stock int    `json:"stock" validate:"gte=0"`
	Image string `json:"image,omitempty"`
}

type StoreItemPatch struct {
	Name  *string `json:"name,omitempty"  validate:"omitnil,min=1"`
	Code  *string `json:"code,omitempty"  validate:"omitnil,min=1"`
	Price *int    `json:"price,omitempty" validate:"omitnil,gte=0"`
	Stock *int    `json:"stock,omitempty" validate:"omitnil,gte=0"`
	Image *string `json:"image,omitempty"`
}

type Student struct {
	Key       string `json:"key"`
	Name      string `json:"name"      validate:"required"`
	Code      string `json:"code"      validate:"required"`
	ClassName string `json:"className"`
	Points    int    `json:"points"    validate:"gte=0"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Avatar    string `json:"avatar,omitempty"`
}

type StudentPatch struct {
	Name      *string `json:"name,omitempty"      validate:"omitnil,min=1"`
	Code      *string `json:"code,omitempty"      validate:"omitnil,min=1"`
	ClassName *string `json:"className,omitempty"`
	Points    *int    `json:"points,omitempty"    validate:"omitnil,gte=0"`
	Email     *string `json:"email,omitempty"     validate:"omitnil,omitempty,email"`
	Avatar    *string `json:"avatar,omitempty"`
}
