package models

import (
	"encoding/json"
	"time"
)

// Product represents a product in the catalog.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OptionalString distinguishes an absent JSON key from an explicit null.
// Set is true whenever the key was present in the document.
type OptionalString struct {
	Set   bool
	Value *string
}

// NewOptionalString returns a present value; a nil value means null.
func NewOptionalString(value *string) OptionalString {
	return OptionalString{Set: true, Value: value}
}

// UnmarshalJSON is only invoked for keys present in the document.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// ProductChanges lists the fields an update writes. Nil pointers and unset
// optionals leave the stored value untouched.
type ProductChanges struct {
	Name        *string
	Price       *float64
	Description OptionalString
}

// IsEmpty reports whether the changes would write nothing.
func (c ProductChanges) IsEmpty() bool {
	return c.Name == nil && c.Price == nil && !c.Description.Set
}

// Diff keeps only the changes that differ from p.
func (c ProductChanges) Diff(p Product) ProductChanges {
	var d ProductChanges
	if c.Name != nil && *c.Name != p.Name {
		d.Name = c.Name
	}
	if c.Price != nil && *c.Price != p.Price {
		d.Price = c.Price
	}
	if c.Description.Set && !sameString(c.Description.Value, p.Description) {
		d.Description = c.Description
	}
	return d
}

// Apply writes the changes onto p.
func (c ProductChanges) Apply(p *Product) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Description.Set {
		if c.Description.Value == nil {
			p.Description = nil
		} else {
			description := *c.Description.Value
			p.Description = &description
		}
	}
}

// Columns maps the changes to column names for a GORM Updates call.
func (c ProductChanges) Columns() map[string]interface{} {
	columns := make(map[string]interface{}, 3)
	if c.Name != nil {
		columns["name"] = *c.Name
	}
	if c.Price != nil {
		columns["price"] = *c.Price
	}
	if c.Description.Set {
		if c.Description.Value == nil {
			columns["description"] = nil
		} else {
			columns["description"] = *c.Description.Value
		}
	}
	return columns
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
