package models

import "time"

// Product type codes. The persisted value is always one of these three.
const (
	TypeFood        = 1
	TypeDetergent   = 2
	TypeMeatProduct = 3
)

var typeLabels = map[int]string{
	TypeFood:        "food",
	TypeDetergent:   "detergent",
	TypeMeatProduct: "meat-product",
}

// TypeLabel returns the human-readable label for a product type code.
// The second return value is false for codes outside the known set.
func TypeLabel(t int) (string, bool) {
	label, ok := typeLabels[t]
	return label, ok
}

// Product represents a tracked inventory item.
type Product struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"type:varchar(255)"`
	UniqueCode         string    `json:"unique_code" gorm:"uniqueIndex;type:varchar(100)"`
	Quantity           int       `json:"quantity" gorm:"default:0"`
	Type               int       `json:"type" gorm:"type:smallint"`
	ProductionDate     time.Time `json:"production_date" gorm:"type:date"`
	ExpirationDuration string    `json:"expiration_duration" gorm:"type:varchar(255)"`
	UserID             string    `json:"user_id" gorm:"type:varchar(36);index"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
