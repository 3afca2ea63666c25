package model

import "time"

type ChemicalInventory struct {
	BaseModel
	Name           string     `gorm:"type:varchar(255);not null;index" json:"name"`
	Quantity       float64    `gorm:"type:numeric(14,3);not null;default:0;check:quantity >= 0" json:"quantity"`
	Unit           string     `gorm:"type:varchar(50);not null" json:"unit"`
	Formulation    *string    `gorm:"type:text" json:"formulation"`
	Notes          *string    `gorm:"type:text" json:"notes"`
	AlertThreshold *float64   `gorm:"type:numeric(14,3);check:alert_threshold >= 0" json:"alert_threshold"`
	Supplier       *string    `gorm:"type:varchar(255);index" json:"supplier"`
	Location       *string    `gorm:"type:varchar(255)" json:"location"`
	ExpiryDate     *time.Time `gorm:"type:date;index" json:"expiry_date"`
	UpdatedBy      *string    `gorm:"type:varchar(128)" json:"updated_by"`
	LastUpdated    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_updated"`
}

func (*ChemicalInventory) TableName() string { return "chemical_inventory" }

// LowStock is true when a threshold is set and quantity has reached it.
func (c *ChemicalInventory) LowStock() bool {
	return c.AlertThreshold != nil && c.Quantity <= *c.AlertThreshold
}
