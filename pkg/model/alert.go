package model

type AlertType string

const (
	AlertLowStock   AlertType = "low_stock"
	AlertOutOfStock AlertType = "out_of_stock"
	AlertExpiry     AlertType = "expiry"
	AlertSystem     AlertType = "system"
)

var AlertTypes = []AlertType{AlertLowStock, AlertOutOfStock, AlertExpiry, AlertSystem}

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

var AlertSeverities = []AlertSeverity{SeverityCritical, SeverityWarning, SeverityInfo}

type Alert struct {
	BaseModel
	Type        AlertType     `gorm:"type:varchar(32);not null;index" json:"type"`
	Severity    AlertSeverity `gorm:"type:varchar(16);not null;index" json:"severity"`
	Message     string        `gorm:"type:text;not null" json:"message"`
	ChemicalID  *int64        `gorm:"index" json:"chemical_id"`
	UserID      *string       `gorm:"type:varchar(128)" json:"user_id"`
	IsRead      bool          `gorm:"not null;default:false" json:"is_read"`
	IsDismissed bool          `gorm:"not null;default:false;index" json:"is_dismissed"`
}

func (*Alert) TableName() string { return "alerts" }
