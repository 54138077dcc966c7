package entities

import "time"

// DefaultWateringInterval is used for catalog entries that do not specify one.
const DefaultWateringInterval = 7

// Plant is an entry of the static plant catalog.
type Plant struct {
	ID               string `gorm:"primaryKey;column:id;size:128" json:"plantId" yaml:"plantId"`
	Name             string `gorm:"index;size:256;not null" json:"name" yaml:"name"`
	Description      string `gorm:"type:text" json:"description" yaml:"description"`
	GrowZoneNumber   int    `gorm:"column:grow_zone_number;index" json:"growZoneNumber" yaml:"growZoneNumber"`
	WateringInterval int    `gorm:"column:watering_interval" json:"wateringInterval" yaml:"wateringInterval"` // days
	ImageURL         string `gorm:"column:image_url;size:2048" json:"imageUrl" yaml:"imageUrl"`
}

func (Plant) TableName() string {
	return "plants"
}

// ShouldBeWatered reports whether a plant last watered at lastWatering is due at now.
func (p Plant) ShouldBeWatered(now, lastWatering time.Time) bool {
	return now.After(lastWatering.AddDate(0, 0, p.WateringInterval))
}

func (p Plant) String() string {
	return p.Name
}
