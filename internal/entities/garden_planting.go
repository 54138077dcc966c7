package entities

import "time"

// GardenPlanting records a plant added to the user's garden.
type GardenPlanting struct {
	ID      int64  `gorm:"primaryKey;column:id;autoIncrement" json:"gardenPlantingId"`
	PlantID string `gorm:"column:plant_id;size:128;not null;index" json:"plantId"`
	Plant   *Plant `gorm:"foreignKey:PlantID;references:ID" json:"-"`

	// When the plant was planted. Used for harvest notifications.
	PlantDate time.Time `gorm:"column:plant_date" json:"plantDate"`

	// When the plant was last watered. Used for watering notifications.
	LastWateringDate time.Time `gorm:"column:last_watering_date" json:"lastWateringDate"`
}

func (GardenPlanting) TableName() string {
	return "garden_plantings"
}

// NewGardenPlanting creates a planting for plantID with both dates set to now.
func NewGardenPlanting(plantID string, now time.Time) GardenPlanting {
	return GardenPlanting{
		PlantID:          plantID,
		PlantDate:        now,
		LastWateringDate: now,
	}
}

// NextWateringDate returns when the planting needs water again.
func (g GardenPlanting) NextWateringDate(interval int) time.Time {
	return g.LastWateringDate.AddDate(0, 0, interval)
}

// PlantAndGardenPlantings pairs a plant with all of its plantings.
// It is a read-only projection and is not persisted.
type PlantAndGardenPlantings struct {
	Plant           Plant            `json:"plant"`
	GardenPlantings []GardenPlanting `json:"gardenPlantings"`
}

// IsDueForWatering reports whether interval days have passed since the last watering.
func (g GardenPlanting) IsDueForWatering(now time.Time, interval int) bool {
	return now.After(g.NextWateringDate(interval))
}
