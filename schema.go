package gymserver

import "time"

type MachineGripType struct {
	ID         string `gorm:"primaryKey" json:"-"`
	MachineID  string `gorm:"index:machine_grip_pair,unique" json:"machine_id"`
	GripTypeID string `gorm:"index:machine_grip_pair,unique" json:"grip_type_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (MachineGripType) TableName() string {
	return "machine_grip_types"
}

type MuscleGroup struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"index:muscle_group_name,unique"`
	DisplayName string
	Color       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MuscleGroup) TableName() string {
	return "muscle_groups"
}

type MachineMuscleGroup struct {
	MachineID     string `gorm:"index:machine_muscle_pair,unique"`
	MuscleGroupID string `gorm:"index:machine_muscle_pair,unique"`
	IsPrimary     bool

	CreatedAt time.Time
}

func (MachineMuscleGroup) TableName() string {
	return "machine_muscle_groups"
}

type WeightRecord struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	UserID       string  `gorm:"index" json:"user_id"`
	ExerciseName string  `json:"exercise_name"`
	MachineID    string  `json:"machine_id,omitempty"`
	GripType     string  `json:"grip_type"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Notes        string  `json:"notes,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}

func (WeightRecord) TableName() string {
	return "weight_records"
}
