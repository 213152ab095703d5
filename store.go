package gymserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pandarack/gym-server/log"
)

var (
	ErrNotFound  = fmt.Errorf("record not found")
	ErrForbidden = fmt.Errorf("record belongs to another user")
	ErrInvalid   = fmt.Errorf("invalid parameters")
)

// RelationStore owns every relational row of the system: machine/grip-type
// junction rows, muscle groups and their machine associations, and weight
// records. The catalog engine only reads from it; writes go through the
// dedicated save operations.
type RelationStore interface {
	GripTypeIDsForMachines(ctx context.Context, machineIDs []string) ([]string, error)
	AllGripRelations(ctx context.Context) ([]MachineGripType, error)
	SaveGripRelations(ctx context.Context, relations []GripRelation, appendMode bool) error
	DeleteMachineRelations(ctx context.Context, machineID string) error

	ListMuscleGroups(ctx context.Context) ([]MuscleGroupInfo, error)
	CreateMuscleGroup(ctx context.Context, name, displayName, color string) (MuscleGroup, error)
	UpdateMuscleGroup(ctx context.Context, id, name, displayName, color string) error
	DeleteMuscleGroup(ctx context.Context, id string) error
	MuscleGroupsForMachine(ctx context.Context, machineID string) ([]MachineMuscleGroupInfo, error)
	AssociateMuscleGroup(ctx context.Context, machineID, groupID string, isPrimary bool) error
	DissociateMuscleGroup(ctx context.Context, machineID, groupID string) error

	CreateWeightRecord(ctx context.Context, record *WeightRecord) error
	ListWeightRecords(ctx context.Context, userID string) ([]WeightRecord, error)
	MaxWeightRecord(ctx context.Context, userID, exerciseName, gripType string) (*WeightRecord, error)
	DeleteWeightRecord(ctx context.Context, recordID, userID string) error
}

type PGRelationStore struct {
	db *gorm.DB
}

func NewPGRelationStore(dsn string) (*PGRelationStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.LogLevel(viper.GetInt("store.log_level"))),
	})
	if err != nil {
		return nil, err
	}

	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(50)
	sqldb.SetConnMaxLifetime(time.Hour)

	return &PGRelationStore{db: db}, nil
}

func (s *PGRelationStore) AutoMigrate() error {
	return s.db.AutoMigrate(
		&MachineGripType{},
		&MuscleGroup{},
		&MachineMuscleGroup{},
		&WeightRecord{},
	)
}

// GripTypeIDsForMachines collects the grip-type ids associated to any of
// the given machine ids.
func (s *PGRelationStore) GripTypeIDsForMachines(ctx context.Context, machineIDs []string) ([]string, error) {
	if len(machineIDs) == 0 {
		return nil, nil
	}

	var gripTypeIDs []string
	err := s.db.WithContext(ctx).
		Model(&MachineGripType{}).
		Where("machine_id IN ?", machineIDs).
		Pluck("grip_type_id", &gripTypeIDs).Error

	return gripTypeIDs, err
}

func (s *PGRelationStore) AllGripRelations(ctx context.Context) ([]MachineGripType, error) {
	var relations []MachineGripType
	err := s.db.WithContext(ctx).
		Order("machine_id, grip_type_id").
		Find(&relations).Error

	return relations, err
}

// SaveGripRelations stores a batch of machine/grip-type pairs in one
// transaction. In replace mode the prior association set is dropped first;
// in append mode the batch layers on top of it. Pairs that already exist
// are skipped, which makes the operation idempotent.
func (s *PGRelationStore) SaveGripRelations(ctx context.Context, relations []GripRelation, appendMode bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !appendMode {
			log.Debug("replacing full grip relation set",
				zap.Int("incoming", len(relations)), log.SourceStore)
			if err := tx.Where("1 = 1").Delete(&MachineGripType{}).Error; err != nil {
				return err
			}
		}

		for _, relation := range relations {
			var existing MachineGripType
			err := tx.Where("machine_id = ? AND grip_type_id = ?",
				relation.MachineID, relation.GripTypeID).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if err := tx.Create(&MachineGripType{
				ID:         uuid.NewString(),
				MachineID:  relation.MachineID,
				GripTypeID: relation.GripTypeID,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteMachineRelations drops every junction row owned by a machine, both
// grip-type and muscle-group associations. Used when a machine's file is
// deleted.
func (s *PGRelationStore) DeleteMachineRelations(ctx context.Context, machineID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("machine_id = ?", machineID).Delete(&MachineGripType{}).Error; err != nil {
			return err
		}
		return tx.Where("machine_id = ?", machineID).Delete(&MachineMuscleGroup{}).Error
	})
}

func (s *PGRelationStore) ListMuscleGroups(ctx context.Context) ([]MuscleGroupInfo, error) {
	var groups []MuscleGroupInfo
	err := s.db.WithContext(ctx).
		Table("muscle_groups mg").
		Select("mg.id, mg.name, mg.display_name, mg.color, COUNT(mmg.machine_id) AS machine_count").
		Joins("LEFT JOIN machine_muscle_groups mmg ON mg.id = mmg.muscle_group_id").
		Group("mg.id, mg.name, mg.display_name, mg.color").
		Order("mg.display_name").
		Scan(&groups).Error

	return groups, err
}

func (s *PGRelationStore) CreateMuscleGroup(ctx context.Context, name, displayName, color string) (MuscleGroup, error) {
	group := MuscleGroup{
		ID:          uuid.NewString(),
		Name:        name,
		DisplayName: displayName,
		Color:       color,
	}

	err := s.db.WithContext(ctx).Create(&group).Error
	return group, err
}

func (s *PGRelationStore) UpdateMuscleGroup(ctx context.Context, id, name, displayName, color string) error {
	result := s.db.WithContext(ctx).
		Model(&MuscleGroup{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":         name,
			"display_name": displayName,
			"color":        color,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteMuscleGroup removes a group and its machine associations in one
// transaction.
func (s *PGRelationStore) DeleteMuscleGroup(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("muscle_group_id = ?", id).Delete(&MachineMuscleGroup{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&MuscleGroup{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *PGRelationStore) MuscleGroupsForMachine(ctx context.Context, machineID string) ([]MachineMuscleGroupInfo, error) {
	var groups []MachineMuscleGroupInfo
	err := s.db.WithContext(ctx).
		Table("machine_muscle_groups mmg").
		Select("mmg.muscle_group_id, mg.name, mg.display_name, mg.color, mmg.is_primary").
		Joins("JOIN muscle_groups mg ON mg.id = mmg.muscle_group_id").
		Where("mmg.machine_id = ?", machineID).
		Order("mg.display_name").
		Scan(&groups).Error

	return groups, err
}

// AssociateMuscleGroup links a machine to a muscle group, updating the
// primary flag when the pair already exists.
func (s *PGRelationStore) AssociateMuscleGroup(ctx context.Context, machineID, groupID string, isPrimary bool) error {
	var group MuscleGroup
	if err := s.db.WithContext(ctx).Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "machine_id"}, {Name: "muscle_group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_primary"}),
	}).Create(&MachineMuscleGroup{
		MachineID:     machineID,
		MuscleGroupID: groupID,
		IsPrimary:     isPrimary,
	}).Error
}

func (s *PGRelationStore) DissociateMuscleGroup(ctx context.Context, machineID, groupID string) error {
	return s.db.WithContext(ctx).
		Where("machine_id = ? AND muscle_group_id = ?", machineID, groupID).
		Delete(&MachineMuscleGroup{}).Error
}

func (s *PGRelationStore) CreateWeightRecord(ctx context.Context, record *WeightRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now()
	}

	return s.db.WithContext(ctx).Create(record).Error
}

func (s *PGRelationStore) ListWeightRecords(ctx context.Context, userID string) ([]WeightRecord, error) {
	var records []WeightRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		Find(&records).Error

	return records, err
}

// MaxWeightRecord returns the heaviest record of a user for an exercise,
// optionally restricted to one grip type. A user with no matching record
// gets a nil record, not an error.
func (s *PGRelationStore) MaxWeightRecord(ctx context.Context, userID, exerciseName, gripType string) (*WeightRecord, error) {
	query := s.db.WithContext(ctx).
		Where("user_id = ? AND exercise_name = ?", userID, exerciseName)
	if gripType != "" {
		query = query.Where("grip_type = ?", gripType)
	}

	var record WeightRecord
	err := query.Order("weight DESC, reps DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// DeleteWeightRecord removes a record after checking it belongs to the
// requesting user.
func (s *PGRelationStore) DeleteWeightRecord(ctx context.Context, recordID, userID string) error {
	var record WeightRecord
	err := s.db.WithContext(ctx).Where("id = ?", recordID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if record.UserID != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recordID, userID).
		Delete(&WeightRecord{}).Error
}
