package implementation

import (
	"context"
	"fmt"

	"ai-scheduler-be/internal/model"
	"ai-scheduler-be/internal/repository/contract"
	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/intent/extract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepositoryImpl struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) contract.ContactRepository {
	return &ContactRepositoryImpl{db: db}
}

func (r *ContactRepositoryImpl) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&model.Contact{})
}

func (r *ContactRepositoryImpl) FindAllByUser(ctx context.Context, userId string) ([]extract.Contact, error) {
	var rows []model.Contact
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]extract.Contact, len(rows))
	for i, row := range rows {
		out[i] = extract.Contact{ID: row.Id.String(), Name: row.Name, Email: row.Email}
	}
	return out, nil
}

func (r *ContactRepositoryImpl) ApplyBatch(ctx context.Context, userId string, batch []contactimport.Write) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var creates []model.Contact
		for _, w := range batch {
			switch w.Action {
			case contactimport.ActionCreate:
				creates = append(creates, model.Contact{Id: uuid.New(), UserId: userId, Name: w.Name, Email: w.Email})
			case contactimport.ActionUpdate:
				id, err := uuid.Parse(w.ContactID)
				if err != nil {
					return fmt.Errorf("contact id %q: %w", w.ContactID, err)
				}
				res := tx.Model(&model.Contact{}).
					Where("id = ? AND user_id = ?", id, userId).
					Updates(map[string]interface{}{"name": w.Name, "email": w.Email})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("contact %s: %w", w.ContactID, gorm.ErrRecordNotFound)
				}
			}
		}
		if len(creates) > 0 {
			if err := tx.Create(&creates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
