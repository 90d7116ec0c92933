package records

import (
	"context"
	"errors"
	"strings"

	"github.com/healthconnect/portal/internal/models"
	"github.com/healthconnect/portal/internal/pkg/pagination"
	"github.com/healthconnect/portal/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMedicationNotFound is returned when a record has no medication with the
// requested id.
var ErrMedicationNotFound = errors.New("medication not found")

// Repository reads and updates users, health records and appointments. Missing rows come
// back as gorm.ErrRecordNotFound.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindUser(ctx context.Context, id string) (*models.UserModel, error) {
	var user models.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FirstUserByRole returns the earliest seeded user holding role.
func (r *Repository) FirstUserByRole(ctx context.Context, role models.Role) (*models.UserModel, error) {
	var user models.UserModel
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at ASC, id ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers pages through users holding role, ordered by name. A non-empty
// search narrows the page to names containing it.
func (r *Repository) ListUsers(ctx context.Context, role models.Role, q pagination.Query, search string) ([]models.UserModel, response.Pagination, error) {
	var users []models.UserModel
	query := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("role = ?", role)
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("name LIKE ?", "%"+likeEscaper.Replace(search)+"%")
	}
	meta, err := pagination.Paginate(query.Order("name ASC"), q, &users)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return users, meta, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SetVerification moves the user with id and role to status and returns the
// updated row.
func (r *Repository) SetVerification(ctx context.Context, id string, role models.Role, status models.VerificationStatus) (*models.UserModel, error) {
	res := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ? AND role = ?", id, role).
		Update("verification_status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindUser(ctx, id)
}

func (r *Repository) FindEHRByPatient(ctx context.Context, patientID string) (*models.EHRModel, error) {
	var record models.EHRModel
	if err := r.db.WithContext(ctx).Where("patient_id = ?", patientID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListAppointments returns the appointments visible to user: their own for
// patients and doctors, every appointment for hospital admins.
func (r *Repository) ListAppointments(ctx context.Context, user *models.UserModel) ([]models.AppointmentModel, error) {
	query := r.db.WithContext(ctx).Order("date DESC, time ASC")
	switch user.Role {
	case models.RolePatient:
		query = query.Where("patient_id = ?", user.ID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", user.ID)
	}
	var appointments []models.AppointmentModel
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// SetMedicationReminders switches reminders for one medication on a patient's
// record. The record row is locked for the read-modify-write.
func (r *Repository) SetMedicationReminders(ctx context.Context, patientID, medicationID string, enabled bool) (*models.EHRModel, error) {
	var record models.EHRModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("patient_id = ?", patientID).
			First(&record).Error; err != nil {
			return err
		}
		found := false
		for i := range record.Medications {
			if record.Medications[i].ID == medicationID {
				record.Medications[i].Reminders = enabled
				found = true
				break
			}
		}
		if !found {
			return ErrMedicationNotFound
		}
		return tx.Model(&record).Select("medications").Updates(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
