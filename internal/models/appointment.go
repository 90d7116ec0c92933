package models

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

type AppointmentModel struct {
	Base
	PatientID   string            `json:"patientId"   gorm:"type:varchar(36);index;not null"`
	PatientName string            `json:"patientName"`
	DoctorID    string            `json:"doctorId"    gorm:"type:varchar(36);index;not null"`
	DoctorName  string            `json:"doctorName"`
	Date        string            `json:"date"        gorm:"type:varchar(10);index"`
	Time        string            `json:"time"        gorm:"type:varchar(16)"`
	Status      AppointmentStatus `json:"status"      gorm:"type:varchar(16);index"`
	Notes       string            `json:"notes,omitempty" gorm:"type:text"`
}

func (AppointmentModel) TableName() string { return "appointments" }
