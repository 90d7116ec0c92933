package models

// EHRModel is a patient's electronic health record. FullRecord is the free text
// handed to the summarizer.
type EHRModel struct {
	Base
	PatientID     string       `json:"patientId"     gorm:"type:varchar(36);uniqueIndex;not null"`
	LastUpdated   string       `json:"lastUpdated"   gorm:"type:varchar(10)"`
	BloodPressure string       `json:"bloodPressure"`
	HeartRate     int          `json:"heartRate"`
	Temperature   float64      `json:"temperature"`
	Allergies     StringArray  `json:"allergies"     gorm:"type:longtext"`
	Medications   []Medication `json:"medications"   gorm:"type:longtext;serializer:json"`
	Notes         string       `json:"notes"         gorm:"type:text"`
	FullRecord    string       `json:"fullRecord"    gorm:"type:longtext"`
}

func (EHRModel) TableName() string { return "ehrs" }

type Medication struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Reminders bool   `json:"reminders"`
}
