package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/healthconnect/portal/internal/models"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// Seed inserts the demo users, health records and appointments. Rows that
// already exist are left untouched, so it is safe to run on every start.
// today dates the appointments that are always due on the current day.
func Seed(ctx context.Context, db *gorm.DB, today time.Time) (int, error) {
	inserted := 0
	insert := func(row any) error {
		err := db.WithContext(ctx).Create(row).Error
		if isDuplicate(err) {
			return nil
		}
		if err != nil {
			return err
		}
		inserted++
		return nil
	}

	for i := range fixtureUsers {
		user := fixtureUsers[i]
		if err := insert(&user); err != nil {
			return inserted, fmt.Errorf("seed user %s: %w", user.ID, err)
		}
	}
	for _, record := range fixtureEHRs() {
		if err := insert(record); err != nil {
			return inserted, fmt.Errorf("seed record %s: %w", record.ID, err)
		}
	}
	for _, appt := range fixtureAppointments(today.Format("2006-01-02")) {
		if err := insert(appt); err != nil {
			return inserted, fmt.Errorf("seed appointment %s: %w", appt.ID, err)
		}
	}
	return inserted, nil
}

// RefreshAppointmentDates moves the scheduled fixture appointments that fall
// on "today" to the given day. It returns the number of rows updated.
func RefreshAppointmentDates(ctx context.Context, db *gorm.DB, today time.Time) (int64, error) {
	var ids []string
	for _, appt := range fixtureAppointments("") {
		if appt.Date == "" {
			ids = append(ids, appt.ID)
		}
	}
	result := db.WithContext(ctx).Model(&models.AppointmentModel{}).
		Where("id IN ? AND status = ?", ids, models.AppointmentScheduled).
		Update("date", today.Format("2006-01-02"))
	return result.RowsAffected, result.Error
}

func isDuplicate(err error) bool {
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func fixtureUser(id, name, email string, role models.Role, avatar string, status models.VerificationStatus) models.UserModel {
	return models.UserModel{
		Base:               models.Base{ID: id},
		Name:               name,
		Email:              email,
		Role:               role,
		AvatarURL:          "https://i.pravatar.cc/150?u=" + avatar,
		VerificationStatus: status,
	}
}

var fixtureUsers = []models.UserModel{
	fixtureUser("patient1", "Liam Carter", "liam.carter@example.com", models.RolePatient, "avatar-1", ""),
	fixtureUser("patient2", "Olivia Chen", "olivia.chen@example.com", models.RolePatient, "avatar-2", ""),
	fixtureUser("doctor1", "Dr. Evelyn Reed", "evelyn.reed@clinic.com", models.RoleDoctor, "avatar-3", models.VerificationVerified),
	fixtureUser("doctor2", "Dr. Ben Stone", "ben.stone@clinic.com", models.RoleDoctor, "avatar-4", models.VerificationPending),
	fixtureUser("admin1", "Noah Patel", "noah.patel@hospital.com", models.RoleHospitalAdmin, "avatar-5", ""),
	fixtureUser("doctor3", "Dr. Chloe King", "chloe.king@clinic.com", models.RoleDoctor, "avatar-6", models.VerificationRejected),
}

func fixtureAppointments(today string) []*models.AppointmentModel {
	return []*models.AppointmentModel{
		{Base: models.Base{ID: "appt1"}, PatientID: "patient1", PatientName: "Liam Carter", DoctorID: "doctor1", DoctorName: "Dr. Evelyn Reed", Date: today, Time: "10:00 AM", Status: models.AppointmentScheduled},
		{Base: models.Base{ID: "appt2"}, PatientID: "patient2", PatientName: "Olivia Chen", DoctorID: "doctor1", DoctorName: "Dr. Evelyn Reed", Date: today, Time: "11:30 AM", Status: models.AppointmentScheduled},
		{Base: models.Base{ID: "appt3"}, PatientID: "patient1", PatientName: "Liam Carter", DoctorID: "doctor2", DoctorName: "Dr. Ben Stone", Date: "2024-08-15", Time: "02:00 PM", Status: models.AppointmentCompleted},
		{Base: models.Base{ID: "appt4"}, PatientID: "patient2", PatientName: "Olivia Chen", DoctorID: "doctor3", DoctorName: "Dr. Chloe King", Date: "2024-08-18", Time: "09:00 AM", Status: models.AppointmentCancelled},
	}
}

func fixtureEHRs() []*models.EHRModel {
	return []*models.EHRModel{
		{
			Base:          models.Base{ID: "ehr1"},
			PatientID:     "patient1",
			LastUpdated:   "2024-07-20",
			BloodPressure: "120/80 mmHg",
			HeartRate:     72,
			Temperature:   98.6,
			Allergies:     models.StringArray{"Peanuts"},
			Medications: []models.Medication{
				{ID: "med1", Name: "Lisinopril", Dosage: "10mg", Frequency: "Once a day", Reminders: true},
				{ID: "med2", Name: "Metformin", Dosage: "500mg", Frequency: "Twice a day", Reminders: true},
				{ID: "med3", Name: "Ibuprofen", Dosage: "200mg", Frequency: "As needed for pain", Reminders: false},
			},
			Notes:      "Patient is in good health. Follow up in 6 months.",
			FullRecord: liamCarterRecord,
		},
		{
			Base:          models.Base{ID: "ehr2"},
			PatientID:     "patient2",
			LastUpdated:   "2024-07-18",
			BloodPressure: "130/85 mmHg",
			HeartRate:     80,
			Temperature:   99.1,
			Allergies:     models.StringArray{"None"},
			Medications:   []models.Medication{},
			Notes:         "Slightly elevated blood pressure. Recommended diet and exercise changes.",
			FullRecord:    oliviaChenRecord,
		},
	}
}

const liamCarterRecord = `
Patient: Liam Carter (DOB: 1985-05-15)
Last Visit: 2024-07-20
Chief Complaint: Annual Checkup

Vitals:
- Blood Pressure: 120/80 mmHg
- Heart Rate: 72 bpm
- Temperature: 98.6°F (37°C)
- Weight: 180 lbs
- Height: 6'0"

History of Present Illness:
Patient presents for a routine annual physical examination. Reports feeling well, with no acute complaints. He maintains an active lifestyle, exercising 3-4 times per week. Diet is generally balanced. No new medications or supplements.

Past Medical History:
- Hypertension, diagnosed 2022, well-controlled on Lisinopril.
- No history of surgeries.

Allergies:
- Known allergy to Peanuts (anaphylaxis). Patient carries an EpiPen.

Medications:
- Lisinopril 10mg, once daily.

Family History:
- Father with hypertension and type 2 diabetes.
- Mother is healthy.

Social History:
- Non-smoker, occasional alcohol use (2-3 drinks per week).
- Works as a software engineer.

Review of Systems:
- All systems reviewed and are negative except as noted in HPI.

Physical Examination:
- GENERAL: Well-appearing, well-nourished male in no acute distress.
- HEENT: Normocephalic, atraumatic. PERRLA. TMs clear.
- CARDIOVASCULAR: Regular rate and rhythm, no murmurs, rubs, or gallops.
- PULMONARY: Lungs clear to auscultation bilaterally.
- ABDOMEN: Soft, non-tender, non-distended.
- SKIN: Warm and dry, no rashes or lesions.

Assessment and Plan:
1.  **Stable Hypertension:** Continue Lisinopril 10mg daily. Patient's blood pressure is well-controlled. Advised to continue monitoring at home.
2.  **Health Maintenance:** Patient is up to date on all vaccinations. Encouraged to continue healthy lifestyle habits.
3.  **Peanut Allergy:** Reminded patient to avoid peanuts and to carry his EpiPen at all times.

Follow-up in 6 months for blood pressure check. Return sooner if any new concerns arise.
`

const oliviaChenRecord = `
Patient: Olivia Chen (DOB: 1992-11-22)
Last Visit: 2024-07-18
Chief Complaint: Follow-up for borderline high blood pressure.

Vitals:
- Blood Pressure: 130/85 mmHg
- Heart Rate: 80 bpm
- Temperature: 99.1°F (37.3°C)
- Weight: 145 lbs
- Height: 5'5"

History of Present Illness:
Ms. Chen returns for a follow-up visit to discuss her blood pressure, which was noted to be borderline elevated at her last visit three months ago. She reports some work-related stress but has been trying to incorporate more walking into her daily routine. Denies headaches, chest pain, or dizziness.

Past Medical History:
- No significant past medical history.
- G1P1, normal spontaneous vaginal delivery in 2020.

Allergies:
- No known drug allergies.

Medications:
- None.

Family History:
- Mother has hypertension.
- Father is healthy.

Social History:
- Non-smoker, denies alcohol or illicit drug use.
- Works as a graphic designer, reports long hours and deadlines.

Review of Systems:
- Constitutional: Reports some fatigue, attributes to work.
- All other systems reviewed and are negative.

Physical Examination:
- GENERAL: Alert and oriented female, appears slightly fatigued but in no distress.
- CARDIOVASCULAR: RRR, S1/S2 normal. No edema.
- PULMONARY: Lungs clear.
- ABDOMEN: Soft, non-tender.

Assessment and Plan:
1.  **Elevated Blood Pressure:** BP remains in the elevated range. Discussed lifestyle modifications as the first line of treatment.
    -   Recommended DASH diet, focusing on reducing sodium intake.
    -   Advised increasing physical activity to 150 minutes of moderate-intensity exercise per week.
    -   Provided resources for stress management techniques (e.g., mindfulness apps).
2.  **Health Maintenance:** Patient is due for a Pap smear, which was scheduled.

Plan to recheck blood pressure in 3 months. If still elevated, will consider starting pharmacotherapy. Patient agreeable to the plan.
`
