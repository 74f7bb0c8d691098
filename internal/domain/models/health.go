package models

// HealthRecordType classifies a health intervention.
type HealthRecordType string

const (
	RecordVaccination HealthRecordType = "vaccination"
	RecordMedication  HealthRecordType = "medication"
	RecordCheckup     HealthRecordType = "checkup"
	RecordTreatment   HealthRecordType = "treatment"
)

// HealthRecordStatus tracks whether an intervention happened.
type HealthRecordStatus string

const (
	HealthCompleted HealthRecordStatus = "completed"
	HealthScheduled HealthRecordStatus = "scheduled"
	HealthOverdue   HealthRecordStatus = "overdue"
)

// HealthRecord is a vaccination, medication, checkup or treatment on a flock.
type HealthRecord struct {
	ID               int64              `json:"id,omitempty"`
	Flock            int64              `json:"flock"`
	RecordType       HealthRecordType   `json:"record_type"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	AdministeredBy   string             `json:"administered_by,omitempty"`
	DateAdministered Date               `json:"date_administered,omitzero"`
	NextDueDate      Date               `json:"next_due_date,omitzero"`
	Status           HealthRecordStatus `json:"status"`
	BirdsAffected    int                `json:"birds_affected"`
	Cost             Decimal            `json:"cost"`
}

// Validate checks the record before it is created.
func (r HealthRecord) Validate() error {
	if r.Flock <= 0 {
		return invalid("flock", "must reference a flock")
	}
	if r.Title == "" {
		return invalid("title", "must be provided")
	}
	if r.BirdsAffected < 0 {
		return invalid("birds_affected", "must not be negative")
	}

	switch r.RecordType {
	case RecordVaccination, RecordMedication, RecordCheckup, RecordTreatment:
	default:
		return invalid("record_type", "unknown value %q", r.RecordType)
	}

	switch r.Status {
	case "", HealthCompleted, HealthScheduled, HealthOverdue:
		return nil
	default:
		return invalid("status", "unknown value %q", r.Status)
	}
}
