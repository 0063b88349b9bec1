package model

import "time"

// DatasetKind identifies which source dataset a record came from.
// A record's dataset tag never changes after ingestion.
type DatasetKind string

const (
	DatasetDisappearance DatasetKind = "disappearance" // missing-person reports
	DatasetCorpse        DatasetKind = "corpse"        // corpse-discovery reports
	DatasetHomicide      DatasetKind = "homicide"      // homicide reports
)

// EventType returns the timeline event type recorded by this dataset.
func (k DatasetKind) EventType() EventType {
	switch k {
	case DatasetDisappearance:
		return EventDisappearance
	case DatasetCorpse:
		return EventCorpseFound
	case DatasetHomicide:
		return EventHomicide
	default:
		return EventOther
	}
}

// IsDeath reports whether records of this kind describe a death event.
func (k DatasetKind) IsDeath() bool {
	return k == DatasetCorpse || k == DatasetHomicide
}

// Sex is the normalized sex code. A closed three-value enumeration:
// anything that is not recognizably male or female is SexUnknown.
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "unknown"
)

// Compatible reports whether two sex codes could describe the same person.
// Unknown is compatible with anything: it is an absence, not a wildcard value
// that equals another unknown.
func (s Sex) Compatible(other Sex) bool {
	return s == other || s == SexUnknown || other == SexUnknown
}

// Identity is the shared identity sub-structure of every record kind.
// Raw fields are kept as ingested; normalized fields are derived once by the
// ingestion pipeline and owned by the record.
type Identity struct {
	ID      string      `json:"id"`      // stable per-row identifier, unique within a dataset
	Dataset DatasetKind `json:"dataset"` // source dataset tag, immutable

	// Raw fields as they appeared in the source.
	Name       string `json:"name"`
	MotherName string `json:"mother_name,omitempty"`
	FatherName string `json:"father_name,omitempty"`
	CPF        string `json:"cpf,omitempty"`
	RG         string `json:"rg,omitempty"`
	RawBirth   string `json:"raw_birth,omitempty"`
	RawSex     string `json:"raw_sex,omitempty"`
	Narrative  string `json:"narrative,omitempty"`
	Location   string `json:"location,omitempty"`

	// Normalized fields. Unparseable input degrades to the zero value / nil,
	// never to a guess.
	NormName   string     `json:"norm_name"`
	NormMother string     `json:"norm_mother,omitempty"`
	NormCPF    string     `json:"norm_cpf,omitempty"`
	NormRG     string     `json:"norm_rg,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	BirthYear  *int       `json:"birth_year,omitempty"`
	Sex        Sex        `json:"sex"`
	EventDate  *time.Time `json:"event_date,omitempty"`

	// EstimatedAge is the age at the event: computed from the birth date when
	// it parsed, otherwise taken from the reported age-at-occurrence column.
	EstimatedAge *int `json:"estimated_age,omitempty"`

	Keys KeySet `json:"keys"`
}

// Event projects the identity into a timeline event for correlation.
func (id *Identity) Event() Event {
	ev := Event{
		RecordID: id.ID,
		Dataset:  id.Dataset,
		Type:     id.Dataset.EventType(),
		Name:     id.Name,
		Location: id.Location,
	}
	if id.EventDate != nil {
		ev.Date = *id.EventDate
	}
	return ev
}

// Disappearance is a missing-person report row.
type Disappearance struct {
	Identity
	ReportNumber string `json:"report_number,omitempty"`
	Located      string `json:"located,omitempty"` // free-text "person located" flag from the source
	Unit         string `json:"unit,omitempty"`    // registering police unit
}

// Corpse is a corpse-discovery report row.
type Corpse struct {
	Identity
	ReportNumber  string `json:"report_number,omitempty"`
	PresumedCause string `json:"presumed_cause,omitempty"`
	HasIMLReport  bool   `json:"has_iml_report,omitempty"`
}

// Homicide is a homicide report row.
type Homicide struct {
	Identity
	ReportNumber string `json:"report_number,omitempty"`
	Weapon       string `json:"weapon,omitempty"`
	Circumstance string `json:"circumstance,omitempty"`
}
