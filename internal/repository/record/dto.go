package record

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/surveyd/internal/db"
	"github.com/kailas-cloud/surveyd/internal/domain"
	"github.com/kailas-cloud/surveyd/internal/domain/record"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
)

// document is the stored shape of a record. Keys match the HTTP response.
// Timestamps live in the document for MongoDB and in columns for SQLite.
type document struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID          string             `bson:"userId" json:"userId"`
	SurveyResults   []answerDoc        `bson:"surveyResults" json:"surveyResults"`
	OverallAnalysis string             `bson:"overallAnalysis" json:"overallAnalysis"`
	CatDog          string             `bson:"catDog" json:"catDog"`
	FurValue        string             `bson:"furValue" json:"furValue"`
	TailValue       string             `bson:"tailValue" json:"tailValue"`
	Description     string             `bson:"description" json:"description"`
	Mean            *float64           `bson:"mean,omitempty" json:"mean,omitempty"`
	Median          *float64           `bson:"median,omitempty" json:"median,omitempty"`
	StdDev          *float64           `bson:"stdDev,omitempty" json:"stdDev,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"-"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"-"`
}

type answerDoc struct {
	QuestionNumber int `bson:"questionNumber" json:"questionNumber"`
	QuestionValue  int `bson:"questionValue" json:"questionValue"`
}

// statsPatch is the merge document applied by the statistics update.
type statsPatch struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stdDev"`
}

func newDocument(d record.Draft, now time.Time) document {
	answers := make([]answerDoc, len(d.Answers))
	for i, a := range d.Answers {
		answers[i] = answerDoc{QuestionNumber: a.QuestionNumber, QuestionValue: a.QuestionValue}
	}
	return document{
		UserID:          d.UserID,
		SurveyResults:   answers,
		OverallAnalysis: d.Processed.OverallAnalysis,
		CatDog:          d.Processed.CatDog,
		FurValue:        d.Processed.FurValue,
		TailValue:       d.Processed.TailValue,
		Description:     d.Processed.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (d document) toStored(id string) record.Stored {
	answers := make([]record.Answer, len(d.SurveyResults))
	for i, a := range d.SurveyResults {
		answers[i] = record.Answer{QuestionNumber: a.QuestionNumber, QuestionValue: a.QuestionValue}
	}

	s := record.Stored{
		ID:      id,
		UserID:  d.UserID,
		Answers: answers,
		Processed: record.Processed{
			OverallAnalysis: d.OverallAnalysis,
			CatDog:          d.CatDog,
			FurValue:        d.FurValue,
			TailValue:       d.TailValue,
			Description:     d.Description,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Mean != nil && d.Median != nil && d.StdDev != nil {
		s.Statistics = &stats.Bundle{Mean: *d.Mean, Median: *d.Median, StdDev: *d.StdDev}
	}
	return s
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %w", domain.ErrPersistence, &db.Error{Op: op, Err: err})
}

func notFoundErr(id string) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrPersistence, domain.ErrRecordNotFound, id)
}
