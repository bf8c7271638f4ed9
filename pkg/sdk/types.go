package surveyd

import (
	"time"

	"github.com/kailas-cloud/surveyd/internal/domain/record"
	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
	surveyuc "github.com/kailas-cloud/surveyd/internal/usecase/survey"
)

// Survey is one user's submission. Validation happens in Process.
type Survey struct {
	UserID  string
	Answers []Answer
}

// Answer is a single question/value pair.
type Answer struct {
	Question int
	Value    int
}

// Result is a processed survey as returned by Process.
type Result struct {
	ID              string
	OverallAnalysis string
	CatDog          string
	FurValue        string
	TailValue       string
	Description     string
	Mean            float64
	Median          float64
	StdDev          float64
}

// Record is a stored survey as returned by Record.
// HasStatistics is false if the statistics update never ran.
type Record struct {
	Result
	UserID        string
	Answers       []Answer
	HasStatistics bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func toPayload(s Survey) domsurvey.Payload {
	results := make([]domsurvey.ResultPayload, len(s.Answers))
	for i, a := range s.Answers {
		results[i] = domsurvey.ResultPayload{QuestionNumber: a.Question, QuestionValue: a.Value}
	}
	return domsurvey.Payload{UserID: s.UserID, SurveyResults: results}
}

func fromResult(r surveyuc.Result) Result {
	return Result{
		ID:              r.ID,
		OverallAnalysis: r.Processed.OverallAnalysis,
		CatDog:          r.Processed.CatDog,
		FurValue:        r.Processed.FurValue,
		TailValue:       r.Processed.TailValue,
		Description:     r.Processed.Description,
		Mean:            r.Statistics.Mean,
		Median:          r.Statistics.Median,
		StdDev:          r.Statistics.StdDev,
	}
}

func fromStored(s record.Stored) Record {
	answers := make([]Answer, len(s.Answers))
	for i, a := range s.Answers {
		answers[i] = Answer{Question: a.QuestionNumber, Value: a.QuestionValue}
	}
	rec := Record{
		Result: Result{
			ID:              s.ID,
			OverallAnalysis: s.Processed.OverallAnalysis,
			CatDog:          s.Processed.CatDog,
			FurValue:        s.Processed.FurValue,
			TailValue:       s.Processed.TailValue,
			Description:     s.Processed.Description,
		},
		UserID:        s.UserID,
		Answers:       answers,
		HasStatistics: s.HasStatistics(),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Statistics != nil {
		rec.Mean = s.Statistics.Mean
		rec.Median = s.Statistics.Median
		rec.StdDev = s.Statistics.StdDev
	}
	return rec
}
