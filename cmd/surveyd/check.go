package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/surveyd/internal/domain/analysis"
	"github.com/kailas-cloud/surveyd/internal/domain/stats"
	domsurvey "github.com/kailas-cloud/surveyd/internal/domain/survey"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.json|->",
	Short: "Validate a survey file and print its derived attributes and statistics",
	Long: "Runs validation, classification and statistics locally. " +
		"No description is generated and nothing is stored.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open survey: %w", err)
			}
			defer f.Close()
			in = f
		}
		return runCheck(in, cmd.OutOrStdout())
	},
}

type checkInput struct {
	UserID        string `json:"userId"`
	SurveyResults []struct {
		QuestionNumber int `json:"questionNumber"`
		QuestionValue  int `json:"questionValue"`
	} `json:"surveyResults"`
}

type checkOutput struct {
	UserID          string  `json:"userId"`
	OverallAnalysis string  `json:"overallAnalysis"`
	CatDog          string  `json:"catDog"`
	FurValue        string  `json:"furValue"`
	TailValue       string  `json:"tailValue"`
	Mean            float64 `json:"mean"`
	Median          float64 `json:"median"`
	StdDev          float64 `json:"stdDev"`
}

func runCheck(r io.Reader, w io.Writer) error {
	var in checkInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("decode survey: %w", err)
	}

	p := domsurvey.Payload{UserID: in.UserID}
	for _, it := range in.SurveyResults {
		p.SurveyResults = append(p.SurveyResults, domsurvey.ResultPayload{
			QuestionNumber: it.QuestionNumber,
			QuestionValue:  it.QuestionValue,
		})
	}

	s, err := domsurvey.Parse(p)
	if err != nil {
		return fmt.Errorf("invalid survey: %w", err)
	}

	a := analysis.Classify(s)
	b := stats.Summarize(s.Values())

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(checkOutput{ //nolint:wrapcheck // terminal output
		UserID:          s.UserID(),
		OverallAnalysis: a.OverallAnalysis,
		CatDog:          a.CatDog,
		FurValue:        a.FurValue,
		TailValue:       a.TailValue,
		Mean:            b.Mean,
		Median:          b.Median,
		StdDev:          b.StdDev,
	})
}
