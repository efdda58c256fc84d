package main

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/healthml/strokepipe/dataset"
	"github.com/healthml/strokepipe/pipeline"
	"github.com/healthml/strokepipe/pkg/errors"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Refit on the full dataset and score records from a JSON file",
	Long: "Predict fits the model on the cleaned dataset and scores the " +
		"records in --input, a JSON object or array of objects with the same " +
		"field names as the CSV columns. Use \"-\" to read from stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataPath, _ := cmd.Flags().GetString("data")
		mtry, _ := cmd.Flags().GetInt("mtry")
		trees, _ := cmd.Flags().GetInt("trees")
		seed, _ := cmd.Flags().GetUint64("seed")
		input, _ := cmd.Flags().GetString("input")

		features, err := readInput(cmd, input)
		if err != nil {
			return err
		}

		records, err := dataset.Load(dataPath)
		if err != nil {
			return err
		}
		predictor, err := pipeline.NewPredictor(dataset.Clean(records), mtry, trees, seed)
		if err != nil {
			return err
		}

		preds, err := predictor.PredictBatch(features)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(preds)
	},
}

func init() {
	addPipelineFlags(predictCmd)
	predictCmd.Flags().Int("mtry", 4, "per-split feature count of the deployed forest")
	predictCmd.Flags().String("input", "", "JSON file with the records to score (\"-\" for stdin)")
	_ = predictCmd.MarkFlagRequired("input")
}

// inputRecord mirrors dataset.Features with pointer numeric fields so an
// absent key is distinguishable from an explicit zero. Absent numerics map
// to NaN, which the recipe's validation rejects by field name.
type inputRecord struct {
	Gender          string   `json:"gender"`
	Age             *float64 `json:"age"`
	Hypertension    int      `json:"hypertension"`
	HeartDisease    int      `json:"heart_disease"`
	EverMarried     string   `json:"ever_married"`
	WorkType        string   `json:"work_type"`
	ResidenceType   string   `json:"Residence_type"`
	AvgGlucoseLevel *float64 `json:"avg_glucose_level"`
	BMI             *float64 `json:"bmi"`
	SmokingStatus   string   `json:"smoking_status"`
}

func (in *inputRecord) features() dataset.Features {
	return dataset.Features{
		Gender:          in.Gender,
		Age:             numericOrNaN(in.Age),
		Hypertension:    in.Hypertension,
		HeartDisease:    in.HeartDisease,
		EverMarried:     in.EverMarried,
		WorkType:        in.WorkType,
		ResidenceType:   in.ResidenceType,
		AvgGlucoseLevel: numericOrNaN(in.AvgGlucoseLevel),
		BMI:             numericOrNaN(in.BMI),
		SmokingStatus:   in.SmokingStatus,
	}
}

func numericOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// readInput decodes --input as either a single record object or an array of
// them. Unknown JSON fields are rejected so typos surface instead of
// silently feeding zero values to the model; omitted numeric fields become
// NaN and fail validation downstream.
func readInput(cmd *cobra.Command, path string) ([]dataset.Features, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}

	var records []inputRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		var single inputRecord
		dec = json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&single); err != nil {
			return nil, errors.Wrap(err, "decode input")
		}
		records = []inputRecord{single}
	}

	features := make([]dataset.Features, len(records))
	for i := range records {
		features[i] = records[i].features()
	}
	return features, nil
}
