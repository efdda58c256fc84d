package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/healthml/strokepipe/pkg/errors"
	"github.com/healthml/strokepipe/pkg/log"
)

// missingBMI is how the raw file marks an absent body-mass-index value.
const missingBMI = "N/A"

// Load reads the raw dataset from a CSV file with a header row. Columns
// are located by name, extra columns (such as the source's id column) are
// ignored. A missing required column or an unparseable row is fatal: the
// pipeline never proceeds on a partial load.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening dataset %s", path)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading dataset %s", path)
	}

	log.For("dataset").Info().
		Str("path", path).
		Int("rows", len(records)).
		Msg("dataset loaded")
	return records, nil
}

// Read parses raw records from r. Split out from Load so tests can feed
// in-memory data.
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	for _, required := range Columns {
		if _, ok := colIdx[required]; !ok {
			return nil, errors.NewValidationError(required, "required column missing from header", header)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading line %d", line)
		}

		rec, err := parseRow(row, colIdx)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing line %d", line)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.ErrEmptyData
	}
	return records, nil
}

func parseRow(row []string, colIdx map[string]int) (Record, error) {
	var rec Record

	field := func(name string) string {
		return strings.TrimSpace(row[colIdx[name]])
	}

	rec.Gender = field("gender")
	rec.EverMarried = field("ever_married")
	rec.WorkType = field("work_type")
	rec.ResidenceType = field("Residence_type")
	rec.SmokingStatus = field("smoking_status")

	var err error
	if rec.Age, err = strconv.ParseFloat(field("age"), 64); err != nil {
		return rec, errors.NewValidationError("age", "not numeric", field("age"))
	}
	if rec.AvgGlucoseLevel, err = strconv.ParseFloat(field("avg_glucose_level"), 64); err != nil {
		return rec, errors.NewValidationError("avg_glucose_level", "not numeric", field("avg_glucose_level"))
	}

	// bmi arrives as text with "N/A" marking missing values. Coerce to
	// numeric here, normalizing the marker to NaN; Clean drops NaN rows.
	if bmi := field("bmi"); bmi == missingBMI || bmi == "" {
		rec.BMI = math.NaN()
	} else if rec.BMI, err = strconv.ParseFloat(bmi, 64); err != nil {
		return rec, errors.NewValidationError("bmi", "not numeric", bmi)
	}

	if rec.Hypertension, err = parseBinary(field("hypertension")); err != nil {
		return rec, errors.NewValidationError("hypertension", "not a 0/1 value", field("hypertension"))
	}
	if rec.HeartDisease, err = parseBinary(field("heart_disease")); err != nil {
		return rec, errors.NewValidationError("heart_disease", "not a 0/1 value", field("heart_disease"))
	}

	stroke, err := parseBinary(field("stroke"))
	if err != nil {
		return rec, errors.NewValidationError("stroke", "not a 0/1 value", field("stroke"))
	}
	rec.Stroke = Label(stroke)

	return rec, nil
}

func parseBinary(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v != 0 && v != 1 {
		return 0, errors.Newf("value %d is not binary", v)
	}
	return v, nil
}

// Clean applies the cleaning steps in order: drop records whose gender is
// not one of the two retained categories, then drop records with a missing
// bmi. No imputation is performed. The stroke field is already a two-level
// label after parsing.
func Clean(records []Record) []Record {
	cleaned := make([]Record, 0, len(records))
	droppedGender, droppedBMI := 0, 0

	for _, rec := range records {
		if rec.Gender != GenderMale && rec.Gender != GenderFemale {
			droppedGender++
			continue
		}
		if !rec.HasBMI() {
			droppedBMI++
			continue
		}
		cleaned = append(cleaned, rec)
	}

	log.For("dataset").Info().
		Int("input_rows", len(records)).
		Int("dropped_gender", droppedGender).
		Int("dropped_missing_bmi", droppedBMI).
		Int("clean_rows", len(cleaned)).
		Msg("dataset cleaned")
	return cleaned
}
