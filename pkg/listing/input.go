package listing

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// NumericInput is the staged numeric part of the filter panel.
type NumericInput struct {
	RatingCountMin *int     `validate:"omitempty,gte=0"`
	AverageRating  *float64 `validate:"omitempty,gte=0,lte=10"`
}

// ParseNumericInput turns the raw text of the numeric filter fields into
// values. Blank, unparsable or out-of-range input leaves the field unset;
// it is never reported as an error. A decimal comma is accepted.
func ParseNumericInput(ratingCountMin, averageRating string) NumericInput {
	in := NumericInput{
		RatingCountMin: parseInt(ratingCountMin),
		AverageRating:  parseFloat(averageRating),
	}

	err := getValidator().Struct(in)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return in
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "RatingCountMin":
			in.RatingCountMin = nil
		case "AverageRating":
			in.AverageRating = nil
		}
	}
	return in
}

// ParseRatingCountMin parses a minimum rating count, unset when invalid.
func ParseRatingCountMin(raw string) *int {
	return ParseNumericInput(raw, "").RatingCountMin
}

// ParseAverageRating parses a minimum average rating, unset when invalid.
func ParseAverageRating(raw string) *float64 {
	return ParseNumericInput("", raw).AverageRating
}

func parseInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func parseFloat(raw string) *float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !validRatingNumber(v) {
		return nil
	}
	return &v
}

func validRatingNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
