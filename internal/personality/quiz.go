// Gatherly - Group Outing Planning and Place Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gatherly

package personality

import (
	"errors"
	"fmt"
	"math"
)

// Quiz limits.
const (
	MinAnswer     = 1
	MaxAnswer     = 5
	MaxQuestions  = 20
	neutralAnswer = 3
)

var (
	// ErrNoAnswers is returned when a quiz submission has no answers.
	ErrNoAnswers = errors.New("quiz has no answers")

	// ErrTooManyAnswers is returned when a submission exceeds MaxQuestions.
	ErrTooManyAnswers = errors.New("quiz has too many answers")

	// ErrInvalidAnswer is returned for answers outside the Likert range or with an unknown key.
	ErrInvalidAnswer = errors.New("invalid quiz answer")
)

// Keying says which end of the scale a question measures.
type Keying int

const (
	// KeyedExtrovert means "strongly agree" points toward extroversion.
	KeyedExtrovert Keying = 1
	// KeyedIntrovert means "strongly agree" points toward introversion.
	KeyedIntrovert Keying = -1
)

// Answer is one Likert response (1 = strongly disagree, 5 = strongly agree).
type Answer struct {
	QuestionID string `json:"question_id" validate:"required,max=64"`
	Value      int    `json:"value" validate:"min=1,max=5"`
	Keyed      Keying `json:"keyed" validate:"oneof=-1 1"`
}

// QuizResult is the outcome of scoring a quiz submission.
type QuizResult struct {
	AdjustmentFactor float64 `json:"adjustment_factor"`
	PersonalityType  Type    `json:"personality_type"`
	Answered         int     `json:"answered"`
}

// ScoreQuiz converts Likert answers into an adjustment factor.
// Introvert-keyed answers are reversed, the keyed mean is centered on the
// neutral answer and scaled so that all-5 maps to +1 and all-1 maps to -1.
func ScoreQuiz(answers []Answer) (QuizResult, error) {
	if len(answers) == 0 {
		return QuizResult{}, ErrNoAnswers
	}
	if len(answers) > MaxQuestions {
		return QuizResult{}, fmt.Errorf("%w: %d > %d", ErrTooManyAnswers, len(answers), MaxQuestions)
	}

	var sum float64
	for i, a := range answers {
		if a.Value < MinAnswer || a.Value > MaxAnswer {
			return QuizResult{}, fmt.Errorf("%w: answer %d value %d", ErrInvalidAnswer, i, a.Value)
		}
		switch a.Keyed {
		case KeyedExtrovert:
			sum += float64(a.Value)
		case KeyedIntrovert:
			sum += float64(MinAnswer + MaxAnswer - a.Value)
		default:
			return QuizResult{}, fmt.Errorf("%w: answer %d keyed %d", ErrInvalidAnswer, i, a.Keyed)
		}
	}

	mean := sum / float64(len(answers))
	factor := Clamp((mean - neutralAnswer) / float64(neutralAnswer-MinAnswer))
	factor = math.Round(factor*100) / 100

	return QuizResult{
		AdjustmentFactor: factor,
		PersonalityType:  Bucket(factor),
		Answered:         len(answers),
	}, nil
}
