package domain

import "time"

// OptionsPerQuestion is the fixed option count for every generated question.
const OptionsPerQuestion = 4

// Quiz generation bounds for num_questions.
const (
	MinQuestions = 1
	MaxQuestions = 15
)

// Quiz is a generated assessment tied to a session. Correct answers are
// retained server-side and never serialized before grading.
type Quiz struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
	GradedAt  *time.Time `json:"graded_at,omitempty"`
}

// Graded reports whether the quiz has already been submitted.
func (q *Quiz) Graded() bool {
	return q.GradedAt != nil
}

// Question holds four options, exactly one of which is correct. Options
// keep generation order; they are never shuffled.
type Question struct {
	Text         string   `json:"question"`
	Options      []Option `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// CorrectLetter returns the letter label (A-D) of the correct option.
func (q *Question) CorrectLetter() string {
	return string(rune('A' + q.CorrectIndex))
}

// Option is a single answer choice
type Option struct {
	Text string `json:"text"`
}

// GenerateQuizRequest asks for a quiz over a session's document
type GenerateQuizRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	NumQuestions int    `json:"num_questions"`
}

// QuizQuestionView is a question as shown to the client before grading:
// no correctness flags, no explanation.
type QuizQuestionView struct {
	QuestionID int              `json:"question_id"`
	Question   string           `json:"question"`
	Options    []QuizOptionView `json:"options"`
}

// QuizOptionView is an option stripped of its correctness flag
type QuizOptionView struct {
	Text string `json:"text"`
}

// GenerateQuizResponse returns the quiz identifier the client must echo
// back for grading, plus the stripped questions.
type GenerateQuizResponse struct {
	TestID    string             `json:"test_id"`
	Questions []QuizQuestionView `json:"questions"`
}

// SubmitQuizRequest maps each question index to the chosen option index.
// Every question must be answered.
type SubmitQuizRequest struct {
	TestID  string      `json:"test_id" binding:"required"`
	Answers map[int]int `json:"answers"`
}

// GradedOption is an option with its correctness revealed after grading
type GradedOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionResult is the per-question grading breakdown
type QuestionResult struct {
	Question      string         `json:"question"`
	Options       []GradedOption `json:"options"`
	SelectedIndex int            `json:"selected_index"`
	Correct       bool           `json:"correct"`
	CorrectAnswer string         `json:"correct_answer"`
	Explanation   string         `json:"explanation"`
}

// SubmitQuizResponse is the full grading result
type SubmitQuizResponse struct {
	Results    []QuestionResult `json:"results"`
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage float64          `json:"percentage"`
}
