package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ashwinbm/docquiz/internal/config"
	"github.com/ashwinbm/docquiz/internal/domain"
	"github.com/ashwinbm/docquiz/internal/repository"
)

const quizSystemPrompt = `You generate multiple-choice questions from document excerpts.
Every question has exactly 4 options with exactly one correct answer.
Respond with a JSON array only, no prose around it.`

const quizUserPromptFormat = `Based on the following text, generate %d multiple-choice questions with 4 options each.

IMPORTANT RULES:
- Each question must have EXACTLY ONE correct answer
- Mark is_correct as true for ONLY ONE option
- All other options must have is_correct as false
- Provide a brief explanation for each question

Format your response as a JSON array with this structure:
[
  {
    "question": "Question text here?",
    "options": [
      {"text": "Option A", "is_correct": false},
      {"text": "Option B", "is_correct": true},
      {"text": "Option C", "is_correct": false},
      {"text": "Option D", "is_correct": false}
    ],
    "explanation": "Explanation why B is correct"
  }
]

Text:
%s

Generate exactly %d questions in JSON format. Remember: ONLY ONE is_correct per question!`

// QuizService generates and grades multiple-choice quizzes over a session's
// document.
type QuizService struct {
	cfg       *config.Config
	sessions  repository.SessionRepository
	quizzes   repository.QuizRepository
	retriever Retriever
	generator Generator
	log       *zap.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(
	cfg *config.Config,
	sessions repository.SessionRepository,
	quizzes repository.QuizRepository,
	retriever Retriever,
	generator Generator,
	log *zap.Logger,
) *QuizService {
	return &QuizService{
		cfg:       cfg,
		sessions:  sessions,
		quizzes:   quizzes,
		retriever: retriever,
		generator: generator,
		log:       log,
	}
}

// rawQuestion mirrors the JSON shape the model is asked to emit
type rawQuestion struct {
	Question    string      `json:"question"`
	Options     []rawOption `json:"options"`
	Explanation string      `json:"explanation"`
}

type rawOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Generate samples a broad set of chunks, asks the model for exactly
// numQuestions structured items, validates them strictly and stores the
// quiz with its correct answers retained server-side. The response strips
// every correctness flag and explanation.
func (s *QuizService) Generate(ctx context.Context, sessionID string, numQuestions int) (*domain.GenerateQuizResponse, error) {
	if numQuestions < domain.MinQuestions || numQuestions > domain.MaxQuestions {
		return nil, fmt.Errorf("%w: num_questions must be between %d and %d",
			domain.ErrInvalidArgument, domain.MinQuestions, domain.MaxQuestions)
	}

	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	chunks, err := s.retriever.Sample(ctx, sessionID, numQuestions*s.cfg.Quiz.ChunksPerQuestion)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	contextText := clip(strings.Join(texts, "\n\n"), s.cfg.Quiz.MaxContextChars)

	user := fmt.Sprintf(quizUserPromptFormat, numQuestions, contextText, numQuestions)
	raw, err := s.generator.Complete(ctx, quizSystemPrompt, user, s.cfg.Quiz.MaxTokens, s.cfg.Quiz.Temperature)
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(raw, numQuestions)
	if err != nil {
		s.log.Warn("quiz generation produced malformed output",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, err
	}

	quiz := &domain.Quiz{
		SessionID: sessionID,
		Questions: questions,
	}
	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}

	s.log.Info("quiz generated",
		zap.String("session_id", sessionID),
		zap.String("test_id", quiz.ID),
		zap.Int("questions", len(questions)),
	)

	views := make([]domain.QuizQuestionView, len(questions))
	for i, q := range questions {
		options := make([]domain.QuizOptionView, len(q.Options))
		for j, opt := range q.Options {
			options[j] = domain.QuizOptionView{Text: opt.Text}
		}
		views[i] = domain.QuizQuestionView{
			QuestionID: i,
			Question:   q.Text,
			Options:    options,
		}
	}

	return &domain.GenerateQuizResponse{
		TestID:    quiz.ID,
		Questions: views,
	}, nil
}

// parseQuestions extracts the JSON array from the raw model output and
// validates it against the expected schema. Any violation fails with
// ErrGenerationMalformed; nothing is coerced silently.
func parseQuestions(raw string, numQuestions int) ([]domain.Question, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in model output", domain.ErrGenerationMalformed)
	}

	var items []rawQuestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationMalformed, err)
	}
	if len(items) < numQuestions {
		return nil, fmt.Errorf("%w: got %d questions, want %d",
			domain.ErrGenerationMalformed, len(items), numQuestions)
	}
	// Extra items beyond the requested count are discarded
	items = items[:numQuestions]

	questions := make([]domain.Question, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.Question) == "" {
			return nil, fmt.Errorf("%w: question %d has empty text", domain.ErrGenerationMalformed, i)
		}
		if len(item.Options) != domain.OptionsPerQuestion {
			return nil, fmt.Errorf("%w: question %d has %d options, want %d",
				domain.ErrGenerationMalformed, i, len(item.Options), domain.OptionsPerQuestion)
		}

		correct := -1
		options := make([]domain.Option, len(item.Options))
		for j, opt := range item.Options {
			if strings.TrimSpace(opt.Text) == "" {
				return nil, fmt.Errorf("%w: question %d option %d has empty text",
					domain.ErrGenerationMalformed, i, j)
			}
			options[j] = domain.Option{Text: opt.Text}
			if opt.IsCorrect {
				if correct >= 0 {
					return nil, fmt.Errorf("%w: question %d has multiple correct options",
						domain.ErrGenerationMalformed, i)
				}
				correct = j
			}
		}
		if correct < 0 {
			return nil, fmt.Errorf("%w: question %d has no correct option",
				domain.ErrGenerationMalformed, i)
		}

		questions[i] = domain.Question{
			Text:         item.Question,
			Options:      options,
			CorrectIndex: correct,
			Explanation:  item.Explanation,
		}
	}
	return questions, nil
}

// Submit grades a submission against a stored quiz. Every question must be
// answered with an in-range option index. The first submission is
// authoritative; later ones fail with ErrAlreadyGraded.
func (s *QuizService) Submit(ctx context.Context, quizID string, answers map[int]int) (*domain.SubmitQuizResponse, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if err := validateAnswers(quiz, answers); err != nil {
		return nil, err
	}

	if err := s.quizzes.MarkGraded(ctx, quizID, time.Now()); err != nil {
		return nil, err
	}

	total := len(quiz.Questions)
	score := 0
	results := make([]domain.QuestionResult, total)
	for i, q := range quiz.Questions {
		selected := answers[i]
		correct := selected == q.CorrectIndex
		if correct {
			score++
		}

		options := make([]domain.GradedOption, len(q.Options))
		for j, opt := range q.Options {
			options[j] = domain.GradedOption{
				Text:      opt.Text,
				IsCorrect: j == q.CorrectIndex,
			}
		}
		results[i] = domain.QuestionResult{
			Question:      q.Text,
			Options:       options,
			SelectedIndex: selected,
			Correct:       correct,
			CorrectAnswer: q.CorrectLetter(),
			Explanation:   q.Explanation,
		}
	}

	// Percentage rounds to one decimal place
	percentage := math.Round(float64(score)/float64(total)*1000) / 10

	s.log.Info("quiz graded",
		zap.String("test_id", quizID),
		zap.Int("score", score),
		zap.Int("total", total),
	)

	return &domain.SubmitQuizResponse{
		Results:    results,
		Score:      score,
		Total:      total,
		Percentage: percentage,
	}, nil
}

func validateAnswers(quiz *domain.Quiz, answers map[int]int) error {
	for i := range quiz.Questions {
		choice, ok := answers[i]
		if !ok {
			return fmt.Errorf("%w: incomplete submission: missing answer for question %d",
				domain.ErrInvalidArgument, i)
		}
		if choice < 0 || choice >= domain.OptionsPerQuestion {
			return fmt.Errorf("%w: option index %d out of range for question %d",
				domain.ErrInvalidArgument, choice, i)
		}
	}
	for i := range answers {
		if i < 0 || i >= len(quiz.Questions) {
			return fmt.Errorf("%w: unknown question index %d", domain.ErrInvalidArgument, i)
		}
	}
	return nil
}

func clip(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
