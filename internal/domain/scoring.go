package domain

import "time"

// Score counts the questions whose recorded answer equals the correct option.
// Unanswered questions and out-of-range selections never match.
func Score(quiz Quiz, answers Answers) int {
	score := 0
	for i, question := range quiz.Questions {
		selected, ok := answers[i]
		if ok && selected == question.CorrectAnswer {
			score++
		}
	}
	return score
}

// NewResult scores the answers and builds the result stored for the student.
func NewResult(quiz Quiz, studentID, classroomID string, answers Answers, now time.Time) QuizResult {
	if answers == nil {
		answers = Answers{}
	}
	return QuizResult{
		ID:             ResultID(quiz.ID, studentID),
		QuizID:         quiz.ID,
		StudentID:      studentID,
		ClassroomID:    classroomID,
		Answers:        answers.Clone(),
		Score:          Score(quiz, answers),
		TotalQuestions: len(quiz.Questions),
		SubmittedAt:    now,
	}
}

// Summarize computes attempt count and average score for a quiz.
func Summarize(quiz Quiz, results []QuizResult) QuizSummary {
	summary := QuizSummary{Quiz: quiz, TotalAttempts: len(results)}
	if len(results) == 0 {
		return summary
	}
	total := 0
	for _, r := range results {
		total += r.Score
	}
	avg := float64(total) / float64(len(results))
	summary.AverageScore = &avg
	return summary
}
