package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem() QuizItem {
	return QuizItem{
		ID:            "01TEST",
		Question:      "What is a blockchain?",
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "B",
		Explanation:   "An append-only ledger.",
	}
}

func TestQuizItemValidate(t *testing.T) {
	item := validItem()
	require.NoError(t, item.Validate())

	tests := []struct {
		name   string
		mutate func(*QuizItem)
	}{
		{"empty question", func(q *QuizItem) { q.Question = "" }},
		{"too few options", func(q *QuizItem) { q.Options = []string{"A", "B"} }},
		{"too many options", func(q *QuizItem) { q.Options = append(q.Options, "E") }},
		{"duplicate option", func(q *QuizItem) { q.Options = []string{"A", "A", "C", "D"} }},
		{"empty option", func(q *QuizItem) { q.Options = []string{"A", "", "C", "D"} }},
		{"answer not an option", func(q *QuizItem) { q.CorrectAnswer = "E" }},
		{"empty explanation", func(q *QuizItem) { q.Explanation = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)
			assert.Error(t, item.Validate())
		})
	}
}

func TestFreeResponseItemValidate(t *testing.T) {
	item := FreeResponseItem{Question: "Q", SampleAnswer: "S", Rubric: "R"}
	require.NoError(t, item.Validate())

	assert.Error(t, (&FreeResponseItem{SampleAnswer: "S", Rubric: "R"}).Validate())
	assert.Error(t, (&FreeResponseItem{Question: "Q", Rubric: "R"}).Validate())
	assert.Error(t, (&FreeResponseItem{Question: "Q", SampleAnswer: "S"}).Validate())
}

func TestSubmissionHasFreeResponse(t *testing.T) {
	assert.False(t, (&Submission{}).HasFreeResponse())
	assert.True(t, (&Submission{FreeResponseAnswer: "x"}).HasFreeResponse())
}
