package dto

// QuizQuestion is a generated multiple-choice question in the API response.
// The correct answer and explanation ship with the question so the client
// can grade locally and echo the ground truth back on submission.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// FreeResponseQuestion is a generated free-response question with rubric.
type FreeResponseQuestion struct {
	Question     string `json:"question"`
	SampleAnswer string `json:"sampleAnswer"`
	Rubric       string `json:"rubric"`
}

type QuizMetadata struct {
	SlideTopic  string `json:"slideTopic"`
	CurrentWeek int    `json:"currentWeek"`
}

// GenerateQuizResponse is the payload of GET /api/quiz/generate.
type GenerateQuizResponse struct {
	Questions            []QuizQuestion        `json:"questions"`
	FreeResponseQuestion *FreeResponseQuestion `json:"freeResponseQuestion,omitempty"`
	Metadata             QuizMetadata          `json:"metadata"`
}

// SubmitAnswersRequest is the payload of POST /api/quiz/submit. The three
// arrays are positionally aligned. The free-response fields are only
// present when the quiz carried a free-response question.
type SubmitAnswersRequest struct {
	ItemIDs            []string `json:"itemIds"`
	UserAnswers        []string `json:"userAnswers"`
	GroundTruth        []string `json:"groundTruth"`
	FreeResponseAnswer string   `json:"freeResponseAnswer,omitempty"`
	FreeResponsePrompt string   `json:"freeResponsePrompt,omitempty"`
	FreeResponseRubric string   `json:"freeResponseRubric,omitempty"`
}

type ItemResult struct {
	ItemID        string `json:"itemId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

type MultipleChoiceResult struct {
	Results        []ItemResult `json:"results"`
	TotalCorrect   int          `json:"totalCorrect"`
	TotalQuestions int          `json:"totalQuestions"`
	Score          int          `json:"score"`
}

type FreeResponseResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// SubmitAnswersResponse is the composed grading result. Score is the final
// weighted percentage; IsCorrect is the pass/fail verdict.
type SubmitAnswersResponse struct {
	Score          int                  `json:"score"`
	IsCorrect      bool                 `json:"isCorrect"`
	MultipleChoice MultipleChoiceResult `json:"multipleChoice"`
	FreeResponse   *FreeResponseResult  `json:"freeResponse,omitempty"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
