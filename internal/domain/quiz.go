package domain

import "fmt"

// QuizItem is a generated multiple-choice question. Immutable once generated.
type QuizItem struct {
	ID            string
	Question      string
	Options       []string
	CorrectAnswer string
	Explanation   string
}

// Validate enforces the shape the question generator must produce: exactly
// four distinct options with the correct answer among them.
func (q *QuizItem) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("expected 4 options, got %d", len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if opt == "" {
			return fmt.Errorf("option text is empty")
		}
		if seen[opt] {
			return fmt.Errorf("duplicate option: %q", opt)
		}
		seen[opt] = true
	}
	if !seen[q.CorrectAnswer] {
		return fmt.Errorf("correct answer %q is not one of the options", q.CorrectAnswer)
	}
	if q.Explanation == "" {
		return fmt.Errorf("explanation is empty")
	}
	return nil
}

// FreeResponseItem is a generated free-response question with its grading
// rubric. Immutable once generated.
type FreeResponseItem struct {
	Question     string
	SampleAnswer string
	Rubric       string
}

func (f *FreeResponseItem) Validate() error {
	if f.Question == "" {
		return fmt.Errorf("question text is empty")
	}
	if f.SampleAnswer == "" {
		return fmt.Errorf("sample answer is empty")
	}
	if f.Rubric == "" {
		return fmt.Errorf("rubric is empty")
	}
	return nil
}

// Submission is one learner's answer set. The three slices are positionally
// aligned: index i refers to the same question throughout. Created per
// request, consumed once, never persisted.
type Submission struct {
	ItemIDs     []string
	UserAnswers []string
	GroundTruth []string

	FreeResponseAnswer string
	FreeResponsePrompt string
	FreeResponseRubric string
}

// HasFreeResponse reports whether the submission carries a free-response
// component to be graded by the oracle.
func (s *Submission) HasFreeResponse() bool {
	return s.FreeResponseAnswer != ""
}

// ItemResult is the per-question grading verdict.
type ItemResult struct {
	ItemID        string
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
}

// GradingResult is the composed outcome of one submission. Derived,
// immutable, returned once.
type GradingResult struct {
	PerItem            []ItemResult
	TotalCorrect       int
	ObjectiveScore     int
	SubjectiveScore    int
	SubjectiveFeedback string
	HasSubjective      bool
	FinalScore         int
	Passed             bool
}

// Slide is one unit of course material, week-gated for quiz generation.
type Slide struct {
	Filename string
	Topic    string
	Content  string
	Week     int
}
