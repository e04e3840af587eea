package repository

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"quizfaucet/internal/domain"
	"quizfaucet/internal/logger"

	"go.uber.org/zap"
)

var weekPattern = regexp.MustCompile(`(?i)^week(\d+)-?`)

// fsSlideRepository serves course material from a directory of
// "weekN-topic.txt" files, loaded once at startup.
type fsSlideRepository struct {
	slides []*domain.Slide
}

// NewFSSlideRepository loads all slide files from dir. Files without a week
// prefix default to week 1.
func NewFSSlideRepository(dir string) (domain.SlideRepository, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read slides directory %s: %w", dir, err)
	}

	var slides []*domain.Slide
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read slide %s: %w", entry.Name(), err)
		}
		slides = append(slides, &domain.Slide{
			Filename: entry.Name(),
			Topic:    topicFromFilename(entry.Name()),
			Content:  string(content),
			Week:     weekFromFilename(entry.Name()),
		})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slide files found in %s", dir)
	}

	logger.Get().Info("Loaded course material", zap.Int("slides", len(slides)), zap.String("dir", dir))
	return &fsSlideRepository{slides: slides}, nil
}

// RandomCovered returns a random slide whose week is within the cutoff.
func (r *fsSlideRepository) RandomCovered(week int) (*domain.Slide, error) {
	var covered []*domain.Slide
	for _, slide := range r.slides {
		if slide.Week <= week {
			covered = append(covered, slide)
		}
	}
	if len(covered) == 0 {
		return nil, fmt.Errorf("no slides covered up to week %d", week)
	}
	return covered[rand.Intn(len(covered))], nil
}

func weekFromFilename(name string) int {
	m := weekPattern.FindStringSubmatch(name)
	if m == nil {
		return 1
	}
	week, err := strconv.Atoi(m[1])
	if err != nil || week < 1 {
		return 1
	}
	return week
}

// topicFromFilename turns "week1-blockchain-basics.txt" into
// "blockchain basics".
func topicFromFilename(name string) string {
	topic := weekPattern.ReplaceAllString(name, "")
	topic = strings.TrimSuffix(topic, ".txt")
	return strings.ReplaceAll(topic, "-", " ")
}
