package models

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImagePairFolder(t *testing.T) {
	pair := ImagePair{
		First: filepath.Join("root", "shotA", "frame_001.png"),
		Last:  filepath.Join("root", "shotA", "frame_005.png"),
	}

	assert.Equal(t, filepath.Join("root", "shotA"), pair.Folder())
	assert.Equal(t, []string{pair.First, pair.Last}, pair.Media())
}

func TestAnswersSkipsFailures(t *testing.T) {
	results := []BackendResult{
		{Backend: "b1", Text: "one"},
		{Backend: "b2", Err: errors.New("boom")},
		{Backend: "b3", Text: ""},
	}

	record := Answers(results)

	assert.Equal(t, AnswerRecord{"b1": "one", "b3": ""}, record)
	assert.NotContains(t, record, "b2")
}
