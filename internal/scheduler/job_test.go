package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobHistory_KeepsRecentResults(t *testing.T) {
	h := &JobHistory{}

	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "test", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
}

func TestJobHistory_SuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.SuccessRate())

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})

	assert.InDelta(t, 2.0/3.0, h.SuccessRate(), 1e-12)
	assert.Equal(t, 1, h.FailureCount())
}

func TestJobHistory_Latest(t *testing.T) {
	h := &JobHistory{}
	assert.Nil(t, h.Latest())

	h.AddResult(JobResult{JobName: "a", StartTime: time.Now(), Success: true})
	h.AddResult(JobResult{JobName: "a", Success: false, Error: "boom"})

	latest := h.Latest()
	assert.NotNil(t, latest)
	assert.False(t, latest.Success)
	assert.Equal(t, "boom", latest.Error)
}
