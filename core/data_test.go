//go:build unit
// +build unit

package core

import (
	"encoding/json"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
)

func TestResultToString(t *testing.T) {
	tests := []struct {
		name       string
		result     *Result
		wantString string
	}{
		{
			name:   "empty result",
			result: NewResult(),
			wantString: heredoc.Doc(`
			  {
			    "counts": {},
			    "values": [],
			    "message": "",
			    "execution_time": 0,
			    "billed_duration": 0
			  }
			`),
		},
		{
			name:   "message in result",
			result: messageInResult(),
			wantString: heredoc.Doc(`
			  {
			    "counts": {},
			    "values": [],
			    "message": "dummy message",
			    "execution_time": 0,
			    "billed_duration": 0
			  }
			`),
		},
		{
			name:   "counts in result",
			result: countsInResult(),
			wantString: heredoc.Doc(`
			  {
			    "counts": {
			      "0000": 10,
			      "0001": 20
			    },
			    "values": [],
			    "message": "",
			    "execution_time": 0,
			    "billed_duration": 0
			  }
			`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := tt.result.ToString()
			assert.Equal(t, tt.wantString, act)
		})
	}
}

func TestResultToStringWithValues(t *testing.T) {
	r := NewResult()
	r.Values = append(r.Values, ResultValue{
		Type:       "expectation",
		Observable: "x(q[0]) @ y(q[1])",
		Value:      json.RawMessage("0.96"),
	})
	act := r.ToString()
	assert.Contains(t, act, `"type": "expectation"`)
	assert.Contains(t, act, `"observable": "x(q[0]) @ y(q[1])"`)
	assert.Contains(t, act, `"value": 0.96`)
}

func messageInResult() *Result {
	r := NewResult()
	r.Message = "dummy message"
	return r
}

func countsInResult() *Result {
	r := NewResult()
	r.Counts = make(Counts)
	r.Counts["0000"] = uint32(10)
	r.Counts["0001"] = uint32(20)
	return r
}

func TestCountsTotalShots(t *testing.T) {
	c := Counts{"00": 512, "11": 488}
	assert.Equal(t, uint32(1000), c.TotalShots())
	assert.Equal(t, uint32(0), Counts{}.TotalShots())
}

func TestCountsProbabilities(t *testing.T) {
	c := Counts{"00": 750, "11": 250}
	p := c.Probabilities()
	assert.InDelta(t, 0.75, p["00"], 1e-9)
	assert.InDelta(t, 0.25, p["11"], 1e-9)

	assert.Empty(t, Counts{}.Probabilities())
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		in        string
		want      Status
		wantError bool
	}{
		{in: "created", want: CREATED},
		{in: "queued", want: QUEUED},
		{in: "running", want: RUNNING},
		{in: "completed", want: COMPLETED},
		{in: "failed", want: FAILED},
		{in: "cancelled", want: CANCELLED},
		{in: "paused", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToStatus(tt.in)
			if tt.wantError {
				assert.EqualError(t, err, "unknown status: "+tt.in)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []Status{CREATED, QUEUED, RUNNING} {
		assert.False(t, s.IsTerminal(), s.String())
	}
	for _, s := range []Status{COMPLETED, FAILED, CANCELLED} {
		assert.True(t, s.IsTerminal(), s.String())
	}
}

func TestCloneTaskData(t *testing.T) {
	tests := []struct {
		name     string
		taskData *TaskData
	}{
		{
			name: "no properties",
			taskData: &TaskData{
				ID:      "dummy_id",
				Program: "dummy_program",
				Shots:   1000,
				Result:  NewResult(),
				Created: strfmt.NewDateTime(),
				Ended:   strfmt.NewDateTime(),
			},
		},
		{
			name: "with properties",
			taskData: &TaskData{
				ID:       "dummy_id",
				DeviceID: "dummy_device",
				Program:  "dummy_program",
				Shots:    1000,
				Tags:     map[string]string{"project": "chemistry"},
				Result:   countsInResult(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cloned := tt.taskData.Clone()

			assert.False(t, tt.taskData == cloned)
			assert.Equal(t, tt.taskData.ID, cloned.ID)
			assert.Equal(t, tt.taskData.Program, cloned.Program)
			assert.Equal(t, tt.taskData.Shots, cloned.Shots)
			assert.Equal(t, tt.taskData.Created, cloned.Created)
			assert.Equal(t, tt.taskData.Ended, cloned.Ended)
			assert.False(t, tt.taskData.Result == cloned.Result)
		})
	}
}

func TestCloneTaskDataIsDeep(t *testing.T) {
	td := NewTaskData()
	td.ID = "dummy_id"
	td.Result.Counts["00"] = 10
	td.Tags["owner"] = "alice"

	cloned := td.Clone()
	cloned.Result.Counts["00"] = 20
	cloned.Tags["owner"] = "bob"

	assert.Equal(t, uint32(10), td.Result.Counts["00"])
	assert.Equal(t, "alice", td.Tags["owner"])
}
