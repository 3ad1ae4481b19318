//go:build unit
// +build unit

package core

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// testSamplingTask stands in for the real sampling task type, which lives in
// its own package.
type testSamplingTask struct {
	taskData    *TaskData
	taskContext *TaskContext
}

func (t *testSamplingTask) New(td *TaskData, tc *TaskContext) Task {
	return &testSamplingTask{taskData: td, taskContext: tc}
}

func (t *testSamplingTask) Prepare() {}
func (t *testSamplingTask) Submit()  {}
func (t *testSamplingTask) Refresh() {}
func (t *testSamplingTask) Fetch()   {}

func (t *testSamplingTask) IsTerminal() bool {
	return t.taskData.Status.IsTerminal()
}

func (t *testSamplingTask) TaskData() *TaskData {
	return t.taskData
}

func (t *testSamplingTask) TaskType() string {
	return SAMPLING_TASK
}

func (t *testSamplingTask) TaskContext() *TaskContext {
	return t.taskContext
}

func (t *testSamplingTask) Clone() Task {
	return &testSamplingTask{
		taskData:    t.taskData.Clone(),
		taskContext: t.taskContext,
	}
}

func TestTaskManager(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	tm, err := NewTaskManager(
		&testSamplingTask{},
	)
	assert.Nil(t, err)
	assert.NotNil(t, tm)
	as := tm.AcceptableTaskTypes()
	assert.Equal(t, len(as), 1)
	assert.Equal(t, as[0], SAMPLING_TASK)

	err = tm.RegisterTask(&testSamplingTask{})
	assert.EqualError(t, err, "task:sampling is already registered")

	as = tm.AcceptableTaskTypes()
	assert.Equal(t, len(as), 1)

	tc, err := NewTaskContext()
	assert.Nil(t, err)

	task, err := tm.NewTaskFromTaskData(
		&TaskData{ID: "test"},
		tc,
	)

	assert.Nil(t, err)
	assert.Equal(t, task.TaskData().ID, "test")
}

func TestNewTaskFromTaskDataUnknownType(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	tm, err := NewTaskManager(&testSamplingTask{})
	assert.Nil(t, err)

	tc, err := NewTaskContext()
	assert.Nil(t, err)
	_, err = tm.NewTaskFromTaskData(&TaskData{ID: "test", TaskType: "annealing"}, tc)
	assert.EqualError(t, err, "task type annealing is not registered")
}

func TestNewTaskWithValidation(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()

	testProgram := "OPENQASM 3.0;\nqubit[2] q;\nbit[2] c;\nh q[0];\ncx q[0], q[1];\nc = measure q;"

	tm, err := NewTaskManager(&testSamplingTask{})
	assert.Nil(t, err)
	assert.NotNil(t, tm)

	tests := []struct {
		name         string
		param        *TaskParam
		wantError    string
		wantTaskData *TaskData
	}{
		{
			name: "empty task ID",
			param: &TaskParam{
				DeviceID: MockDeviceID,
				Program:  testProgram,
				Shots:    1000,
			},
			wantError: "taskID is empty",
		},
		{
			name: "empty device ID",
			param: &TaskParam{
				TaskID:  "test-empty-device",
				Program: testProgram,
				Shots:   1000,
			},
			wantError: "deviceID is empty/taskID:test-empty-device",
		},
		{
			name: "empty program",
			param: &TaskParam{
				TaskID:   "test-empty-program",
				DeviceID: MockDeviceID,
				Shots:    1000,
			},
			wantError: "program is empty/taskID:test-empty-program",
		},
		{
			name: "0 shots",
			param: &TaskParam{
				TaskID:   uuid.NewString(),
				DeviceID: MockDeviceID,
				Program:  testProgram,
				Shots:    0,
			},
			wantError: "shots(0) must be greater than 0 for sampling",
		},
		{
			name: "negative shots",
			param: &TaskParam{
				TaskID:   uuid.NewString(),
				DeviceID: MockDeviceID,
				Program:  testProgram,
				Shots:    -1,
			},
			wantError: "shots(-1) must not be negative",
		},
		{
			name: "over max shots",
			param: &TaskParam{
				TaskID:   uuid.NewString(),
				DeviceID: MockDeviceID,
				Program:  testProgram,
				Shots:    MockMaxShots + 1,
			},
			wantError: fmt.Sprintf(
				"shots(%d) is over the limit(%d)",
				MockMaxShots+1, MockMaxShots),
		},
		{
			name: "normal with max shots",
			param: &TaskParam{
				TaskID:   uuid.NewString(),
				DeviceID: MockDeviceID,
				Program:  testProgram,
				Shots:    MockMaxShots,
			},
			wantError: "",
			wantTaskData: &TaskData{
				TaskType: SAMPLING_TASK,
				DeviceID: MockDeviceID,
				Program:  testProgram,
				Shots:    MockMaxShots,
			},
		},
		{
			name: "normal with 1 shot",
			param: &TaskParam{
				TaskID:   uuid.NewString(),
				DeviceID: MockDeviceID,
				Program:  testProgram,
				Shots:    1,
			},
			wantError: "",
			wantTaskData: &TaskData{
				TaskType: SAMPLING_TASK,
				DeviceID: MockDeviceID,
				Program:  testProgram,
				Shots:    1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, err := NewTaskContext()
			assert.Nil(t, err)
			task, err := tm.NewTaskWithValidation(tt.param, tc)
			if tt.wantError == "" {
				assert.Nil(t, err)
				tt.wantTaskData.ID = tt.param.TaskID
				tt.wantTaskData.Result = NewResult()
				tt.wantTaskData.Tags = map[string]string{}
				tt.wantTaskData.Created = task.TaskData().Created // ignore time
				assert.Equal(t, task.TaskData(), tt.wantTaskData)
			} else {
				assert.Equal(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestCloneTask(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	tm, err := NewTaskManager(&testSamplingTask{})
	assert.Nil(t, err)

	td := &TaskData{
		ID:      "test",
		Program: "test_program",
		Shots:   1000,
	}
	tc, err := NewTaskContext()
	assert.Nil(t, err)
	org, err := tm.NewTaskFromTaskData(td, tc)
	assert.Nil(t, err)
	cloned := org.Clone()
	assert.False(t, cloned == org)
	assert.False(t, cloned.TaskData() == org.TaskData(),
		"cloned.TaskData()=%p, org.TaskData()=%p", cloned.TaskData(), org.TaskData())
	assert.Equal(t, cloned.TaskData().ID, org.TaskData().ID)
	assert.Equal(t, cloned.TaskData().Program, org.TaskData().Program)
	assert.Equal(t, cloned.TaskData().Shots, org.TaskData().Shots)

	org.TaskData().ID = "test2"
	assert.NotEqual(t, cloned.TaskData().ID, org.TaskData().ID)

	org.TaskData().Status = RUNNING
	cloned.TaskData().Status = COMPLETED
	assert.NotEqual(t, cloned.TaskData().Status, org.TaskData().Status)
}

func TestSetFailureWithError(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	tm, err := NewTaskManager(&testSamplingTask{})
	assert.Nil(t, err)

	tc, err := NewTaskContext()
	assert.Nil(t, err)
	td := NewTaskData()
	td.ID = "test"
	task, err := tm.NewTaskFromTaskData(td, tc)
	assert.Nil(t, err)

	msg := SetFailureWithError(task, fmt.Errorf("device went away"))
	assert.Equal(t, "device went away", msg)
	assert.Equal(t, FAILED, task.TaskData().Status)
	assert.Equal(t, "device went away", task.TaskData().Result.Message)
	assert.True(t, task.IsTerminal())
}
