//go:build unit
// +build unit

package cloud

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qubera-team/qubera-client/core"
	"github.com/stretchr/testify/assert"
)

func testConf(endpoint string) *core.Conf {
	return &core.Conf{
		Endpoint: endpoint,
		APIKey:   "test-key",
	}
}

func TestClientSetupValidation(t *testing.T) {
	c := NewClient()
	err := c.Setup(&core.Conf{})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no service endpoint")

	err = c.Setup(&core.Conf{Endpoint: "https://tasks.example.dev"})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "neither an API key nor signing credentials")

	assert.Nil(t, c.Setup(testConf("https://tasks.example.dev/")))
	assert.Equal(t, "https://tasks.example.dev", c.endpoint)
}

func TestClientCreateTask(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"task_id": "t-1", "status": "created"}`))
	}))
	defer srv.Close()

	c := NewClient()
	assert.Nil(t, c.Setup(testConf(srv.URL)))

	td := core.NewTaskData()
	td.DeviceID = core.MockDeviceID
	td.Program = "OPENQASM 3.0;\n"
	td.Shots = 10
	td.TaskType = "sampling"

	taskID, status, err := c.CreateTask(context.Background(), td)
	assert.Nil(t, err)
	assert.Equal(t, "t-1", taskID)
	assert.Equal(t, core.CREATED, status)
	assert.Equal(t, "POST /v1/tasks", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, string(gotBody), `"program":"OPENQASM 3.0;\n"`)
}

func TestClientCreateTaskRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "shots exceed device maximum"}`))
	}))
	defer srv.Close()

	c := NewClient()
	assert.Nil(t, c.Setup(testConf(srv.URL)))

	_, status, err := c.CreateTask(context.Background(), core.NewTaskData())
	assert.NotNil(t, err)
	assert.Equal(t, core.FAILED, status)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "shots exceed device maximum")
}

func TestClientGetTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks/t-9", r.URL.Path)
		w.Write([]byte(`{"task_id": "t-9", "status": "completed", "result": {"counts": {"0": 7}}}`))
	}))
	defer srv.Close()

	c := NewClient()
	assert.Nil(t, c.Setup(testConf(srv.URL)))

	td, err := c.GetTask(context.Background(), "t-9")
	assert.Nil(t, err)
	assert.Equal(t, "t-9", td.ID)
	assert.Equal(t, core.COMPLETED, td.Status)
	assert.Equal(t, uint32(7), td.Result.Counts["0"])
}

func TestClientCancelTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/tasks/t-3/cancel", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient()
	assert.Nil(t, c.Setup(testConf(srv.URL)))
	assert.Nil(t, c.CancelTask(context.Background(), "t-3"))
}

func TestClientSearchDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/devices", r.URL.Path)
		w.Write([]byte(`{"devices": [{"device_id": "d-1", "status": "available"}]}`))
	}))
	defer srv.Close()

	c := NewClient()
	assert.Nil(t, c.Setup(testConf(srv.URL)))

	devices, err := c.SearchDevices(context.Background())
	assert.Nil(t, err)
	assert.Len(t, devices, 1)
	assert.Equal(t, "d-1", devices[0].DeviceID)
}

func TestClientSignsRequests(t *testing.T) {
	var auth, dateHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		dateHeader = r.Header.Get("X-Amz-Date")
		w.Write([]byte(`{"devices": []}`))
	}))
	defer srv.Close()

	c := NewClient()
	conf := &core.Conf{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "AKIAEXAMPLE",
		SecretKey: "secret",
	}
	assert.Nil(t, c.Setup(conf))

	_, err := c.SearchDevices(context.Background())
	assert.Nil(t, err)
	assert.Contains(t, auth, "AWS4-HMAC-SHA256")
	assert.Contains(t, auth, "AKIAEXAMPLE")
	assert.NotEmpty(t, dateHeader)
}
