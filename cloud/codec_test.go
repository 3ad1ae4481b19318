//go:build unit
// +build unit

package cloud

import (
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/qubera-team/qubera-client/core"
	"github.com/stretchr/testify/assert"
)

func TestEncodeTaskDef(t *testing.T) {
	td := core.NewTaskData()
	td.DeviceID = core.MockDeviceID
	td.Program = "OPENQASM 3.0;\n"
	td.Shots = 100
	td.TaskType = "sampling"
	td.ClientToken = "token-1"
	td.DisableRewiring = true

	got := string(encodeTaskDef(td))
	assert.Contains(t, got, `"device_id":"qubera.mock.qpu-8"`)
	assert.Contains(t, got, `"shots":100`)
	assert.Contains(t, got, `"task_type":"sampling"`)
	assert.Contains(t, got, `"disable_rewiring":true`)
	assert.Contains(t, got, `"client_token":"token-1"`)
}

func TestEncodeTaskDefOmitsDefaults(t *testing.T) {
	td := core.NewTaskData()
	td.DeviceID = core.MockDeviceID
	td.Program = "OPENQASM 3.0;\n"
	td.Shots = 0
	td.TaskType = "simulation"

	got := string(encodeTaskDef(td))
	assert.NotContains(t, got, "disable_rewiring")
	assert.NotContains(t, got, "client_token")
	assert.NotContains(t, got, "tags")
}

func TestDecodeCreateResponse(t *testing.T) {
	res, err := decodeCreateResponse([]byte(`{"task_id": "t-1", "status": "queued"}`))
	assert.Nil(t, err)
	assert.Equal(t, "t-1", res.taskID)
	assert.Equal(t, core.QUEUED, res.status)

	_, err = decodeCreateResponse([]byte(`{"status": "queued"}`))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no task_id")
}

func TestDecodeTaskDef(t *testing.T) {
	blob := heredoc.Doc(`
		{
		  "task_id": "t-42",
		  "device_id": "qubera.mock.qpu-8",
		  "program": "OPENQASM 3.0;",
		  "shots": 1000,
		  "disable_rewiring": true,
		  "task_type": "sampling",
		  "status": "completed",
		  "tags": {"project": "demo"},
		  "created_at": "2025-06-01T12:00:00.000Z",
		  "ended_at": "2025-06-01T12:00:05.000Z",
		  "result": {
		    "counts": {"00": 480, "11": 520},
		    "values": [
		      {"type": "expectation", "observable": "z(q[0])", "value": 0.96}
		    ],
		    "execution_time_ms": 850,
		    "billed_duration_ms": 3000
		  }
		}
	`)
	td, err := decodeTaskDef([]byte(blob))
	assert.Nil(t, err)
	assert.Equal(t, "t-42", td.ID)
	assert.Equal(t, core.MockDeviceID, td.DeviceID)
	assert.Equal(t, 1000, td.Shots)
	assert.True(t, td.DisableRewiring)
	assert.Equal(t, core.COMPLETED, td.Status)
	assert.Equal(t, "demo", td.Tags["project"])
	assert.Equal(t, core.Counts{"00": 480, "11": 520}, td.Result.Counts)
	assert.Len(t, td.Result.Values, 1)
	assert.Equal(t, "expectation", td.Result.Values[0].Type)
	assert.Equal(t, "z(q[0])", td.Result.Values[0].Observable)
	assert.Equal(t, "0.96", string(td.Result.Values[0].Value))
	assert.Equal(t, 850*time.Millisecond, td.Result.ExecutionTime)
	assert.Equal(t, 3*time.Second, td.Result.BilledDuration)
	assert.False(t, time.Time(td.Created).IsZero())
	assert.False(t, time.Time(td.Ended).IsZero())
}

func TestDecodeTaskDefNullResult(t *testing.T) {
	td, err := decodeTaskDef([]byte(`{"task_id": "t-1", "status": "running", "result": null, "ended_at": null}`))
	assert.Nil(t, err)
	assert.Equal(t, core.RUNNING, td.Status)
	assert.Empty(t, td.Result.Counts)
}

func TestDecodeTaskDefUnknownStatus(t *testing.T) {
	td, err := decodeTaskDef([]byte(`{"task_id": "t-1", "status": "paused"}`))
	assert.Nil(t, err)
	assert.Equal(t, core.RUNNING, td.Status)
}

func TestDecodeTaskDefSkipsUnknownFields(t *testing.T) {
	td, err := decodeTaskDef([]byte(`{"task_id": "t-1", "queue_position": 3, "metadata": {"a": 1}}`))
	assert.Nil(t, err)
	assert.Equal(t, "t-1", td.ID)
}

func TestDecodeDeviceInfo(t *testing.T) {
	blob := heredoc.Doc(`
		{
		  "device_id": "qubera.aria.1",
		  "device_name": "Aria 1",
		  "provider_name": "qubera",
		  "paradigm": "qpu",
		  "status": "available",
		  "max_qubits": 25,
		  "max_shots": 10000,
		  "native_gates": ["rz", "sx", "cz"],
		  "supported_pragmas": ["verbatim", "rewiring"],
		  "supported_result_types": ["sample", "probability"],
		  "connectivity": {"fully_connected": false, "adjacency": {"0": [1]}},
		  "pricing": {"per_task": 0.3, "per_shot": 0.00035},
		  "calibrated_at": "2025-06-01T00:00:00Z"
		}
	`)
	di, err := decodeDeviceInfo([]byte(blob))
	assert.Nil(t, err)
	assert.Equal(t, "qubera.aria.1", di.DeviceID)
	assert.Equal(t, core.ParadigmQPU, di.Paradigm)
	assert.Equal(t, core.Available, di.Status)
	assert.Equal(t, 25, di.MaxQubits)
	assert.Equal(t, []string{"rz", "sx", "cz"}, di.NativeGates)
	assert.Equal(t, 0.3, di.Pricing.PerTask)
	assert.Equal(t, 0.00035, di.Pricing.PerShot)
	assert.Contains(t, di.ConnectivitySpecJson, "fully_connected")

	_, err = decodeDeviceInfo([]byte(`{"device_name": "nameless"}`))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no device_id")
}

func TestDecodeDeviceList(t *testing.T) {
	blob := `{"devices": [{"device_id": "a", "status": "available"}, {"device_id": "b", "status": "retired"}]}`
	devices, err := decodeDeviceList([]byte(blob))
	assert.Nil(t, err)
	assert.Len(t, devices, 2)
	assert.Equal(t, core.Retired, devices[1].Status)
}

func TestDecodeErrorMessage(t *testing.T) {
	assert.Equal(t, "shots exceed device maximum",
		decodeErrorMessage([]byte(`{"message": "shots exceed device maximum", "code": 400}`)))
	assert.Equal(t, "plain text error", decodeErrorMessage([]byte("plain text error")))
}

func TestToDeviceStatus(t *testing.T) {
	assert.Equal(t, core.Available, toDeviceStatus("available"))
	assert.Equal(t, core.Available, toDeviceStatus("online"))
	assert.Equal(t, core.Unavailable, toDeviceStatus("offline"))
	assert.Equal(t, core.Retired, toDeviceStatus("retired"))
	assert.Equal(t, core.Unavailable, toDeviceStatus("sleeping"))
}
