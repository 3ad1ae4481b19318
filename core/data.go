package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

type Status int // Status of the task known to the cloud service.
type Counts map[string]uint32
type Probabilities map[string]float64

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

func (c Counts) String() string {
	st, err := jsonIter.Marshal(c)
	if err != nil {
		zap.L().Error("Failed to marshal core.Counts")
		return ""
	}
	return string(st)
}

func (c Counts) TotalShots() uint32 {
	var total uint32
	for _, v := range c {
		total += v
	}
	return total
}

// Probabilities normalizes measurement counts to a distribution.
// An empty count map yields an empty distribution.
func (c Counts) Probabilities() Probabilities {
	p := make(Probabilities)
	total := c.TotalShots()
	if total == 0 {
		return p
	}
	for k, v := range c {
		p[k] = float64(v) / float64(total)
	}
	return p
}

func ToStatus(s string) (Status, error) {
	switch s {
	case "created":
		return CREATED, nil
	case "queued":
		return QUEUED, nil
	case "running":
		return RUNNING, nil
	case "completed":
		return COMPLETED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", s)
	}
}

const (
	CREATED   Status = iota // Accepted by the cloud service but not yet queued on a device.
	QUEUED                  // In the device queue in the cloud service.
	RUNNING                 // Being executed on the device.
	COMPLETED               // Finished successfully. Result payload is available.
	FAILED                  // Finished with failure.
	CANCELLED               // Finished with cancellation.
)

func (s Status) String() string {
	switch s {
	case CREATED:
		return "created"
	case QUEUED:
		return "queued"
	case RUNNING:
		return "running"
	case COMPLETED:
		return "completed"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s Status) IsTerminal() bool {
	return s == COMPLETED || s == FAILED || s == CANCELLED
}

// ResultValue is one requested quantity attached to the program with a
// result-type pragma. Value stays raw JSON: the payload shape depends on the
// requested type (scalar, amplitude map, matrix rows) and is produced
// entirely by the service.
type ResultValue struct {
	Type       string          `json:"type"`
	Observable string          `json:"observable,omitempty"`
	Targets    []int           `json:"targets,omitempty"`
	States     []string        `json:"states,omitempty"`
	Value      json.RawMessage `json:"value"`
}

type Result struct {
	Counts         Counts        `json:"counts"`
	Values         []ResultValue `json:"values"`
	Message        string        `json:"message"`
	ExecutionTime  time.Duration `json:"execution_time"`
	BilledDuration time.Duration `json:"billed_duration"`
}

func NewResult() *Result {
	return &Result{
		Counts: make(Counts),
		Values: []ResultValue{},
	}
}

func (r *Result) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.Result")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

type TaskData struct {
	ID              string
	DeviceID        string
	Program         string // opaque IR payload, rendered once before submission
	Shots           int
	DisableRewiring bool
	Status          Status
	Result          *Result
	TaskType        string
	Tags            map[string]string
	ClientToken     string
	Created         strfmt.DateTime
	Ended           strfmt.DateTime
}

func NewTaskData() *TaskData {
	return &TaskData{
		Result:  NewResult(),
		Tags:    map[string]string{},
		Created: strfmt.DateTime(time.Now()),
	}
}

func (td *TaskData) Clone() *TaskData {
	c := deepcopy.Copy(td).(*TaskData)
	c.Created = *td.Created.DeepCopy()
	c.Ended = *td.Ended.DeepCopy()
	return c
}
