package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var systemComponents *SystemComponents

type StoreChan chan Task

type Channels struct {
	StoreChan
	// when more channel is needed, add here
}

func NewChannels() *Channels {
	return &Channels{
		StoreChan: make(StoreChan),
	}
}

func (c *Channels) Close() {
	close(c.StoreChan)
}

func (c *Channels) Check() error {
	if c.StoreChan == nil {
		return fmt.Errorf("StoreChan is nil")
	}
	return nil
}

type DeviceStatus int

const (
	Available DeviceStatus = iota
	Unavailable
	Retired
)

func (ds DeviceStatus) String() string {
	switch ds {
	case Available:
		return "Available"
	case Unavailable:
		return "Unavailable"
	case Retired:
		return "Retired"
	default:
		return "Unknown"
	}
}

const (
	ParadigmQPU         = "qpu"
	ParadigmSVSimulator = "sv_simulator" // state-vector simulator
	ParadigmDMSimulator = "dm_simulator" // density-matrix simulator, accepts noise pragmas
)

type Pricing struct {
	PerTask   float64 `json:"per_task"`
	PerShot   float64 `json:"per_shot"`
	PerMinute float64 `json:"per_minute"`
}

// DeviceInfo is the advertised capability sheet of one remote device. All
// fields come from the service catalog; nothing here is computed locally.
type DeviceInfo struct {
	DeviceID             string       `json:"device_id"`
	DeviceName           string       `json:"device_name"`
	ProviderName         string       `json:"provider_name"`
	Paradigm             string       `json:"paradigm"`
	Status               DeviceStatus `json:"status"`
	MaxQubits            int          `json:"max_qubits"`
	MaxShots             int          `json:"max_shots"`
	NativeGates          []string     `json:"native_gates"`
	SupportedPragmas     []string     `json:"supported_pragmas"`
	SupportedResultTypes []string     `json:"supported_result_types"`
	ConnectivitySpecJson string       `json:"connectivity"` // adjacency spec, resolved by the device package
	Pricing              Pricing      `json:"pricing"`
	CalibratedAt         string       `json:"calibrated_at"`
}

func (di *DeviceInfo) SupportsPragma(name string) bool {
	for _, p := range di.SupportedPragmas {
		if p == name {
			return true
		}
	}
	return false
}

func (di *DeviceInfo) SupportsResultType(name string) bool {
	for _, rt := range di.SupportedResultTypes {
		if rt == name {
			return true
		}
	}
	return false
}

// QuantumClient is the request/response boundary to the cloud service. The
// service owns compilation, simulation, rewiring and billing; the client only
// moves payloads.
type QuantumClient interface {
	Setup(*Conf) error
	CreateTask(context.Context, *TaskData) (taskID string, status Status, err error)
	GetTask(context.Context, string) (*TaskData, error)
	CancelTask(context.Context, string) error
	GetDevice(context.Context, string) (*DeviceInfo, error)
	SearchDevices(context.Context) ([]*DeviceInfo, error)
}

type DeviceCatalog interface {
	Setup(*Conf) error
	Resolve(deviceID string) (*DeviceInfo, error)
	List() ([]*DeviceInfo, error)
	Refresh() error
}

type TaskStore interface {
	Setup(StoreChan, *Conf) error
	Insert(Task) error
	Get(string) (Task, error)
	Update(Task) error
	Delete(string) error
	Pending() ([]Task, error)
	TearDown()
}

type DeviceCost struct {
	Tasks          int           `json:"tasks"`
	Shots          uint64        `json:"shots"`
	BilledDuration time.Duration `json:"billed_duration"`
	Cost           float64       `json:"cost"`
}

type CostSummary struct {
	Total    float64               `json:"total"`
	ByDevice map[string]DeviceCost `json:"by_device"`
}

// Tracker accumulates the billable footprint of finished tasks, mirroring the
// service-side billing it cannot see.
type Tracker interface {
	Setup(*Conf) error
	Charge(*TaskData, *DeviceInfo)
	Summary() CostSummary
}

type Submitter interface {
	Setup(*Conf) error
	Start() error
	HandleTask(Task)
	TearDown()
	// Queue Data Access
	GetCurrentQueueSize() int
	IsOverRefillThreshold() bool
}

type SystemComponents struct {
	*dig.Container
	*Channels
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		con,
		NewChannels(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	storeChan := s.StoreChan

	zap.L().Debug("Setting up cloud client")
	var err error
	err = s.Invoke(
		func(c QuantumClient) error {
			return c.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up device catalog")
	err = s.Invoke(
		func(d DeviceCatalog) error {
			return d.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up task store")
	err = s.Invoke(
		func(t TaskStore) error {
			return t.Setup(storeChan, conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up tracker")
	err = s.Invoke(
		func(t Tracker) error {
			return t.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up submitter")
	err = s.Invoke(
		func(sb Submitter) error {
			return sb.Setup(conf)
		})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() error {
	var errs error
	errs = multierr.Append(errs, s.Invoke(
		func(sb Submitter) {
			sb.TearDown()
		}))
	errs = multierr.Append(errs, s.Invoke(
		func(t TaskStore) {
			t.TearDown()
		}))
	s.Channels.Close()
	return errs
}

func (s *SystemComponents) StartContainer() error {
	return s.Container.Invoke(
		func(sb Submitter) error {
			return sb.Start()
		})
}

func (s *SystemComponents) ResolveDeviceInfo(deviceID string) (*DeviceInfo, error) {
	var deviceInfo *DeviceInfo
	err := s.Invoke(
		func(d DeviceCatalog) error {
			var resolveErr error
			deviceInfo, resolveErr = d.Resolve(deviceID)
			return resolveErr
		})
	if err != nil {
		return nil, err
	}
	return deviceInfo, nil
}

func (s *SystemComponents) GetCurrentQueueSize() int {
	var size int
	s.Invoke(
		func(sb Submitter) {
			size = sb.GetCurrentQueueSize()
		})
	return size
}

func (s *SystemComponents) IsQueueOverRefillThreshold() bool {
	var over bool
	s.Invoke(
		func(sb Submitter) {
			over = sb.IsOverRefillThreshold()
		})
	return over
}
