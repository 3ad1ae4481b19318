package core

import (
	"context"
	"fmt"

	"go.uber.org/dig"
)

const MockMaxQubits int = 8
const MockMaxShots int = 10000
const MockDeviceID = "qubera.mock.qpu-8"
const MockSimulatorID = "qubera.mock.dm1"

func MockDeviceInfo() *DeviceInfo {
	return &DeviceInfo{
		DeviceID:     MockDeviceID,
		DeviceName:   "mock-qpu-8",
		ProviderName: "qubera",
		Paradigm:     ParadigmQPU,
		Status:       Available,
		MaxQubits:    MockMaxQubits,
		MaxShots:     MockMaxShots,
		NativeGates:  []string{"rz", "sx", "x", "cz"},
		SupportedPragmas: []string{
			"verbatim", "rewiring",
		},
		SupportedResultTypes: []string{"sample", "expectation", "variance", "probability"},
		ConnectivitySpecJson: `
			{
			"fully_connected": false,
			"adjacency": {
				"0": [1], "1": [0, 2], "2": [1, 3], "3": [2, 4],
				"4": [3, 5], "5": [4, 6], "6": [5, 7], "7": [6]
			}
			}`,
		Pricing: Pricing{PerTask: 0.3, PerShot: 0.00035},
	}
}

func MockSimulatorInfo() *DeviceInfo {
	return &DeviceInfo{
		DeviceID:     MockSimulatorID,
		DeviceName:   "mock-dm1",
		ProviderName: "qubera",
		Paradigm:     ParadigmDMSimulator,
		Status:       Available,
		MaxQubits:    17,
		MaxShots:     MockMaxShots,
		SupportedPragmas: []string{
			"noise", "unitary", "verbatim", "rewiring",
		},
		SupportedResultTypes: []string{
			"sample", "expectation", "variance", "probability", "density_matrix",
		},
		ConnectivitySpecJson: `{"fully_connected": true}`,
		Pricing:              Pricing{PerMinute: 0.075},
	}
}

type UnimplementedClient struct{}

func (u *UnimplementedClient) Setup(*Conf) error {
	return nil
}

func (u *UnimplementedClient) CreateTask(_ context.Context, td *TaskData) (string, Status, error) {
	return td.ID, CREATED, nil
}

func (u *UnimplementedClient) GetTask(_ context.Context, id string) (*TaskData, error) {
	td := NewTaskData()
	td.ID = id
	return td, nil
}

func (u *UnimplementedClient) CancelTask(context.Context, string) error {
	return nil
}

func (u *UnimplementedClient) GetDevice(_ context.Context, id string) (*DeviceInfo, error) {
	if id == MockSimulatorID {
		return MockSimulatorInfo(), nil
	}
	return MockDeviceInfo(), nil
}

func (u *UnimplementedClient) SearchDevices(context.Context) ([]*DeviceInfo, error) {
	return []*DeviceInfo{MockDeviceInfo(), MockSimulatorInfo()}, nil
}

type UnimplementedCatalog struct{}

func (u *UnimplementedCatalog) Setup(*Conf) error {
	return nil
}

func (u *UnimplementedCatalog) Resolve(deviceID string) (*DeviceInfo, error) {
	switch deviceID {
	case MockSimulatorID:
		return MockSimulatorInfo(), nil
	default:
		return MockDeviceInfo(), nil
	}
}

func (u *UnimplementedCatalog) List() ([]*DeviceInfo, error) {
	return []*DeviceInfo{MockDeviceInfo(), MockSimulatorInfo()}, nil
}

func (u *UnimplementedCatalog) Refresh() error {
	return nil
}

type UnimplementedStore struct{}

func (u *UnimplementedStore) Setup(StoreChan, *Conf) error { return nil }
func (u *UnimplementedStore) Insert(Task) error            { return nil }
func (u *UnimplementedStore) Get(id string) (Task, error) {
	return nil, fmt.Errorf("not found %s", id)
}
func (u *UnimplementedStore) Update(Task) error          { return nil }
func (u *UnimplementedStore) Delete(string) error        { return nil }
func (u *UnimplementedStore) Pending() ([]Task, error)   { return []Task{}, nil }
func (u *UnimplementedStore) TearDown()                  {}

type UnimplementedTracker struct{}

func (u *UnimplementedTracker) Setup(*Conf) error             { return nil }
func (u *UnimplementedTracker) Charge(*TaskData, *DeviceInfo) {}
func (u *UnimplementedTracker) Summary() CostSummary {
	return CostSummary{ByDevice: map[string]DeviceCost{}}
}

type UnimplementedSubmitter struct{}

func (u *UnimplementedSubmitter) Setup(*Conf) error           { return nil }
func (u *UnimplementedSubmitter) Start() error                { return nil }
func (u *UnimplementedSubmitter) HandleTask(Task)             {}
func (u *UnimplementedSubmitter) TearDown()                   {}
func (u *UnimplementedSubmitter) GetCurrentQueueSize() int    { return 0 }
func (u *UnimplementedSubmitter) IsOverRefillThreshold() bool { return false }

// SCWithUnimplementedContainer wires a container whose components do nothing.
// Tests that only need the channels and the device catalog use this.
func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() QuantumClient { return &UnimplementedClient{} })
	c.Provide(func() DeviceCatalog { return &UnimplementedCatalog{} })
	c.Provide(func() TaskStore { return &UnimplementedStore{} })
	c.Provide(func() Tracker { return &UnimplementedTracker{} })
	c.Provide(func() Submitter { return &UnimplementedSubmitter{} })
	s := NewSystemComponents(c)
	if err := s.Setup(&Conf{}); err != nil {
		panic(err)
	}
	return s
}

// SCWithStoreContainer is SCWithUnimplementedContainer with a real MemoryStore.
func SCWithStoreContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() QuantumClient { return &UnimplementedClient{} })
	c.Provide(func() DeviceCatalog { return &UnimplementedCatalog{} })
	c.Provide(func() TaskStore { return &MemoryStore{} })
	c.Provide(func() Tracker { return &UnimplementedTracker{} })
	c.Provide(func() Submitter { return &UnimplementedSubmitter{} })
	s := NewSystemComponents(c)
	if err := s.Setup(&Conf{}); err != nil {
		panic(err)
	}
	return s
}
