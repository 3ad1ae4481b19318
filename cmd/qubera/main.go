package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	flags "github.com/jessevdk/go-flags"
	jsoniter "github.com/json-iterator/go"
	"github.com/massn/envordot"
	"github.com/oklog/run"
	"github.com/tidwall/pretty"

	"github.com/qubera-team/qubera-client/awaiter"
	"github.com/qubera-team/qubera-client/cloud"
	"github.com/qubera-team/qubera-client/common"
	"github.com/qubera-team/qubera-client/core"
	"github.com/qubera-team/qubera-client/device"
	"github.com/qubera-team/qubera-client/log"
	"github.com/qubera-team/qubera-client/sampling"
	"github.com/qubera-team/qubera-client/simulation"
	"github.com/qubera-team/qubera-client/store"
	"github.com/qubera-team/qubera-client/submitter"
	"github.com/qubera-team/qubera-client/tracker"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

var versionByBuildFlag string
var parser *flags.Parser
var cli *CLI

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	cli = &CLI{}
	setParser(cli)
}

type CLI struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf

	submitter *submitter.NormalSubmitter
}

type DIContainerParameters struct {
	Store  string `long:"store" description:"task store" default:"sqlite" choice:"memory" choice:"sqlite" env:"QUBERA_STORE_TYPE"`
	Client string `long:"client" description:"cloud client" default:"api" choice:"api" choice:"mock" env:"QUBERA_CLIENT_TYPE"`
}

func setParser(cli *CLI) {
	parser = flags.NewParser(cli, flags.Default)
	parser.ShortDescription = "qubera"
	parser.LongDescription = "a command line client of the Qubera cloud quantum computation service."
	parser.AddCommand("submit", "submit a program", "submit a program file as a new task", newSubmitCmd())
	parser.AddCommand("task", "show a task", "show the status and result of a task", newTaskCmd())
	parser.AddCommand("cancel", "cancel a task", "request a cancellation of a task", newCancelCmd())
	parser.AddCommand("devices", "list devices", "list the devices visible in the catalog", newDevicesCmd())
	parser.AddCommand("watch", "watch pending tasks", "poll all pending tasks until interrupted", newWatchCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to pasre flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (c *CLI) provideDIContainer() (con *dig.Container, err error) {
	con = dig.New()
	err = nil
	err = con.Provide(func() (core.QuantumClient, error) {
		switch c.DIContainerParameters.Client {
		case "api":
			return &cloud.Client{}, nil
		case "mock":
			return &core.UnimplementedClient{}, nil
		default:
			return &core.UnimplementedClient{}, fmt.Errorf("%s is an unknown client", c.DIContainerParameters.Client)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = con.Provide(func(q core.QuantumClient) core.DeviceCatalog {
		return device.NewCatalog(q)
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = con.Provide(func() (core.TaskStore, error) {
		switch c.DIContainerParameters.Store {
		case "memory":
			return &core.MemoryStore{}, nil
		case "sqlite":
			return &store.SqliteStore{}, nil
		default:
			return &core.MemoryStore{}, fmt.Errorf("%s is an unknown store", c.DIContainerParameters.Store)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = con.Provide(func() core.Tracker { return &tracker.CostTracker{} })
	if err != nil {
		return &dig.Container{}, err
	}
	c.submitter = &submitter.NormalSubmitter{}
	err = con.Provide(func() core.Submitter { return c.submitter })
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func (c *CLI) startCore(conf *core.Conf) error {
	core.NewTaskManager(
		&sampling.SamplingTask{},
		&simulation.SimulationTask{},
	)
	err := core.GetSystemComponents().StartContainer()
	if err != nil {
		return err
	}
	core.SetInfo(conf)
	return nil
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		debugCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stderr),
			level)
		cores = append(cores, debugCore)
	}
	zc := zapcore.NewTee(cores...)
	return zap.New(zc, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "qubera-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func main() {
	parse()
}

func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Debug("Starting logger")
	zap.L().Debug(fmt.Sprintf("DevMode is %t", conf.DevMode))
	return logger
}

func setupSystemComponents(conf *core.Conf) *core.SystemComponents {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with parameters %+v", cli.DIContainerParameters))

	container, err := cli.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		panic(err)
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up Container. Reason:%s", err.Error()))
		panic(err)
	}
	return s
}

func registerSetting() {
	core.RegisterSetting("device", device.NewDeviceSetting())
}

type submitCmd struct {
	Device          string            `long:"device" description:"target device ID (default device of the device setting when omitted)" env:"QUBERA_DEVICE_ID"`
	Shots           int               `long:"shots" description:"number of shots" default:"1000"`
	TaskType        string            `long:"type" description:"task type" default:"sampling" choice:"sampling" choice:"simulation"`
	DisableRewiring bool              `long:"disable-rewiring" description:"reject automatic qubit rewiring"`
	Tags            map[string]string `long:"tag" description:"tag in key:value form"`
	Wait            bool              `long:"wait" description:"wait for the task to finish and print the result"`
	PollPeriod      time.Duration     `long:"poll-period" description:"polling period used with --wait" default:"5s"`
}

func newSubmitCmd() *submitCmd {
	return &submitCmd{}
}

func (c *submitCmd) Execute(args []string) error {
	logger := setZap(cli.Conf)
	defer logger.Sync()
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one program file, got %d arguments", len(args))
	}
	program, err := common.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read the program file %s/reason:%s", args[0], err)
	}

	s := setupSystemComponents(cli.Conf)
	defer s.TearDown()
	if err := cli.startCore(cli.Conf); err != nil {
		return err
	}

	if c.Device == "" {
		di, err := s.ResolveDeviceInfo("")
		if err != nil {
			return err
		}
		c.Device = di.DeviceID
	}
	tc, err := core.NewTaskContext()
	if err != nil {
		return err
	}
	param := &core.TaskParam{
		TaskID:          uuid.NewString(),
		DeviceID:        c.Device,
		Program:         program,
		Shots:           c.Shots,
		DisableRewiring: c.DisableRewiring,
		Tags:            c.Tags,
		TaskType:        c.TaskType,
	}
	task, err := core.GetTaskManager().NewTaskWithValidation(param, tc)
	if err != nil {
		return err
	}

	cli.submitter.HandleTaskSync(task)
	td := task.TaskData()
	if td.Status == core.FAILED {
		return fmt.Errorf("task was not submitted: %s", td.Result.Message)
	}
	fmt.Printf("task %s is %s on %s\n", td.ID, td.Status, td.DeviceID)
	if !c.Wait {
		return nil
	}
	return waitForTask(s, task, c.PollPeriod)
}

type taskCmd struct{}

func newTaskCmd() *taskCmd {
	return &taskCmd{}
}

func (c *taskCmd) Execute(args []string) error {
	logger := setZap(cli.Conf)
	defer logger.Sync()
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one task ID, got %d arguments", len(args))
	}
	id := args[0]

	s := setupSystemComponents(cli.Conf)
	defer s.TearDown()
	if err := cli.startCore(cli.Conf); err != nil {
		return err
	}

	var task core.Task
	err := s.Invoke(
		func(st core.TaskStore) error {
			var getErr error
			task, getErr = st.Get(id)
			return getErr
		})
	if err == nil {
		if !task.IsTerminal() {
			task.Refresh()
			if task.IsTerminal() {
				task.Fetch()
				chargeTask(s, task.TaskData())
			}
			if err := updateStoredTask(s, task); err != nil {
				return err
			}
		}
		printTaskData(task.TaskData())
		return nil
	}

	// unknown locally, ask the service directly
	td := core.NewTaskData()
	td.ID = id
	if err := core.FetchTaskData(td); err != nil {
		return err
	}
	printTaskData(td)
	return nil
}

type cancelCmd struct{}

func newCancelCmd() *cancelCmd {
	return &cancelCmd{}
}

func (c *cancelCmd) Execute(args []string) error {
	logger := setZap(cli.Conf)
	defer logger.Sync()
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one task ID, got %d arguments", len(args))
	}
	id := args[0]

	s := setupSystemComponents(cli.Conf)
	defer s.TearDown()
	if err := cli.startCore(cli.Conf); err != nil {
		return err
	}

	td := core.NewTaskData()
	td.ID = id
	if err := core.CancelTaskData(td); err != nil {
		return err
	}
	// cancellation is asynchronous; the next refresh observes the new status
	fmt.Printf("requested cancellation of task %s\n", id)
	return nil
}

type devicesCmd struct{}

func newDevicesCmd() *devicesCmd {
	return &devicesCmd{}
}

func (c *devicesCmd) Execute(args []string) error {
	logger := setZap(cli.Conf)
	defer logger.Sync()

	s := setupSystemComponents(cli.Conf)
	defer s.TearDown()

	var devices []*core.DeviceInfo
	err := s.Invoke(
		func(d core.DeviceCatalog) error {
			var listErr error
			devices, listErr = d.List()
			return listErr
		})
	if err != nil {
		return err
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].DeviceID < devices[j].DeviceID })
	for _, di := range devices {
		blob, err := jsonIter.Marshal(di)
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to marshal device(%s). Reason:%s", di.DeviceID, err))
			continue
		}
		fmt.Println(string(pretty.Pretty(blob)))
	}
	return nil
}

type watchCmd struct{}

func newWatchCmd() *watchCmd {
	return &watchCmd{}
}

func (c *watchCmd) Execute(args []string) error {
	logger := setZap(cli.Conf)
	defer logger.Sync()

	core.ResetSetting()
	registerSetting()
	if err := core.ParseSettingFromPath(cli.Conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return err
	}

	s := setupSystemComponents(cli.Conf)
	defer s.TearDown()

	im := core.PeriodicTaskImplMap{
		awaiter.AwaiterTaskName: &awaiter.Awaiter{},
		log.VersionLogTaskName:  &log.VersionLogTaskImpl{},
		log.MetricsLogTaskName:  &log.MetricsLogTaskImpl{},
	}
	rc, err := core.NewRunContextWithSettingPath(cli.Conf.SettingPath, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup run context/reason:%s", err.Error()))
		return err
	}

	if err := cli.startCore(cli.Conf); err != nil {
		return err
	}

	rc.Add(
		run.SignalHandler(
			rc.Context,
			os.Interrupt))
	core.SetRunContext(rc)

	if err := rc.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "execution error:%v\n", err)
		os.Exit(1)
	}
	return nil
}

func waitForTask(s *core.SystemComponents, task core.Task, period time.Duration) error {
	for !task.IsTerminal() {
		time.Sleep(period)
		task.Refresh()
	}
	task.Fetch()
	td := task.TaskData()
	chargeTask(s, td)
	if err := updateStoredTask(s, task); err != nil {
		return err
	}
	printTaskData(td)
	return nil
}

func chargeTask(s *core.SystemComponents, td *core.TaskData) {
	di, err := s.ResolveDeviceInfo(td.DeviceID)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to resolve device(%s) for charging a task(%s). Reason:%s",
			td.DeviceID, td.ID, err.Error()))
		return
	}
	err = s.Invoke(
		func(t core.Tracker) error {
			t.Charge(td, di)
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to charge a task(%s). Reason:%s", td.ID, err.Error()))
	}
}

func updateStoredTask(s *core.SystemComponents, task core.Task) error {
	return s.Invoke(
		func(st core.TaskStore) error {
			return st.Update(task)
		})
}

func printTaskData(td *core.TaskData) {
	fmt.Printf("task %s is %s on %s\n", td.ID, td.Status, td.DeviceID)
	if td.Status.IsTerminal() {
		fmt.Println(td.Result.ToString())
	}
}
