package core

type NonSecretConf struct {
	DevMode            bool
	DisableStdoutLog   bool
	EnableFileLog      bool
	LogDir             string
	LogLevel           string
	LogRotationMaxDays int
	Endpoint           string
	Region             string
	QueueMaxSize       int
	QueueRefillThr     int
	StorePath          string
	DeviceSettingPath  string
	DeviceCacheTTL     int
	DisableDeviceCheck bool
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:            c.DevMode,
		DisableStdoutLog:   c.DisableStdoutLog,
		EnableFileLog:      c.EnableFileLog,
		LogDir:             c.LogDir,
		LogLevel:           c.LogLevel,
		LogRotationMaxDays: c.LogRotationMaxDays,
		Endpoint:           c.Endpoint,
		Region:             c.Region,
		QueueMaxSize:       c.QueueMaxSize,
		QueueRefillThr:     c.QueueRefillThr,
		StorePath:          c.StorePath,
		DeviceSettingPath:  c.DeviceSettingPath,
		DeviceCacheTTL:     c.DeviceCacheTTL,
		DisableDeviceCheck: c.DisableDeviceCheck,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
