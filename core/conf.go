package core

type Conf struct {
	Version            string `long:"version" description:"version of the client engine" env:"QUBERA_VERSION"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"QUBERA_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QUBERA_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"QUBERA_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QUBERA_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QUBERA_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QUBERA_LOG_ROTATION_MAX_DAYS"`
	Endpoint           string `long:"endpoint" description:"cloud service endpoint" default:"https://tasks.qubera.dev" env:"QUBERA_ENDPOINT"`
	Region             string `long:"region" description:"cloud service region" default:"us-west-1" env:"QUBERA_REGION"`
	APIKey             string `long:"api-key" description:"cloud service API key" env:"QUBERA_API_KEY"`
	AccessKey          string `long:"access-key" description:"signing access key" env:"QUBERA_ACCESS_KEY"`
	SecretKey          string `long:"secret-key" description:"signing secret key" env:"QUBERA_SECRET_KEY"`
	SessionToken       string `long:"session-token" description:"signing session token" env:"QUBERA_SESSION_TOKEN"`
	QueueMaxSize       int    `long:"queue-max-size" description:"submission queue max size" default:"100" env:"QUBERA_QUEUE_MAX_SIZE"`
	QueueRefillThr     int    `long:"queue-refill-threshold" description:"submission queue refill threshold" default:"10" env:"QUBERA_QUEUE_REFILL_THRESHOLD"`
	StorePath          string `long:"store-path" description:"sqlite task store path" default:"./qubera_tasks.db" env:"QUBERA_STORE_PATH"`
	DeviceSettingPath  string `long:"device-setting-path" description:"device setting file path" default:"./device_setting.toml" env:"QUBERA_DEVICE_SETTING_PATH"`
	DeviceCacheTTL     int    `long:"device-cache-ttl" description:"device catalog cache TTL in seconds" default:"300" env:"QUBERA_DEVICE_CACHE_TTL"`
	SettingPath        string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QUBERA_SETTING_PATH"`
	DisableDeviceCheck bool   `long:"disable-device-check" description:"skip pre-submission device capability checks" env:"QUBERA_DISABLE_DEVICE_CHECK"`
}
