package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyWQLogDir       string = "WQ_LOG_DIR"
	EnvKeyWQLogMaxSizeMB string = "WQ_LOG_MAX_SIZE_MB"

	EnvKeyWQDBType string = "WQ_DB_TYPE"
	EnvKeyWQDbPath string = "WQ_DB_PATH"
	EnvKeyWQDbDSN  string = "WQ_DB_DSN"

	EnvKeyWQHttpHostPort string = "WQ_HTTP_HOST_PORT"
	EnvKeyWQGrpcHostPort string = "WQ_GRPC_HOST_PORT"

	EnvKeyWQDefaultRate  string = "WQ_DEFAULT_RATE"
	EnvKeyWQDefaultBurst string = "WQ_DEFAULT_BURST"

	EnvKeyWQDeviceBaseURL string = "WQ_DEVICE_BASE_URL"
	EnvKeyWQDeviceTimeout string = "WQ_DEVICE_TIMEOUT"
	EnvKeyWQPollInterval  string = "WQ_POLL_INTERVAL"
	EnvKeyWQGaugeVariant  string = "WQ_GAUGE_VARIANT"
	EnvKeyWQTimezone      string = "WQ_TIMEZONE"
	EnvKeyWQHistoryLimit  string = "WQ_HISTORY_LIMIT"
	EnvKeyWQDashboardURL  string = "WQ_DASHBOARD_URL"

	EnvKeyWQRedisAddr     string = "WQ_REDIS_ADDR"
	EnvKeyWQRedisPassword string = "WQ_REDIS_PASSWORD"
	EnvKeyWQRedisDB       string = "WQ_REDIS_DB"

	LoggerNameMonitorCore   string = "monitor_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameGrpcServer    string = "grpc_server"
	LoggerNamePoller        string = "poller"
	LoggerNameDevice        string = "device"
	LoggerNameCache         string = "cache"
	LoggerNameClient        string = "client"
	LoggerFieldCategory     string = "category"
	LoggerCategorySample    string = "sample"
	LoggerCategorySettings  string = "settings"
	LoggerCategoryRun       string = "run"
	LoggerCategoryStation   string = "station"
	LoggerCategoryLive      string = "live"
	LoggerCategoryTest      string = "test"
)
