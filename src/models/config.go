package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
	Provider MProviderConfig `yaml:"provider"`
	Market   MMarketConfig   `yaml:"market"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	UserAgent      string `yaml:"user_agent"`
	Referer        string `yaml:"referer"`
}

type MProviderConfig struct {
	ListURL     string `yaml:"list_url"`
	RealtimeURL string `yaml:"realtime_url"`
	KlineURL    string `yaml:"kline_url"`
	PageSize    int    `yaml:"page_size"`
}

type MMarketConfig struct {
	UTCOffsetHours int      `yaml:"utc_offset_hours"`
	RefreshCodes   []string `yaml:"refresh_codes"`
	SampleCode     string   `yaml:"sample_code"`
}
