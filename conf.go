package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var conf *Conf

// ScopeConf 路由范围, 对应 Apache 的 MbtilesEnabled
type ScopeConf struct {
	Prefix  string `mapstructure:"prefix"`
	Enabled bool   `mapstructure:"enabled"`
}

// TilesetConf 对应 MbtilesAdd name path
type TilesetConf struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

type Conf struct {
	App struct {
		Version string `mapstructure:"version"`
		Title   string `mapstructure:"title"`
	} `mapstructure:"app"`
	Output struct {
		LogDir         string `mapstructure:"logDir"`
		OutputTerminal bool   `mapstructure:"outputTerminal"`
	} `mapstructure:"output"`
	Server struct {
		Addr            string   `mapstructure:"addr"`
		ReadTimeout     int      `mapstructure:"readTimeout"`
		WriteTimeout    int      `mapstructure:"writeTimeout"`
		ShutdownTimeout int      `mapstructure:"shutdownTimeout"`
		CorsOrigins     []string `mapstructure:"corsOrigins"`
	} `mapstructure:"server"`
	Storage struct {
		Driver        string `mapstructure:"driver"`
		MaxOpenConns  int    `mapstructure:"maxOpenConns"`
		SchemaRetries int    `mapstructure:"schemaRetries"`
	} `mapstructure:"storage"`
	Tiles struct {
		Capacity   int  `mapstructure:"capacity"`
		EnsureGzip bool `mapstructure:"ensureGzip"`
		CacheSize  int  `mapstructure:"cacheSize"`
	} `mapstructure:"tiles"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"metrics"`
	Check struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"check"`
	Scopes   []ScopeConf   `mapstructure:"scopes"`
	Tilesets []TilesetConf `mapstructure:"tilesets"`
}

// StoreOptions 存储参数
func (c *Conf) StoreOptions() StoreOptions {
	return StoreOptions{
		Driver:        c.Storage.Driver,
		MaxOpenConns:  c.Storage.MaxOpenConns,
		SchemaRetries: c.Storage.SchemaRetries,
	}
}

// InitConf 初始化配置
func InitConf(cfgFile string) {
	if cfgFile == "" {
		cfgFile = "conf.toml"
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("config file(%s) not exist", cfgFile)
		os.Exit(1)
	}
	c, err := LoadConf(cfgFile)
	if err != nil {
		fmt.Println(err)
		panic("配置文件解析失败")
	}
	conf = c
}

// LoadConf 读取配置文件并填充默认值
func LoadConf(cfgFile string) (*Conf, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(cfgFile)
	v.AutomaticEnv() // read in environment variables that match
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file(%s)", cfgFile)
	}
	// 设置默认值
	v.SetDefault("app.version", "v 0.1.0")
	v.SetDefault("app.title", "MapCloud mbtiler")
	v.SetDefault("output.outputTerminal", true)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.readTimeout", 10)
	v.SetDefault("server.writeTimeout", 10)
	v.SetDefault("server.shutdownTimeout", 5)
	v.SetDefault("storage.driver", "sqlite3")
	v.SetDefault("storage.maxOpenConns", 4)
	v.SetDefault("storage.schemaRetries", 3)
	v.SetDefault("tiles.capacity", DefaultCapacity)
	v.SetDefault("tiles.ensureGzip", false)
	v.SetDefault("tiles.cacheSize", 0)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("check.workers", 4)

	var c Conf
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []ScopeConf{{Prefix: "/", Enabled: true}}
	}
	return &c, nil
}
