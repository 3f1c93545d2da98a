package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	hf         bool
	checkMode  bool
	configPath string
	logLevel   string
)

func InitFlag() {
	flag.BoolVar(&hf, "h", false, "this help")
	flag.BoolVar(&checkMode, "check", false, "verify every tile of the configured mbtiles and exit")
	flag.StringVar(&configPath, "c", "./conf/conf.toml", "set config `file`")
	flag.StringVar(&logLevel, "l", "info", "set log level (default: info)")
	flag.Usage = usage
	flag.Parse()

	if hf {
		flag.Usage()
		os.Exit(0)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `mbtiler version: mbtiler/v0.1.0
Usage: mbtiler [-h] [-check] [-c filename] [-l logLevel]
`)
	flag.PrintDefaults()
}
