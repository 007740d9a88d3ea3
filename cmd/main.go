package main

import (
	"github.com/hadoop-jmx-exporter/cmd/exporter"
)

func main() {
	exporter.Execute()
}
