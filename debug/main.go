package main

import (
	"github.com/emrgen/linkgraph/internal/config"
	"github.com/emrgen/linkgraph/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	err = server.Start(cfg)
	if err != nil {
		logrus.Fatal(err)
	}
}
