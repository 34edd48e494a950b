package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/diarize-pipeline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logrus.WithError(err).Error("diarize failed")
		os.Exit(1)
	}
}
