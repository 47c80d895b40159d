// Package main provides the tide demo application.
// It demonstrates idiomatic patterns for managing state with tide in a
// Drift app: a sequential counter and a debounced live search.
package main

import (
	"github.com/go-drift/drift/pkg/drift"
	"github.com/go-drift/tide/pkg/tide"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetLevel(logrus.DebugLevel)
	tide.SetObserver(&tide.LogObserver{Verbose: true})

	drift.NewApp(App()).Run()
}
