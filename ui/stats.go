package ui

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/golang/glog"
)

const statsPath = "/debug/statsview"

// LaunchStats serves the runtime charts on addr in the background.
func LaunchStats(addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		if err := mgr.Start(); err != nil {
			glog.Errorf("statsview stopped: %v\n", err)
		}
	}()
	glog.Infof("Stats server available at %s%s\n", addr, statsPath)
}
