// cmd/root.go
package cmd

import (
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/cloudsim/cloudsim/sim"
)

var (
	scenarioPath string
	logLevel     string
	metricsAddr  string
)

var rootCmd = &cobra.Command{
	Use:   "cloudsim",
	Short: "Discrete-event simulator for datacenter VM and cloudlet placement",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a datacenter scenario",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logger := logrus.New()
		logger.SetLevel(level)
		entry := logrus.NewEntry(logger)

		entry.WithField("scenario", scenarioPath).Info("loading scenario")
		cfg, err := LoadScenarioConfig(scenarioPath)
		if err != nil {
			logrus.Fatalf("loading scenario: %v", err)
		}

		hosts, err := cfg.BuildHosts()
		if err != nil {
			logrus.Fatalf("building hosts: %v", err)
		}
		vms, err := cfg.BuildVms()
		if err != nil {
			logrus.Fatalf("building vms: %v", err)
		}
		cloudletBatches, err := cfg.BuildCloudlets()
		if err != nil {
			logrus.Fatalf("building cloudlets: %v", err)
		}

		dc := sim.NewDatacenter(hosts, entry)
		s := sim.NewSimulator(entry)
		s.SetDatacenter(dc)
		if cfg.TerminationTime != nil {
			if err := s.SetTerminationTime(*cfg.TerminationTime); err != nil {
				logrus.Fatalf("setting termination time: %v", err)
			}
		}

		registry := prometheus.NewRegistry()
		promListener, err := NewPrometheusEventListener(registry)
		if err != nil {
			logrus.Fatalf("registering metrics: %v", err)
		}
		s.AddEventListener(promListener)
		if cfg.CircularClockInterval != nil {
			s.AddCircularClockListener(NewUtilizationSampler(dc, *cfg.CircularClockInterval, entry))
		}

		broker, err := sim.NewBroker(s, dc)
		if err != nil {
			logrus.Fatalf("creating broker: %v", err)
		}
		if err := broker.SubmitVmList(vms); err != nil {
			logrus.Fatalf("submitting vms: %v", err)
		}

		submitTimes := make([]float64, 0, len(cloudletBatches))
		for t := range cloudletBatches {
			submitTimes = append(submitTimes, t)
		}
		sort.Float64s(submitTimes)
		for _, t := range submitTimes {
			var err error
			if t == 0 {
				err = broker.SubmitCloudletList(cloudletBatches[t])
			} else {
				for _, c := range cloudletBatches[t] {
					c.SetState(sim.CloudletSubmitted)
				}
				err = s.SubmitCloudletSubmitAt(dc, cloudletBatches[t], t)
			}
			if err != nil {
				logrus.Fatalf("submitting cloudlets: %v", err)
			}
		}

		entry.Info("running simulation")
		s.RunUntilPauseOrTerminate()

		report := BuildScenarioReport(dc)
		report.Print(s.Clock())

		if metricsAddr != "" {
			entry.WithField("addr", metricsAddr).Info("metrics registry populated; wire to an HTTP handler to scrape")
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a scenario YAML file")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus metrics address (optional); it is only logged, no HTTP endpoint is served")
	runCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(runCmd)
}
