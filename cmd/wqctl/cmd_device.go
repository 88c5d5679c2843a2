package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"liyu1981.xyz/water-quality-dashboard/pkg/device"
	"liyu1981.xyz/water-quality-dashboard/pkg/devicesim"
	"liyu1981.xyz/water-quality-dashboard/pkg/gauge"
)

var (
	simulateAddr      string
	simulateSensorID  string
	simulateUploadURL string
	simulateDuration  time.Duration
	variantName       string
)

var readingsCmd = &cobra.Command{
	Use:   "readings",
	Short: "Read the device once",
	Long:  `Fetch /readings from the device and print the gauges the dashboard would show.`,
	RunE:  runReadings,
}

var startTestCmd = &cobra.Command{
	Use:   "start-test",
	Short: "Trigger a test cycle",
	Long:  `Send /start_test to the device and print the operator message.`,
	RunE:  runStartTest,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Emulate a station device",
	Long: `Serve /readings and /start_test like the device firmware. After each test cycle
the new sample is uploaded to the dashboard when --upload is set.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(readingsCmd)
	rootCmd.AddCommand(startTestCmd)
	rootCmd.AddCommand(simulateCmd)

	readingsCmd.Flags().StringVar(&variantName, "variant", gauge.VariantClassic, "gauge variant (classic/arc)")

	simulateCmd.Flags().StringVar(&simulateAddr, "addr", ":8090", "listen address")
	simulateCmd.Flags().StringVar(&simulateSensorID, "sensor-id", "", "sensor id, random when empty")
	simulateCmd.Flags().StringVar(&simulateUploadURL, "upload", "", "ingestion URL, e.g. http://localhost:1080/dashboard?station_id=1")
	simulateCmd.Flags().DurationVar(&simulateDuration, "cycle", 10*time.Second, "test cycle duration")
}

func runReadings(cmd *cobra.Command, args []string) error {
	variant, err := gauge.VariantByName(variantName)
	if err != nil {
		return err
	}

	client := device.NewClient(deviceURL, timeout)
	res := client.FetchReadings(cmd.Context())
	switch res.Outcome {
	case device.OutcomeOK:
	case device.OutcomeBusy:
		fmt.Println("Device busy - waiting for test cycle to finish")
		return nil
	default:
		if res.Err != nil {
			return fmt.Errorf("could not reach device: %w", res.Err)
		}
		return fmt.Errorf("device answered with status %d", res.StatusCode)
	}

	fmt.Printf("device %s\n", client.BaseURL())
	views := variant.RenderAll(variant.Readings(res.Payload))
	for _, v := range views {
		fmt.Printf("%-10s %10s %-6s %-10s needle %7.2f\n", v.Label, v.Text, v.Unit, v.Status, v.Angle)
	}

	keys := make([]string, 0, len(res.Payload))
	for k := range res.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("raw keys: %v\n", keys)
	return nil
}

func runStartTest(cmd *cobra.Command, args []string) error {
	res := device.NewClient(deviceURL, timeout).StartTest(cmd.Context())
	fmt.Printf("%s (status %d): %s\n", res.Outcome, res.StatusCode, res.Message)
	if res.Outcome == device.TestFailed {
		return errors.New("test cycle was not started")
	}
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateSensorID == "" {
		simulateSensorID = "WQ-" + uuid.NewString()[:8]
	}

	sim := devicesim.New(devicesim.Options{
		SensorID:     simulateSensorID,
		TestDuration: simulateDuration,
		UploadURL:    simulateUploadURL,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{Addr: simulateAddr, Handler: sim.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Printf("device %s listening on %s\n", simulateSensorID, simulateAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
